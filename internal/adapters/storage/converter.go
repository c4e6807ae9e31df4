package storage

import (
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// toDomain converts a database model to a domain entity.
func toDomain(m DeviceModel) domain.Device {
	return domain.Device{
		ID:                m.ID,
		Name:              m.Name,
		Identifier:        m.Identifier,
		Type:              domain.DeviceType(m.Type),
		Status:            domain.DeviceStatus(m.Status),
		Location:          m.Location,
		Description:       m.Description,
		LastReading:       m.LastReading,
		LastCommunication: m.LastCommunication,
		Active:            m.IsActive,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toDomainSlice(models []DeviceModel) []domain.Device {
	devices := make([]domain.Device, len(models))
	for i, m := range models {
		devices[i] = toDomain(m)
	}
	return devices
}

// toModel converts a domain entity to a database model.
func toModel(d domain.Device) DeviceModel {
	return DeviceModel{
		ID:                d.ID,
		Name:              d.Name,
		Identifier:        d.Identifier,
		Type:              string(d.Type),
		Status:            string(d.Status),
		Location:          d.Location,
		Description:       d.Description,
		LastReading:       d.LastReading,
		LastCommunication: d.LastCommunication,
		IsActive:          d.Active,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
