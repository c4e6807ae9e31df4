package ports

import (
	"context"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// DeviceRepository is a device directory backed by local storage.
type DeviceRepository interface {
	DeviceDirectory

	SaveDevice(ctx context.Context, device domain.Device) error
	SaveDevicesBatch(ctx context.Context, devices []domain.Device) error
	GetDevice(ctx context.Context, id int64) (*domain.Device, error)

	// Close closes the storage connection.
	Close() error
}

// AlertRepository is an alert source backed by local storage.
type AlertRepository interface {
	AlertSource
	AlertAcknowledger

	SaveAlert(ctx context.Context, alert domain.Alert) (int64, error)
	Close() error
}
