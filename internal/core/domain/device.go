package domain

import (
	"strings"
	"time"
)

// DeviceType is the hardware category reported by the device directory.
type DeviceType string

const (
	TypeTracker           DeviceType = "TRACKER"
	TypeTemperatureSensor DeviceType = "TEMPERATURE_SENSOR"
	TypeVibrationSensor   DeviceType = "VIBRATION_SENSOR"
	TypeOxygenMeter       DeviceType = "OXYGEN_METER"
	TypeHumiditySensor    DeviceType = "HUMIDITY_SENSOR"
	TypePressureSensor    DeviceType = "PRESSURE_SENSOR"
	TypeGeneric           DeviceType = "GENERIC"
)

// DeviceStatus is the free-text lifecycle status of a device.
// The directory does not enforce the enumeration, so unknown values are expected.
type DeviceStatus string

const (
	StatusActive      DeviceStatus = "ACTIVE"
	StatusInactive    DeviceStatus = "INACTIVE"
	StatusMaintenance DeviceStatus = "MAINTENANCE"
	StatusError       DeviceStatus = "ERROR"
	StatusOffline     DeviceStatus = "OFFLINE"
	StatusConfiguring DeviceStatus = "CONFIGURING"

	// StatusUnknown groups records with an empty status.
	StatusUnknown DeviceStatus = "UNKNOWN"
)

// Device is a read-only projection of a record held by the device directory.
type Device struct {
	ID                int64        `json:"id"`
	Name              string       `json:"deviceName"`
	Identifier        string       `json:"deviceIdentifier"`
	Type              DeviceType   `json:"deviceType"`
	Status            DeviceStatus `json:"status"`
	Location          string       `json:"location"`
	Description       string       `json:"description"`
	LastReading       string       `json:"lastReading,omitempty"`
	LastCommunication *time.Time   `json:"lastCommunication"`
	Active            bool         `json:"isActive"` // connectivity, independent of Status
	Latitude          *float64     `json:"latitude"`
	Longitude         *float64     `json:"longitude"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// NormalizedStatus returns the status upper-cased and trimmed.
func (d Device) NormalizedStatus() string {
	return strings.ToUpper(strings.TrimSpace(string(d.Status)))
}

// InMaintenance reports whether the status text denotes planned maintenance.
// Portuguese spellings are still emitted by older firmware.
func (d Device) InMaintenance() bool {
	s := d.NormalizedStatus()
	return s == string(StatusMaintenance) || s == "MANUTENCAO"
}

// InError reports whether the status text denotes a fault.
func (d Device) InError() bool {
	s := d.NormalizedStatus()
	return s == string(StatusError) || s == "ERRO"
}

// HasLocation reports whether both coordinates are known.
func (d Device) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// DeviceFilter narrows a device listing. Zero values are ignored.
type DeviceFilter struct {
	Type       string
	Status     string
	Active     *bool
	SearchTerm string
}

// Matches reports whether the device satisfies every set criterion.
func (f DeviceFilter) Matches(d Device) bool {
	if f.Type != "" && !strings.EqualFold(string(d.Type), f.Type) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(d.NormalizedStatus(), f.Status) {
		return false
	}
	if f.Active != nil && d.Active != *f.Active {
		return false
	}
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		if !strings.Contains(strings.ToLower(d.Name), term) &&
			!strings.Contains(strings.ToLower(d.Identifier), term) &&
			!strings.Contains(strings.ToLower(d.Location), term) {
			return false
		}
	}
	return true
}

// FilterDevices returns the devices matching the filter, preserving order.
func FilterDevices(devices []Device, f DeviceFilter) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		if f.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
