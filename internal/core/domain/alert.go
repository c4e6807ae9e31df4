package domain

import (
	"strings"
	"time"
)

// AlertType defines the category of an alert.
type AlertType string

const (
	AlertOffline       AlertType = "OFFLINE"
	AlertError         AlertType = "ERROR"
	AlertMaintenance   AlertType = "MAINTENANCE"
	AlertConfiguration AlertType = "CONFIGURATION"
)

// AlertSeverity represents the criticality of a device alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityLow      AlertSeverity = "LOW"
)

// Rank returns the ordinal of the severity. Unknown severities rank 0,
// below LOW.
func (s AlertSeverity) Rank() int {
	switch AlertSeverity(strings.ToUpper(string(s))) {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// IsKnown reports whether the severity belongs to the enumeration.
func (s AlertSeverity) IsKnown() bool {
	return s.Rank() > 0
}

// Alert represents a device problem raised by the alert source.
// The pipeline never creates alerts; it only filters and ranks them.
type Alert struct {
	ID                int64         `json:"id"`
	DeviceID          int64         `json:"deviceId"`
	DeviceName        string        `json:"deviceName"`
	Type              AlertType     `json:"alertType"`
	Severity          AlertSeverity `json:"severity"`
	Message           string        `json:"message"`
	Description       string        `json:"description"`
	Timestamp         time.Time     `json:"timestamp"`
	DurationMinutes   *int          `json:"durationMinutes,omitempty"`
	RecommendedAction string        `json:"recommendedAction,omitempty"`
	Acknowledged      bool          `json:"isAcknowledged"`
}
