package domain

import (
	"time"
)

// SystemStatus is the overall health classification of the fleet.
type SystemStatus string

const (
	SystemHealthy  SystemStatus = "HEALTHY"
	SystemWarning  SystemStatus = "WARNING"
	SystemCritical SystemStatus = "CRITICAL"
	SystemError    SystemStatus = "ERROR"
)

// DashboardStats represents an aggregated snapshot of the fleet state.
// OnlineDevices + OfflineDevices always equals TotalDevices.
type DashboardStats struct {
	// Summary Metrics
	TotalDevices       int `json:"totalDevices"`
	OnlineDevices      int `json:"onlineDevices"`
	OfflineDevices     int `json:"offlineDevices"`
	MaintenanceDevices int `json:"maintenanceDevices"`
	ErrorDevices       int `json:"errorDevices"`

	// Percentages, rounded to the nearest integer
	OnlinePercentage  int `json:"onlinePercentage"`
	OfflinePercentage int `json:"offlinePercentage"`
	ErrorPercentage   int `json:"errorPercentage"`
	UptimePercentage  int `json:"uptimePercentage"`

	SystemStatus SystemStatus `json:"systemStatus"`

	// Metadata
	LastUpdate time.Time `json:"lastUpdate"`
}
