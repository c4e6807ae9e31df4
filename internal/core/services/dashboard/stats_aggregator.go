package dashboard

import (
	"math"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// Health thresholds, in percent of the fleet.
const (
	errorRateThreshold      = 30.0
	healthyOnlineThreshold  = 80.0
	degradedOnlineThreshold = 60.0
)

// StatsAggregator computes scalar fleet metrics and the system health.
type StatsAggregator struct{}

// NewStatsAggregator creates a new aggregator.
func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

// Aggregate walks the collection once. Online/offline is decided by the
// active flag only; the status text feeds the maintenance and error counters.
// LastUpdate is left zero for the caller to stamp.
func (a *StatsAggregator) Aggregate(devices []domain.Device) domain.DashboardStats {
	var stats domain.DashboardStats
	stats.TotalDevices = len(devices)

	for _, d := range devices {
		if d.Active {
			stats.OnlineDevices++
		} else {
			stats.OfflineDevices++
		}

		switch {
		case d.InMaintenance():
			stats.MaintenanceDevices++
		case d.InError():
			stats.ErrorDevices++
		}
	}

	stats.OnlinePercentage = percentOf(stats.OnlineDevices, stats.TotalDevices)
	stats.OfflinePercentage = percentOf(stats.OfflineDevices, stats.TotalDevices)
	stats.ErrorPercentage = percentOf(stats.ErrorDevices, stats.TotalDevices)
	stats.UptimePercentage = stats.OnlinePercentage
	stats.SystemStatus = SystemStatusFor(stats.OnlineDevices, stats.TotalDevices, stats.ErrorDevices)

	return stats
}

// SystemStatusFor classifies fleet health. The order of the checks matters:
// a high error rate wins over a good online rate.
func SystemStatusFor(online, total, errors int) domain.SystemStatus {
	if total == 0 {
		return domain.SystemWarning
	}

	onlinePct := float64(online) / float64(total) * 100
	errorPct := float64(errors) / float64(total) * 100

	switch {
	case errorPct > errorRateThreshold:
		return domain.SystemError
	case onlinePct >= healthyOnlineThreshold:
		return domain.SystemHealthy
	case onlinePct >= degradedOnlineThreshold:
		return domain.SystemWarning
	default:
		return domain.SystemCritical
	}
}

// percentOf returns round(part/total*100), or 0 when total is 0.
func percentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
