package dashboard

import (
	"fmt"
	"strconv"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// BuildCards derives the headline cards from the stats.
func BuildCards(stats domain.DashboardStats) []domain.DashboardCard {
	return []domain.DashboardCard{
		{
			Title: "Total Devices",
			Value: strconv.Itoa(stats.TotalDevices),
			Icon:  "devices",
			Color: domain.ColorPrimary,
			Trend: domain.CardTrend{Direction: domain.TrendStable, Description: "Registered in the directory"},
		},
		{
			Title: "Online Devices",
			Value: strconv.Itoa(stats.OnlineDevices),
			Icon:  "wifi",
			Color: domain.ColorSuccess,
			Trend: domain.CardTrend{
				Direction:   directionIf(stats.OnlineDevices > 0, domain.TrendUp, domain.TrendDown),
				Percentage:  stats.UptimePercentage,
				Description: fmt.Sprintf("%d%% uptime", stats.UptimePercentage),
			},
		},
		{
			Title: "Offline Devices",
			Value: strconv.Itoa(stats.OfflineDevices),
			Icon:  "wifi_off",
			Color: domain.ColorWarning,
			Trend: domain.CardTrend{
				Direction:   directionIf(stats.OfflineDevices > 0, domain.TrendDown, domain.TrendStable),
				Percentage:  stats.OfflinePercentage,
				Description: "Need attention",
			},
		},
		{
			Title: "In Maintenance",
			Value: strconv.Itoa(stats.MaintenanceDevices),
			Icon:  "build",
			Color: domain.ColorInfo,
			Trend: domain.CardTrend{Direction: domain.TrendStable, Description: "Scheduled"},
		},
		{
			Title: "With Errors",
			Value: strconv.Itoa(stats.ErrorDevices),
			Icon:  "error",
			Color: domain.ColorDanger,
			Trend: domain.CardTrend{
				Direction:   directionIf(stats.ErrorDevices > 0, domain.TrendDown, domain.TrendStable),
				Percentage:  stats.ErrorPercentage,
				Description: "Require intervention",
			},
		},
		{
			Title: "System Status",
			Value: systemStatusText(stats.SystemStatus),
			Icon:  systemStatusIcon(stats.SystemStatus),
			Color: systemStatusColor(stats.SystemStatus),
			Trend: domain.CardTrend{
				Direction:   directionIf(stats.SystemStatus == domain.SystemHealthy, domain.TrendUp, domain.TrendDown),
				Percentage:  stats.UptimePercentage,
				Description: fmt.Sprintf("%d%% operational", stats.UptimePercentage),
			},
		},
	}
}

func directionIf(cond bool, yes, no domain.TrendDirection) domain.TrendDirection {
	if cond {
		return yes
	}
	return no
}

func systemStatusText(s domain.SystemStatus) string {
	switch s {
	case domain.SystemHealthy:
		return "Healthy"
	case domain.SystemWarning:
		return "Attention"
	case domain.SystemCritical:
		return "Critical"
	case domain.SystemError:
		return "Error"
	}
	return string(s)
}

func systemStatusIcon(s domain.SystemStatus) string {
	switch s {
	case domain.SystemHealthy:
		return "check_circle"
	case domain.SystemWarning:
		return "warning"
	case domain.SystemCritical:
		return "error"
	}
	return "cancel"
}

func systemStatusColor(s domain.SystemStatus) domain.CardColor {
	switch s {
	case domain.SystemHealthy:
		return domain.ColorSuccess
	case domain.SystemWarning:
		return domain.ColorWarning
	}
	return domain.ColorDanger
}
