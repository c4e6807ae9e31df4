package dashboard

import (
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// FallbackProvider supplies deterministic stand-ins for failed stages so a
// snapshot can always be produced.
type FallbackProvider struct{}

// NewFallbackProvider creates a provider.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

// Stats returns all-zero counts with a WARNING system status.
func (f *FallbackProvider) Stats() domain.DashboardStats {
	return domain.DashboardStats{SystemStatus: domain.SystemWarning}
}

// Distribution returns an empty distribution.
func (f *FallbackProvider) Distribution() domain.Distribution {
	return domain.Distribution{}
}

// Chart returns an empty projection.
func (f *FallbackProvider) Chart() domain.ChartProjection {
	return domain.ChartProjection{
		Labels:       []string{},
		Values:       []int{},
		Colors:       []string{},
		BorderColors: []string{},
		BorderWidth:  chartBorderWidth,
	}
}

// Alerts returns an empty alert list, never placeholder alerts.
func (f *FallbackProvider) Alerts() []domain.Alert {
	return []domain.Alert{}
}

// Snapshot is the full fallback used when the device collection cannot be
// obtained at all.
func (f *FallbackProvider) Snapshot() domain.DashboardSnapshot {
	stats := f.Stats()
	return domain.DashboardSnapshot{
		Stats:              stats,
		StatusDistribution: f.Distribution(),
		TypeDistribution:   f.Distribution(),
		StatusChart:        f.Chart(),
		TypeChart:          f.Chart(),
		Alerts:             f.Alerts(),
		Cards:              BuildCards(stats),
		Degraded:           true,
	}
}
