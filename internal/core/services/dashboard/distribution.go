package dashboard

import (
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// KeyFunc extracts the grouping category of a device.
type KeyFunc func(domain.Device) string

// StatusKey groups by the raw status text; an empty status groups as UNKNOWN.
func StatusKey(d domain.Device) string {
	if d.Status == "" {
		return string(domain.StatusUnknown)
	}
	return string(d.Status)
}

// TypeKey groups by device type.
func TypeKey(d domain.Device) string {
	return string(d.Type)
}

// DistributionAnalyzer groups devices into labelled counts.
type DistributionAnalyzer struct {
	key      KeyFunc
	describe Describer
}

// NewDistributionAnalyzer creates an analyzer for one dimension.
func NewDistributionAnalyzer(key KeyFunc, describe Describer) *DistributionAnalyzer {
	return &DistributionAnalyzer{key: key, describe: describe}
}

// NewStatusAnalyzer groups by status.
func NewStatusAnalyzer() *DistributionAnalyzer {
	return NewDistributionAnalyzer(StatusKey, DescribeStatus)
}

// NewTypeAnalyzer groups by device type.
func NewTypeAnalyzer() *DistributionAnalyzer {
	return NewDistributionAnalyzer(TypeKey, DescribeType)
}

// Analyze returns the categories in order of first occurrence.
// An empty collection yields an empty, non-nil distribution.
func (a *DistributionAnalyzer) Analyze(devices []domain.Device) domain.Distribution {
	total := len(devices)
	if total == 0 {
		return domain.Distribution{}
	}

	index := make(map[string]int)
	dist := make(domain.Distribution, 0, 8)

	for _, d := range devices {
		k := a.key(d)
		if i, ok := index[k]; ok {
			dist[i].Count++
			continue
		}
		index[k] = len(dist)
		dist = append(dist, domain.DistributionEntry{
			Category:    k,
			Count:       1,
			Description: a.describe(k),
		})
	}

	for i := range dist {
		dist[i].Percentage = percentOf(dist[i].Count, total)
	}

	return dist
}

// Describe exposes the analyzer's description lookup so chart labels match.
func (a *DistributionAnalyzer) Describe(key string) string {
	return a.describe(key)
}
