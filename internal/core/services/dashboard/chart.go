package dashboard

import (
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// ChartProjector maps a distribution onto parallel label/value/color lists.
type ChartProjector struct {
	describe Describer
}

// NewChartProjector creates a projector using the given label lookup.
func NewChartProjector(describe Describer) *ChartProjector {
	return &ChartProjector{describe: describe}
}

// Project keeps the distribution order; colors depend on position only.
func (p *ChartProjector) Project(dist domain.Distribution) domain.ChartProjection {
	n := len(dist)
	proj := domain.ChartProjection{
		Labels:       make([]string, n),
		Values:       make([]int, n),
		Colors:       make([]string, n),
		BorderColors: make([]string, n),
		BorderWidth:  chartBorderWidth,
	}

	for i, e := range dist {
		proj.Labels[i] = p.describe(e.Category)
		proj.Values[i] = e.Count
		proj.Colors[i] = PaletteColor(i)
		proj.BorderColors[i] = chartBorderColor
	}

	return proj
}
