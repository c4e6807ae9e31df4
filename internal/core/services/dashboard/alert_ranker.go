package dashboard

import (
	"sort"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// DefaultAlertLimit is the number of alerts shown on the dashboard.
const DefaultAlertLimit = 5

// AlertRanker selects the alerts worth showing.
type AlertRanker struct {
	limit int
}

// NewAlertRanker creates a ranker. A non-positive limit selects DefaultAlertLimit.
func NewAlertRanker(limit int) *AlertRanker {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	return &AlertRanker{limit: limit}
}

// Limit returns the display limit.
func (r *AlertRanker) Limit() int {
	return r.limit
}

// Rank drops acknowledged alerts, orders by severity then recency, and
// truncates after sorting. The input slice is not modified.
func (r *AlertRanker) Rank(alerts []domain.Alert) []domain.Alert {
	pending := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if a.Acknowledged {
			continue
		}
		pending = append(pending, a)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		ri, rj := pending[i].Severity.Rank(), pending[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return pending[i].Timestamp.After(pending[j].Timestamp)
	})

	if len(pending) > r.limit {
		pending = pending[:r.limit]
	}
	return pending
}
