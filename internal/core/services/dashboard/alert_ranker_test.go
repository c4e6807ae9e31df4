package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

func TestAlertRanker_Order(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	low := domain.Alert{ID: 1, Severity: domain.SeverityLow, Timestamp: now}
	critical := domain.Alert{ID: 2, Severity: domain.SeverityCritical, Timestamp: now.Add(-10 * time.Second)}
	high := domain.Alert{ID: 3, Severity: domain.SeverityHigh, Timestamp: now.Add(-1 * time.Second)}

	permutations := [][]domain.Alert{
		{low, critical, high},
		{critical, high, low},
		{high, low, critical},
	}

	ranker := NewAlertRanker(5)
	for _, input := range permutations {
		ranked := ranker.Rank(input)
		require.Len(t, ranked, 3)
		assert.Equal(t, []int64{2, 3, 1}, []int64{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	}
}

func TestAlertRanker_DropsAcknowledged(t *testing.T) {
	now := time.Now()
	alerts := []domain.Alert{
		{ID: 1, Severity: domain.SeverityCritical, Timestamp: now, Acknowledged: true},
		{ID: 2, Severity: domain.SeverityLow, Timestamp: now},
	}

	ranked := NewAlertRanker(5).Rank(alerts)

	require.Len(t, ranked, 1)
	assert.Equal(t, int64(2), ranked[0].ID)
}

func TestAlertRanker_RecencyAndUnknown(t *testing.T) {
	now := time.Now()
	alerts := []domain.Alert{
		{ID: 1, Severity: "bogus", Timestamp: now},
		{ID: 2, Severity: domain.SeverityMedium, Timestamp: now.Add(-time.Hour)},
		{ID: 3, Severity: "medium", Timestamp: now},
		{ID: 4, Severity: domain.SeverityLow, Timestamp: now},
	}

	ranked := NewAlertRanker(0).Rank(alerts)

	require.Len(t, ranked, 4)
	assert.Equal(t, []int64{3, 2, 4, 1}, []int64{ranked[0].ID, ranked[1].ID, ranked[2].ID, ranked[3].ID})
}

func TestAlertRanker_TruncatesAfterSort(t *testing.T) {
	now := time.Now()
	var alerts []domain.Alert
	for i := 0; i < 6; i++ {
		alerts = append(alerts, domain.Alert{ID: int64(i + 1), Severity: domain.SeverityLow, Timestamp: now})
	}
	alerts = append(alerts, domain.Alert{ID: 99, Severity: domain.SeverityCritical, Timestamp: now.Add(-time.Hour)})

	ranker := NewAlertRanker(0)
	ranked := ranker.Rank(alerts)

	assert.Equal(t, DefaultAlertLimit, ranker.Limit())
	require.Len(t, ranked, DefaultAlertLimit)
	assert.Equal(t, int64(99), ranked[0].ID)
	assert.Equal(t, int64(6), alerts[5].ID, "input must not be reordered")
}
