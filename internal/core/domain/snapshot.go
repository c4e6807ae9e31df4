package domain

import (
	"time"
)

// Stage names one step of the snapshot pipeline.
type Stage string

const (
	StageDevices            Stage = "devices"
	StageAlerts             Stage = "alerts"
	StageStats              Stage = "stats"
	StageStatusDistribution Stage = "status_distribution"
	StageTypeDistribution   Stage = "type_distribution"
	StageCharts             Stage = "charts"
	StageRanking            Stage = "ranking"
)

// DashboardSnapshot is one complete result of the aggregation pipeline.
// It is never mutated after it has been published.
type DashboardSnapshot struct {
	ID                 string          `json:"id"`
	Sequence           uint64          `json:"sequence"` // +1 per published snapshot
	Stats              DashboardStats  `json:"stats"`
	StatusDistribution Distribution    `json:"statusDistribution"`
	TypeDistribution   Distribution    `json:"typeDistribution"`
	StatusChart        ChartProjection `json:"statusChart"`
	TypeChart          ChartProjection `json:"typeChart"`
	Alerts             []Alert         `json:"alerts"`
	Cards              []DashboardCard `json:"cards"`

	// Degraded is set when at least one stage used fallback output.
	Degraded     bool    `json:"degraded"`
	FailedStages []Stage `json:"failedStages,omitempty"`

	ComputedAt time.Time `json:"computedAt"`
}

// CardColor is the semantic color of a dashboard card.
type CardColor string

const (
	ColorPrimary CardColor = "primary"
	ColorSuccess CardColor = "success"
	ColorWarning CardColor = "warning"
	ColorDanger  CardColor = "danger"
	ColorInfo    CardColor = "info"
)

// TrendDirection describes the direction shown next to a card value.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// CardTrend is the secondary indicator of a card.
type CardTrend struct {
	Direction   TrendDirection `json:"direction"`
	Percentage  int            `json:"percentage"`
	Description string         `json:"description"`
}

// DashboardCard is a headline metric shown at the top of the dashboard.
type DashboardCard struct {
	Title    string    `json:"title"`
	Value    string    `json:"value"`
	Subtitle string    `json:"subtitle,omitempty"`
	Icon     string    `json:"icon"`
	Color    CardColor `json:"color"`
	Trend    CardTrend `json:"trend"`
}

// RefreshPhase is the state of the refresh state machine.
type RefreshPhase string

const (
	PhaseIdle          RefreshPhase = "IDLE"
	PhaseFetching      RefreshPhase = "FETCHING"
	PhaseSnapshotReady RefreshPhase = "SNAPSHOT_READY"
	PhaseDegraded      RefreshPhase = "DEGRADED"
)

// DashboardState is the operational state of the refresh pipeline.
// It is the only channel through which a consumer learns a refresh degraded.
type DashboardState struct {
	IsLoading       bool         `json:"isLoading"`
	LastUpdate      time.Time    `json:"lastUpdate"`
	HasError        bool         `json:"hasError"`
	ErrorMessage    string       `json:"errorMessage,omitempty"`
	AutoRefresh     bool         `json:"autoRefresh"`
	RefreshInterval int          `json:"refreshInterval"` // seconds
	Phase           RefreshPhase `json:"phase"`
	Observers       int          `json:"observers"`
}
