package ports

import (
	"context"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// DeviceDirectory is the external source of device records.
// Every call may fail; callers treat a failure as "no data".
type DeviceDirectory interface {
	// ListDevices returns the full current device collection.
	ListDevices(ctx context.Context) ([]domain.Device, error)
}

// DeviceFilterer is implemented by directories that can evaluate a
// DeviceFilter themselves.
type DeviceFilterer interface {
	FilterDevices(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error)
}

// AlertSource returns raw, unranked alerts.
type AlertSource interface {
	ListAlerts(ctx context.Context) ([]domain.Alert, error)
}

// AlertAcknowledger marks a single alert as acknowledged by its identifier.
type AlertAcknowledger interface {
	AcknowledgeAlert(ctx context.Context, id int64) error
}

// SnapshotPublisher forwards completed snapshots to an out-of-process sink.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snapshot domain.DashboardSnapshot) error
}

// Stream delivers the newest value of a feed until closed.
type Stream[T any] interface {
	Updates() <-chan T
	Close()
}

// DashboardService is the surface exposed to the presentation adapters
// (REST, WebSocket, gRPC).
type DashboardService interface {
	Latest() (domain.DashboardSnapshot, bool)
	Subscribe() Stream[domain.DashboardSnapshot]
	SubscribeState() Stream[domain.DashboardState]
	Refresh(ctx context.Context) (domain.DashboardSnapshot, error)
	TriggerRefresh()
	State() domain.DashboardState
	SetAutoRefresh(enabled bool)
	ToggleAutoRefresh() bool
	SetIntervalSeconds(seconds int) error
	AcknowledgeAlert(ctx context.Context, id int64) error
	ListDevices(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error)
}
