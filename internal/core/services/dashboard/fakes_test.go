package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

var errBoom = errors.New("boom")

// fakeDirectory serves a fixed device list. When gate is set every call
// blocks until it is closed.
type fakeDirectory struct {
	mu      sync.Mutex
	devices []domain.Device
	err     error
	gate    chan struct{}
	calls   atomic.Int32
}

func (f *fakeDirectory) ListDevices(ctx context.Context) ([]domain.Device, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.devices, nil
}

func (f *fakeDirectory) set(devices []domain.Device) {
	f.mu.Lock()
	f.devices = devices
	f.mu.Unlock()
}

// fakeAlerts is an in-memory alert source with acknowledgement.
type fakeAlerts struct {
	mu     sync.Mutex
	alerts []domain.Alert
	err    error
	calls  atomic.Int32
}

func (f *fakeAlerts) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Alert, len(f.alerts))
	copy(out, f.alerts)
	return out, nil
}

func (f *fakeAlerts) AcknowledgeAlert(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alerts {
		if f.alerts[i].ID == id {
			f.alerts[i].Acknowledged = true
			return nil
		}
	}
	return domain.ErrAlertNotFound
}

// fakePublisher records published snapshots.
type fakePublisher struct {
	mu    sync.Mutex
	snaps []domain.DashboardSnapshot
}

func (p *fakePublisher) PublishSnapshot(ctx context.Context, snap domain.DashboardSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

func device(id int64, active bool, status domain.DeviceStatus, typ domain.DeviceType) domain.Device {
	return domain.Device{
		ID:     id,
		Name:   "device",
		Type:   typ,
		Status: status,
		Active: active,
	}
}

// fleet builds total devices of which online are active.
func fleet(total, online, errored int) []domain.Device {
	devices := make([]domain.Device, 0, total)
	for i := 0; i < total; i++ {
		status := domain.StatusActive
		if i >= total-errored {
			status = domain.StatusError
		}
		devices = append(devices, device(int64(i+1), i < online, status, domain.TypeTracker))
	}
	return devices
}
