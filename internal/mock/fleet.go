package mock

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// Fleet is an in-memory device directory and alert source fed by a
// DataGenerator. It stands in for the real directory in mock mode.
type Fleet struct {
	mu        sync.Mutex
	generator *DataGenerator
	devices   []domain.Device
	alerts    []domain.Alert
	nextAlert int64

	devicesDown bool
	alertsDown  bool

	logger *slog.Logger
}

// NewFleet generates the scenario's devices and the alerts they raise.
func NewFleet(generator *DataGenerator, scenario Scenario) *Fleet {
	f := &Fleet{
		generator: generator,
		logger:    slog.Default().With("component", "mock_fleet", "scenario", scenario.Name),
	}
	f.devices = generator.GenerateFleet(scenario)
	for _, d := range f.devices {
		f.raiseLocked(d)
	}
	return f
}

func (f *Fleet) raiseLocked(d domain.Device) {
	a, ok := f.generator.AlertFor(d)
	if !ok {
		return
	}
	f.nextAlert++
	a.ID = f.nextAlert
	f.alerts = append(f.alerts, a)
}

// ListDevices returns a copy of the simulated devices.
func (f *Fleet) ListDevices(ctx context.Context) ([]domain.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devicesDown {
		return nil, domain.ErrUpstreamUnavailable
	}
	return slices.Clone(f.devices), nil
}

// ListAlerts returns a copy of every raised alert.
func (f *Fleet) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.alertsDown {
		return nil, domain.ErrUpstreamUnavailable
	}
	return slices.Clone(f.alerts), nil
}

// AcknowledgeAlert marks one alert acknowledged.
func (f *Fleet) AcknowledgeAlert(ctx context.Context, id int64) error {
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

// SetUnavailable makes the device or alert queries fail, for demos of the
// degraded dashboard.
func (f *Fleet) SetUnavailable(devices, alerts bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devicesDown = devices
	f.alertsDown = alerts
}

// Step mutates a few random devices and raises alerts for new problems.
func (f *Fleet) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.devices) == 0 {
		return
	}

	n := 1 + len(f.devices)/10
	for i := 0; i < n; i++ {
		idx := f.generator.rand.Intn(len(f.devices))
		before := f.devices[idx]
		f.generator.Mutate(&f.devices[idx])
		after := f.devices[idx]

		if (before.Active && !after.Active) || (!before.InError() && after.InError()) {
			f.raiseLocked(after)
		}
	}
}

// Run steps the simulation every interval until ctx is cancelled.
// onChange, when set, is called after every step.
func (f *Fleet) Run(ctx context.Context, interval time.Duration, onChange func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	f.logger.Info("Fleet simulation started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Step()
			if onChange != nil {
				onChange()
			}
		}
	}
}

var (
	_ ports.DeviceDirectory   = (*Fleet)(nil)
	_ ports.AlertSource       = (*Fleet)(nil)
	_ ports.AlertAcknowledger = (*Fleet)(nil)
)
