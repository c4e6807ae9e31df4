package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

func newTestService(dir *fakeDirectory, alerts *fakeAlerts) *Service {
	s := newTestScheduler(dir, alerts, SchedulerConfig{Interval: time.Hour})
	if alerts == nil {
		return NewService(s, NewDeviceStore(dir, time.Second), nil)
	}
	return NewService(s, NewDeviceStore(dir, time.Second), alerts)
}

func TestService_AcknowledgedAlertDropsOut(t *testing.T) {
	alerts := &fakeAlerts{alerts: sampleAlerts()}
	svc := newTestService(&fakeDirectory{devices: fleet(2, 2, 0)}, alerts)

	before, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, before.Alerts, 3)
	assert.Equal(t, int64(2), before.Alerts[0].ID)

	require.NoError(t, svc.AcknowledgeAlert(context.Background(), 2))

	after, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, after.Alerts, 2)
	for _, a := range after.Alerts {
		assert.NotEqual(t, int64(2), a.ID)
	}
}

func TestService_AcknowledgeErrors(t *testing.T) {
	svc := newTestService(&fakeDirectory{}, &fakeAlerts{alerts: sampleAlerts()})

	assert.ErrorIs(t, svc.AcknowledgeAlert(context.Background(), 0), domain.ErrInvalidAlertID)
	assert.ErrorIs(t, svc.AcknowledgeAlert(context.Background(), -3), domain.ErrInvalidAlertID)
	assert.ErrorIs(t, svc.AcknowledgeAlert(context.Background(), 404), domain.ErrAlertNotFound)

	readOnly := NewService(svc.Scheduler, svc.devices, nil)
	assert.ErrorIs(t, readOnly.AcknowledgeAlert(context.Background(), 1), domain.ErrUpstreamUnavailable)
}

func TestService_ListDevices(t *testing.T) {
	active := false
	dir := &fakeDirectory{devices: []domain.Device{
		{ID: 1, Name: "Boiler sensor", Type: domain.TypeTemperatureSensor, Status: domain.StatusActive, Active: true},
		{ID: 2, Name: "Truck 7", Type: domain.TypeTracker, Status: domain.StatusOffline},
		{ID: 3, Name: "Truck 9", Type: domain.TypeTracker, Status: domain.StatusActive, Active: true},
	}}
	svc := newTestService(dir, nil)

	tests := []struct {
		name   string
		filter domain.DeviceFilter
		ids    []int64
	}{
		{"No filter", domain.DeviceFilter{}, []int64{1, 2, 3}},
		{"By type", domain.DeviceFilter{Type: "tracker"}, []int64{2, 3}},
		{"By status", domain.DeviceFilter{Status: "offline"}, []int64{2}},
		{"Inactive only", domain.DeviceFilter{Active: &active}, []int64{2}},
		{"Search", domain.DeviceFilter{SearchTerm: "truck 9"}, []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, err := svc.ListDevices(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := make([]int64, 0, len(devices))
			for _, d := range devices {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestService_ListDevicesUpstreamError(t *testing.T) {
	svc := newTestService(&fakeDirectory{err: errBoom}, nil)

	_, err := svc.ListDevices(context.Background(), domain.DeviceFilter{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestService_Streams(t *testing.T) {
	svc := newTestService(&fakeDirectory{devices: fleet(1, 1, 0)}, nil)

	states := svc.SubscribeState()
	defer states.Close()
	assert.Equal(t, domain.PhaseIdle, receive(t, states.Updates()).Phase)

	snaps := svc.Subscribe()
	defer snaps.Close()

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.ID, receive(t, snaps.Updates()).ID)
}
