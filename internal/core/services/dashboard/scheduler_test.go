package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

const waitFor = 2 * time.Second

func newTestScheduler(dir *fakeDirectory, alerts *fakeAlerts, cfg SchedulerConfig) *Scheduler {
	return NewScheduler(newTestPipeline(dir, alerts), cfg)
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestScheduler_SingleFlightSharedAcrossObservers(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(10, 9, 0), gate: make(chan struct{})}
	s := newTestScheduler(dir, nil, SchedulerConfig{Interval: time.Hour, AutoRefresh: true})

	first := s.Subscribe()
	defer first.Close()
	require.Eventually(t, func() bool { return dir.calls.Load() == 1 }, waitFor, 5*time.Millisecond)
	assert.True(t, s.State().IsLoading)
	assert.Equal(t, domain.PhaseFetching, s.State().Phase)

	second := s.Subscribe()
	defer second.Close()

	close(dir.gate)

	a := receive(t, first.C)
	b := receive(t, second.C)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Sequence, b.Sequence)
	assert.Equal(t, a.ComputedAt, b.ComputedAt)
	assert.Equal(t, int32(1), dir.calls.Load())
	assert.Equal(t, 2, s.State().Observers)
}

func TestScheduler_ConcurrentTriggersJoin(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(3, 3, 0), gate: make(chan struct{})}
	s := newTestScheduler(dir, nil, SchedulerConfig{})

	f1 := s.begin("test")
	require.Eventually(t, func() bool { return dir.calls.Load() == 1 }, waitFor, 5*time.Millisecond)
	f2 := s.begin("test")
	assert.Same(t, f1, f2)

	close(dir.gate)
	<-f1.done

	assert.Equal(t, uint64(1), f1.snap.Sequence)
	assert.Equal(t, int32(1), dir.calls.Load())
	assert.False(t, s.State().IsLoading)
}

func TestScheduler_LateObserverGetsLatest(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(4, 2, 0)}
	s := newTestScheduler(dir, nil, SchedulerConfig{Interval: time.Hour, AutoRefresh: true})

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Sequence)

	sub := s.Subscribe()
	defer sub.Close()

	got := receive(t, sub.C)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, int32(1), dir.calls.Load(), "fresh snapshot must not trigger a fetch")

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, snap.ID, latest.ID)
}

func TestScheduler_DegradedState(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(10, 9, 0)}
	alerts := &fakeAlerts{err: errBoom}
	s := newTestScheduler(dir, alerts, SchedulerConfig{})

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Degraded)
	assert.Empty(t, snap.Alerts)
	assert.Equal(t, 10, snap.Stats.TotalDevices)

	state := s.State()
	assert.True(t, state.HasError)
	assert.NotEmpty(t, state.ErrorMessage)
	assert.False(t, state.IsLoading)
	assert.Equal(t, domain.PhaseIdle, state.Phase)
	assert.Equal(t, fixedNow, state.LastUpdate)

	alerts.mu.Lock()
	alerts.err = nil
	alerts.mu.Unlock()

	snap, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Degraded)
	assert.False(t, s.State().HasError)
	assert.Empty(t, s.State().ErrorMessage)
}

func TestScheduler_SequenceIsMonotonic(t *testing.T) {
	s := newTestScheduler(&fakeDirectory{devices: fleet(1, 1, 0)}, nil, SchedulerConfig{Interval: time.Hour})

	sub := s.Subscribe()
	defer sub.Close()

	var last uint64
	for i := 0; i < 5; i++ {
		snap, err := s.Refresh(context.Background())
		require.NoError(t, err)
		assert.Greater(t, snap.Sequence, last)
		last = snap.Sequence

		got := receive(t, sub.C)
		assert.LessOrEqual(t, got.Sequence, last)
	}
}

func TestScheduler_NoTicksWithoutObservers(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(2, 1, 0)}
	s := newTestScheduler(dir, nil, SchedulerConfig{Interval: 10 * time.Millisecond, AutoRefresh: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), dir.calls.Load())

	sub := s.Subscribe()
	require.Eventually(t, func() bool { return dir.calls.Load() >= 3 }, waitFor, 5*time.Millisecond)

	sub.Close()
	require.Eventually(t, func() bool { return !s.State().IsLoading }, waitFor, 5*time.Millisecond)
	settled := dir.calls.Load()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, settled, dir.calls.Load())
	assert.Equal(t, 0, s.State().Observers)
}

func TestScheduler_AutoRefreshDisabled(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(2, 1, 0)}
	s := newTestScheduler(dir, nil, SchedulerConfig{Interval: 10 * time.Millisecond, AutoRefresh: false})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	sub := s.Subscribe()
	defer sub.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), dir.calls.Load())

	s.TriggerRefresh()
	snap := receive(t, sub.C)
	assert.Equal(t, 2, snap.Stats.TotalDevices)
	assert.Equal(t, int32(1), dir.calls.Load())
}

func TestScheduler_StopRefusesRefresh(t *testing.T) {
	s := newTestScheduler(&fakeDirectory{}, nil, SchedulerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	require.NoError(t, receive[error](t, done))

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchedulerStopped)
}

func TestScheduler_RefreshHonorsCallerContext(t *testing.T) {
	dir := &fakeDirectory{devices: fleet(1, 1, 0), gate: make(chan struct{})}
	defer close(dir.gate)
	s := newTestScheduler(dir, nil, SchedulerConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_Settings(t *testing.T) {
	s := newTestScheduler(&fakeDirectory{}, nil, SchedulerConfig{AutoRefresh: true})

	states := s.SubscribeState()
	defer states.Close()

	initial := receive(t, states.C)
	assert.True(t, initial.AutoRefresh)
	assert.Equal(t, 30, initial.RefreshInterval)
	assert.Equal(t, domain.PhaseIdle, initial.Phase)

	assert.False(t, s.ToggleAutoRefresh())
	assert.False(t, receive(t, states.C).AutoRefresh)

	s.SetAutoRefresh(true)
	assert.True(t, s.State().AutoRefresh)

	assert.ErrorIs(t, s.SetIntervalSeconds(0), domain.ErrInvalidInterval)
	assert.ErrorIs(t, s.SetInterval(-time.Second), domain.ErrInvalidInterval)
	require.NoError(t, s.SetIntervalSeconds(5))
	assert.Equal(t, 5, s.State().RefreshInterval)
}

func TestScheduler_PublishesToSinks(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestScheduler(&fakeDirectory{devices: fleet(1, 1, 0)}, nil, SchedulerConfig{
		Publishers: []ports.SnapshotPublisher{pub},
	})

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return pub.count() == 1 }, waitFor, 5*time.Millisecond)
}

type panickingBuilder struct{}

func (panickingBuilder) Build(context.Context) (domain.DashboardSnapshot, error) {
	panic("broken builder")
}

func TestScheduler_BuilderPanic(t *testing.T) {
	s := NewScheduler(panickingBuilder{}, SchedulerConfig{})

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Degraded)
	assert.Equal(t, domain.SystemWarning, snap.Stats.SystemStatus)
	assert.True(t, s.State().HasError)
	assert.Contains(t, s.State().ErrorMessage, "broken builder")
}
