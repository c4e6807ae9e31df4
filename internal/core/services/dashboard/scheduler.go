package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
	"github.com/lcalzada-xor/fleetpulse/internal/telemetry"
)

// DefaultRefreshInterval is the automatic refresh period.
const DefaultRefreshInterval = 30 * time.Second

const publishTimeout = 5 * time.Second

// SchedulerConfig holds the scheduler settings.
type SchedulerConfig struct {
	Interval    time.Duration
	AutoRefresh bool
	Publishers  []ports.SnapshotPublisher
	Logger      *slog.Logger
}

// flight is the single in-flight refresh. Late callers wait on done and read
// the shared result.
type flight struct {
	done    chan struct{}
	started time.Time
	snap    domain.DashboardSnapshot
}

// Scheduler drives snapshot recomputation on a period and on demand. At most
// one cycle runs at a time and its result is shared by every observer.
type Scheduler struct {
	builder    Builder
	publishers []ports.SnapshotPublisher
	logger     *slog.Logger

	snapshots *Broadcaster[domain.DashboardSnapshot]
	states    *Broadcaster[domain.DashboardState]
	latest    atomic.Pointer[domain.DashboardSnapshot]

	trigger    chan struct{}
	intervalCh chan time.Duration

	mu          sync.Mutex
	ctx         context.Context
	current     *flight
	seq         uint64
	phase       domain.RefreshPhase
	autoRefresh bool
	interval    time.Duration
	lastUpdate  time.Time
	hasError    bool
	errMsg      string
	observers   int
	stopped     bool
}

// NewScheduler creates a scheduler. A non-positive interval selects
// DefaultRefreshInterval.
func NewScheduler(builder Builder, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		builder:    builder,
		publishers: cfg.Publishers,
		logger:     logger.With("component", "scheduler"),
		snapshots: NewBroadcaster(func(a, b domain.DashboardSnapshot) bool {
			return a.Sequence < b.Sequence
		}),
		states:      NewBroadcaster[domain.DashboardState](nil),
		trigger:     make(chan struct{}, 1),
		intervalCh:  make(chan time.Duration, 1),
		ctx:         context.Background(),
		phase:       domain.PhaseIdle,
		autoRefresh: cfg.AutoRefresh,
		interval:    cfg.Interval,
	}
	s.states.Publish(s.stateLocked())
	return s
}

// Run owns the ticker loop until ctx is cancelled. Cycles started after Run
// returns are refused with domain.ErrSchedulerStopped.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	interval := s.interval
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Refresh scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.stopped = true
			s.mu.Unlock()
			s.logger.Info("Refresh scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick()
		case <-s.trigger:
			s.begin("manual")
		case d := <-s.intervalCh:
			ticker.Reset(d)
			s.logger.Info("Refresh interval changed", "interval", d)
		}
	}
}

// tick starts a cycle when auto refresh is on and someone is listening.
func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || !s.autoRefresh || s.observers == 0 {
		return
	}
	if s.current != nil {
		telemetry.RefreshCoalesced.WithLabelValues("tick").Inc()
		return
	}
	s.startLocked()
}

// begin joins the in-flight cycle or starts a new one. It returns nil once
// the scheduler has stopped.
func (s *Scheduler) begin(trigger string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	if s.current != nil {
		telemetry.RefreshCoalesced.WithLabelValues(trigger).Inc()
		return s.current
	}
	return s.startLocked()
}

func (s *Scheduler) startLocked() *flight {
	f := &flight{done: make(chan struct{}), started: time.Now()}
	s.current = f
	s.phase = domain.PhaseFetching
	s.states.Publish(s.stateLocked())

	go s.execute(s.ctx, f)
	return f
}

func (s *Scheduler) execute(ctx context.Context, f *flight) {
	ctx, span := telemetry.Tracer().Start(ctx, "dashboard.refresh")
	defer span.End()

	snap, err := s.build(ctx)
	degraded := err != nil || snap.Degraded

	s.mu.Lock()
	s.seq++
	snap.Sequence = s.seq
	s.latest.Store(&snap)

	s.current = nil
	s.lastUpdate = snap.ComputedAt
	if s.lastUpdate.IsZero() {
		s.lastUpdate = time.Now()
	}
	s.hasError = degraded
	s.errMsg = ""
	s.phase = domain.PhaseSnapshotReady
	if degraded {
		s.phase = domain.PhaseDegraded
		if err != nil {
			s.errMsg = err.Error()
		}
	}

	// Published under s.mu so a concurrent Subscribe sees either the
	// in-flight cycle or its result, never neither.
	s.snapshots.Publish(snap)
	s.states.Publish(s.stateLocked())
	s.phase = domain.PhaseIdle
	s.states.Publish(s.stateLocked())
	s.mu.Unlock()

	f.snap = snap
	close(f.done)

	outcome := "ready"
	if degraded {
		outcome = "degraded"
		s.logger.Warn("Refresh degraded", "sequence", snap.Sequence, "stages", snap.FailedStages, "error", err)
	} else {
		s.logger.Debug("Refresh completed", "sequence", snap.Sequence, "devices", snap.Stats.TotalDevices)
	}
	span.SetAttributes(attribute.Int64("sequence", int64(snap.Sequence)), attribute.String("outcome", outcome))
	telemetry.RefreshCycles.WithLabelValues(outcome).Inc()
	telemetry.RefreshDuration.Observe(time.Since(f.started).Seconds())
	recordFleet(snap.Stats)

	s.publish(snap)
}

// build shields the scheduler from a builder that panics outright.
func (s *Scheduler) build(ctx context.Context) (snap domain.DashboardSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = NewFallbackProvider().Snapshot()
			snap.ComputedAt = time.Now()
			snap.Stats.LastUpdate = snap.ComputedAt
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()
	return s.builder.Build(ctx)
}

func (s *Scheduler) publish(snap domain.DashboardSnapshot) {
	for _, p := range s.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			s.logger.Warn("Failed to publish snapshot", "sequence", snap.Sequence, "error", err)
		}
		cancel()
	}
}

func recordFleet(stats domain.DashboardStats) {
	telemetry.FleetDevices.WithLabelValues("total").Set(float64(stats.TotalDevices))
	telemetry.FleetDevices.WithLabelValues("online").Set(float64(stats.OnlineDevices))
	telemetry.FleetDevices.WithLabelValues("offline").Set(float64(stats.OfflineDevices))
	telemetry.FleetDevices.WithLabelValues("maintenance").Set(float64(stats.MaintenanceDevices))
	telemetry.FleetDevices.WithLabelValues("error").Set(float64(stats.ErrorDevices))
}

// Refresh blocks until the current or a new cycle completes. It never
// returns the degradation reason; that is reported through State.
func (s *Scheduler) Refresh(ctx context.Context) (domain.DashboardSnapshot, error) {
	f := s.begin("refresh")
	if f == nil {
		return domain.DashboardSnapshot{}, domain.ErrSchedulerStopped
	}
	select {
	case <-f.done:
		return f.snap, nil
	case <-ctx.Done():
		return domain.DashboardSnapshot{}, ctx.Err()
	}
}

// TriggerRefresh asks the loop for a cycle without waiting for it.
func (s *Scheduler) TriggerRefresh() {
	select {
	case s.trigger <- struct{}{}:
	default:
		telemetry.RefreshCoalesced.WithLabelValues("manual").Inc()
	}
}

// Subscribe attaches a snapshot observer. During a cycle the observer waits
// for that cycle's result; otherwise it receives the last snapshot at once.
// The first observer starts a cycle when no fresh snapshot exists.
func (s *Scheduler) Subscribe() *Subscription[domain.DashboardSnapshot] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers++
	telemetry.Observers.Set(float64(s.observers))

	sub := s.snapshots.Subscribe(s.current == nil, s.detach)

	if s.current == nil && !s.stopped && s.autoRefresh && s.observers == 1 && s.staleLocked() {
		s.startLocked()
	} else {
		s.states.Publish(s.stateLocked())
	}
	return sub
}

func (s *Scheduler) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers--
	telemetry.Observers.Set(float64(s.observers))
	s.states.Publish(s.stateLocked())
}

func (s *Scheduler) staleLocked() bool {
	last := s.latest.Load()
	return last == nil || time.Since(last.ComputedAt) >= s.interval
}

// SubscribeState attaches an operational-state observer. State observers do
// not keep the ticker busy.
func (s *Scheduler) SubscribeState() *Subscription[domain.DashboardState] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states.Subscribe(true, nil)
}

// Latest returns the last computed snapshot.
func (s *Scheduler) Latest() (domain.DashboardSnapshot, bool) {
	if snap := s.latest.Load(); snap != nil {
		return *snap, true
	}
	return domain.DashboardSnapshot{}, false
}

// State returns the current operational state.
func (s *Scheduler) State() domain.DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Scheduler) stateLocked() domain.DashboardState {
	return domain.DashboardState{
		IsLoading:       s.current != nil,
		LastUpdate:      s.lastUpdate,
		HasError:        s.hasError,
		ErrorMessage:    s.errMsg,
		AutoRefresh:     s.autoRefresh,
		RefreshInterval: int(s.interval / time.Second),
		Phase:           s.phase,
		Observers:       s.observers,
	}
}

// SetAutoRefresh enables or disables periodic cycles.
func (s *Scheduler) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoRefresh == enabled {
		return
	}
	s.autoRefresh = enabled
	s.states.Publish(s.stateLocked())
	s.logger.Info("Auto refresh toggled", "enabled", enabled)
}

// ToggleAutoRefresh flips auto refresh and returns the new value.
func (s *Scheduler) ToggleAutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoRefresh = !s.autoRefresh
	s.states.Publish(s.stateLocked())
	s.logger.Info("Auto refresh toggled", "enabled", s.autoRefresh)
	return s.autoRefresh
}

// SetInterval changes the refresh period. The running loop picks it up at
// its next scheduling decision.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d <= 0 {
		return domain.ErrInvalidInterval
	}

	s.mu.Lock()
	s.interval = d
	s.states.Publish(s.stateLocked())
	s.mu.Unlock()

	// Latest wins: drop a pending value the loop has not consumed yet.
	select {
	case <-s.intervalCh:
	default:
	}
	select {
	case s.intervalCh <- d:
	default:
	}
	return nil
}

// SetIntervalSeconds is SetInterval in whole seconds.
func (s *Scheduler) SetIntervalSeconds(seconds int) error {
	if seconds <= 0 {
		return domain.ErrInvalidInterval
	}
	return s.SetInterval(time.Duration(seconds) * time.Second)
}
