package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/telemetry"
)

// Builder produces one snapshot per call.
type Builder interface {
	// Build always returns a usable snapshot. A non-nil error describes the
	// stages that fell back.
	Build(ctx context.Context) (domain.DashboardSnapshot, error)
}

// Pipeline wires the aggregation stages over one fetch of the upstream data.
type Pipeline struct {
	devices *DeviceStore
	alerts  *AlertFeed // nil when no alert source is configured

	stats       *StatsAggregator
	byStatus    *DistributionAnalyzer
	byType      *DistributionAnalyzer
	statusChart *ChartProjector
	typeChart   *ChartProjector
	ranker      *AlertRanker
	fallback    *FallbackProvider

	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the time source.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides snapshot identifiers.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *Pipeline) { p.newID = newID }
}

// WithLogger sets the logger used for stage failures.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline creates a pipeline. alerts may be nil.
func NewPipeline(devices *DeviceStore, alerts *AlertFeed, ranker *AlertRanker, opts ...PipelineOption) *Pipeline {
	if ranker == nil {
		ranker = NewAlertRanker(DefaultAlertLimit)
	}
	byStatus := NewStatusAnalyzer()
	byType := NewTypeAnalyzer()

	p := &Pipeline{
		devices:     devices,
		alerts:      alerts,
		stats:       NewStatsAggregator(),
		byStatus:    byStatus,
		byType:      byType,
		statusChart: NewChartProjector(byStatus.Describe),
		typeChart:   NewChartProjector(byType.Describe),
		ranker:      ranker,
		fallback:    NewFallbackProvider(),
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p
}

// Build fetches devices and alerts concurrently, then runs the pure stages
// over the same device slice. Each failed stage is replaced by its fallback.
func (p *Pipeline) Build(ctx context.Context) (domain.DashboardSnapshot, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "dashboard.build")
	defer span.End()

	up := p.fetch(ctx)
	if up.err != nil {
		span.RecordError(up.err)
	}
	devices, alerts := up.devices, up.alerts
	devErr, alertsErr := up.devErr, up.alertsErr
	b := &build{logger: p.logger}

	var snap domain.DashboardSnapshot
	if devErr != nil {
		b.fail(domain.StageDevices, devErr)
		snap = p.fallback.Snapshot()
	} else {
		snap.Stats = runStage(b, domain.StageStats, func() domain.DashboardStats {
			return p.stats.Aggregate(devices)
		}, p.fallback.Stats)

		snap.StatusDistribution = runStage(b, domain.StageStatusDistribution, func() domain.Distribution {
			return p.byStatus.Analyze(devices)
		}, p.fallback.Distribution)

		snap.TypeDistribution = runStage(b, domain.StageTypeDistribution, func() domain.Distribution {
			return p.byType.Analyze(devices)
		}, p.fallback.Distribution)

		snap.StatusChart = runStage(b, domain.StageCharts, func() domain.ChartProjection {
			return p.statusChart.Project(snap.StatusDistribution)
		}, p.fallback.Chart)

		snap.TypeChart = runStage(b, domain.StageCharts, func() domain.ChartProjection {
			return p.typeChart.Project(snap.TypeDistribution)
		}, p.fallback.Chart)

		snap.Cards = BuildCards(snap.Stats)
	}

	switch {
	case alertsErr != nil:
		b.fail(domain.StageAlerts, alertsErr)
		snap.Alerts = p.fallback.Alerts()
	default:
		snap.Alerts = runStage(b, domain.StageRanking, func() []domain.Alert {
			return p.ranker.Rank(alerts)
		}, p.fallback.Alerts)
	}

	now := p.now()
	snap.ID = p.newID()
	snap.ComputedAt = now
	snap.Stats.LastUpdate = now
	snap.FailedStages = b.stages
	snap.Degraded = len(b.stages) > 0

	span.SetAttributes(
		attribute.Int("devices.total", snap.Stats.TotalDevices),
		attribute.Int("alerts.shown", len(snap.Alerts)),
		attribute.Bool("degraded", snap.Degraded),
	)

	return snap, errors.Join(b.errs...)
}

// fetched holds one concurrent read of both upstream sources.
type fetched struct {
	devices   []domain.Device
	alerts    []domain.Alert
	devErr    error
	alertsErr error
	err       error // first failure reported by the group
}

// fetch reads devices and alerts concurrently. Each source keeps its own
// error so one failing source never discards the other's data.
func (p *Pipeline) fetch(ctx context.Context) fetched {
	var out fetched
	var g errgroup.Group
	g.Go(func() error {
		out.devices, out.devErr = p.devices.Devices(ctx)
		if out.devErr != nil {
			return fmt.Errorf("%s: %w", domain.StageDevices, out.devErr)
		}
		return nil
	})
	if p.alerts != nil {
		g.Go(func() error {
			out.alerts, out.alertsErr = p.alerts.Alerts(ctx)
			if out.alertsErr != nil {
				return fmt.Errorf("%s: %w", domain.StageAlerts, out.alertsErr)
			}
			return nil
		})
	}
	out.err = g.Wait()
	return out
}

// build collects the stage failures of one Build call.
type build struct {
	logger *slog.Logger
	stages []domain.Stage
	errs   []error
}

func (b *build) fail(stage domain.Stage, err error) {
	b.logger.Warn("Stage fell back", "stage", stage, "error", err)
	telemetry.StageFailures.WithLabelValues(string(stage)).Inc()
	for _, s := range b.stages {
		if s == stage {
			b.errs = append(b.errs, err)
			return
		}
	}
	b.stages = append(b.stages, stage)
	b.errs = append(b.errs, err)
}

// runStage executes a pure stage and substitutes the fallback if it panics.
func runStage[T any](b *build, stage domain.Stage, run func() T, fallback func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(stage, fmt.Errorf("%s: %v", stage, r))
			out = fallback()
		}
	}()
	return run()
}
