package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RefreshCycles counts completed refresh cycles by outcome (ready, degraded)
	RefreshCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetpulse",
			Name:      "refresh_cycles_total",
			Help:      "Total number of completed dashboard refresh cycles",
		},
		[]string{"outcome"},
	)

	// RefreshCoalesced counts triggers dropped because a cycle was already in flight
	RefreshCoalesced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetpulse",
			Name:      "refresh_coalesced_total",
			Help:      "Total number of refresh triggers coalesced into an in-flight cycle",
		},
		[]string{"trigger"},
	)

	// RefreshDuration observes the wall time of a refresh cycle
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fleetpulse",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of dashboard refresh cycles",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// StageFailures counts pipeline stages replaced by fallback output
	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetpulse",
			Name:      "stage_failures_total",
			Help:      "Total number of pipeline stages that fell back",
		},
		[]string{"stage"},
	)

	// UpstreamFetches counts upstream calls by source and result
	UpstreamFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetpulse",
			Name:      "upstream_fetches_total",
			Help:      "Total number of upstream fetches",
		},
		[]string{"source", "result"},
	)

	// Observers tracks attached snapshot subscribers
	Observers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fleetpulse",
			Name:      "observers",
			Help:      "Number of attached snapshot observers",
		},
	)

	// FleetDevices reports the device counts of the last snapshot
	FleetDevices = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fleetpulse",
			Name:      "fleet_devices",
			Help:      "Device counts of the last published snapshot",
		},
		[]string{"state"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(RefreshCycles)
		prometheus.DefaultRegisterer.Register(RefreshCoalesced)
		prometheus.DefaultRegisterer.Register(RefreshDuration)
		prometheus.DefaultRegisterer.Register(StageFailures)
		prometheus.DefaultRegisterer.Register(UpstreamFetches)
		prometheus.DefaultRegisterer.Register(Observers)
		prometheus.DefaultRegisterer.Register(FleetDevices)
	})
}
