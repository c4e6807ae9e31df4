package dashboard

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
	"github.com/lcalzada-xor/fleetpulse/internal/telemetry"
)

// DefaultFetchTimeout bounds a single upstream call.
const DefaultFetchTimeout = 10 * time.Second

// DeviceStore exposes the current device collection from the directory.
// Each read is a fresh fetch and may fail.
type DeviceStore struct {
	directory ports.DeviceDirectory
	timeout   time.Duration
}

// NewDeviceStore creates a store. A non-positive timeout selects DefaultFetchTimeout.
func NewDeviceStore(directory ports.DeviceDirectory, timeout time.Duration) *DeviceStore {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &DeviceStore{directory: directory, timeout: timeout}
}

// Devices returns a private copy of the collection.
func (s *DeviceStore) Devices(ctx context.Context) ([]domain.Device, error) {
	return fetchWithin(ctx, s.timeout, "devices", s.directory.ListDevices)
}

// Filtered returns the devices matching filter, pushing the filter down to
// the directory when it supports it.
func (s *DeviceStore) Filtered(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error) {
	if f, ok := s.directory.(ports.DeviceFilterer); ok {
		return fetchWithin(ctx, s.timeout, "devices", func(ctx context.Context) ([]domain.Device, error) {
			return f.FilterDevices(ctx, filter)
		})
	}
	devices, err := s.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterDevices(devices, filter), nil
}

// AlertFeed reads raw alerts from the alert source.
type AlertFeed struct {
	source  ports.AlertSource
	timeout time.Duration
}

// NewAlertFeed creates a feed. A non-positive timeout selects DefaultFetchTimeout.
func NewAlertFeed(source ports.AlertSource, timeout time.Duration) *AlertFeed {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &AlertFeed{source: source, timeout: timeout}
}

// Alerts returns a private copy of the raw alerts.
func (f *AlertFeed) Alerts(ctx context.Context) ([]domain.Alert, error) {
	return fetchWithin(ctx, f.timeout, "alerts", f.source.ListAlerts)
}

// fetchWithin runs one upstream call under a deadline and a span. Any error
// is reported as domain.ErrUpstreamUnavailable.
func fetchWithin[T any](ctx context.Context, timeout time.Duration, source string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "upstream."+source)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	items, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.UpstreamFetches.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("%s: %w: %w", source, domain.ErrUpstreamUnavailable, err)
	}

	telemetry.UpstreamFetches.WithLabelValues(source, "ok").Inc()
	span.SetAttributes(attribute.Int("items", len(items)))

	if items == nil {
		return []T{}, nil
	}
	return slices.Clone(items), nil
}
