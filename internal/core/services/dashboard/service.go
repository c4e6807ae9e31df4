package dashboard

import (
	"context"
	"fmt"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// Service is the dashboard facade used by the presentation adapters.
type Service struct {
	*Scheduler

	devices *DeviceStore
	acks    ports.AlertAcknowledger
}

var _ ports.DashboardService = (*Service)(nil)

// NewService creates a service. acks may be nil when the alert source is
// read-only.
func NewService(scheduler *Scheduler, devices *DeviceStore, acks ports.AlertAcknowledger) *Service {
	return &Service{
		Scheduler: scheduler,
		devices:   devices,
		acks:      acks,
	}
}

// Subscribe attaches a snapshot observer.
func (s *Service) Subscribe() ports.Stream[domain.DashboardSnapshot] {
	return s.Scheduler.Subscribe()
}

// SubscribeState attaches an operational-state observer.
func (s *Service) SubscribeState() ports.Stream[domain.DashboardState] {
	return s.Scheduler.SubscribeState()
}

// AcknowledgeAlert marks the alert and schedules a refresh so it drops out of
// the ranked list.
func (s *Service) AcknowledgeAlert(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidAlertID
	}
	if s.acks == nil {
		return fmt.Errorf("acknowledge alert %d: %w", id, domain.ErrUpstreamUnavailable)
	}
	if err := s.acks.AcknowledgeAlert(ctx, id); err != nil {
		return fmt.Errorf("acknowledge alert %d: %w", id, err)
	}
	s.TriggerRefresh()
	return nil
}

// ListDevices returns the current devices matching the filter.
func (s *Service) ListDevices(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error) {
	return s.devices.Filtered(ctx, filter)
}
