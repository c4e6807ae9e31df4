// Package mocks holds testify doubles of the core ports.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// MockDashboardService is a mock of ports.DashboardService
type MockDashboardService struct {
	mock.Mock

	Snapshots *Stream[domain.DashboardSnapshot]
	States    *Stream[domain.DashboardState]
}

// NewMockDashboardService creates a mock whose Subscribe calls hand out the
// Snapshots and States streams.
func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{
		Snapshots: NewStream[domain.DashboardSnapshot](),
		States:    NewStream[domain.DashboardState](),
	}
}

func (m *MockDashboardService) Latest() (domain.DashboardSnapshot, bool) {
	args := m.Called()
	return args.Get(0).(domain.DashboardSnapshot), args.Bool(1)
}

func (m *MockDashboardService) Subscribe() ports.Stream[domain.DashboardSnapshot] {
	return m.Snapshots
}

func (m *MockDashboardService) SubscribeState() ports.Stream[domain.DashboardState] {
	return m.States
}

func (m *MockDashboardService) Refresh(ctx context.Context) (domain.DashboardSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DashboardSnapshot), args.Error(1)
}

func (m *MockDashboardService) TriggerRefresh() {
	m.Called()
}

func (m *MockDashboardService) State() domain.DashboardState {
	args := m.Called()
	return args.Get(0).(domain.DashboardState)
}

func (m *MockDashboardService) SetAutoRefresh(enabled bool) {
	m.Called(enabled)
}

func (m *MockDashboardService) ToggleAutoRefresh() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDashboardService) SetIntervalSeconds(seconds int) error {
	args := m.Called(seconds)
	return args.Error(0)
}

func (m *MockDashboardService) AcknowledgeAlert(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDashboardService) ListDevices(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error) {
	args := m.Called(ctx, filter)
	devices, _ := args.Get(0).([]domain.Device)
	return devices, args.Error(1)
}

var _ ports.DashboardService = (*MockDashboardService)(nil)

// Stream is a hand-fed ports.Stream.
type Stream[T any] struct {
	C      chan T
	once   sync.Once
	Closed chan struct{}
}

// NewStream creates a stream with a small buffer.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{C: make(chan T, 4), Closed: make(chan struct{})}
}

func (s *Stream[T]) Updates() <-chan T { return s.C }

func (s *Stream[T]) Close() {
	s.once.Do(func() { close(s.Closed) })
}
