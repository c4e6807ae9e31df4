package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/ws"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// Config holds the HTTP surface settings.
type Config struct {
	Addr           string
	AllowedOrigins []string // CORS and websocket origins; empty allows any

	// Manual refresh rate limit per client
	RefreshLimit  int
	RefreshWindow time.Duration

	// AccessLog receives combined-format access lines; nil disables them.
	AccessLog io.Writer
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr             string
	Service          ports.DashboardService
	WSManager        *ws.Manager
	DashboardHandler *handlers.DashboardHandler
	DeviceHandler    *handlers.DeviceHandler

	cfg            Config
	refreshLimiter *middleware.RateLimiter
	srv            *http.Server
	logger         *slog.Logger
}

// NewServer creates a new web server. renderer may be nil.
func NewServer(cfg Config, service ports.DashboardService, renderer handlers.SnapshotRenderer) *Server {
	if cfg.RefreshLimit <= 0 {
		cfg.RefreshLimit = 10
	}
	if cfg.RefreshWindow <= 0 {
		cfg.RefreshWindow = time.Minute
	}

	return &Server{
		Addr:             cfg.Addr,
		Service:          service,
		WSManager:        ws.NewManager(service, cfg.AllowedOrigins),
		DashboardHandler: handlers.NewDashboardHandler(service, renderer),
		DeviceHandler:    handlers.NewDeviceHandler(service),
		cfg:              cfg,
		refreshLimiter:   middleware.NewRateLimiter(cfg.RefreshLimit, cfg.RefreshWindow),
		logger:           slog.Default().With("component", "web_server"),
	}
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	// "fleetpulse-http" is the span name of every request
	return otelhttp.NewHandler(SetupRoutes(s), "fleetpulse-http")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.refreshLimiter.StartCleanup(ctx, time.Minute)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.WSManager.Close()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Web server shutdown error", "error", err)
		}
	}()

	s.logger.Info("Web server listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
