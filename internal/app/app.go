package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/alerts"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/directory"
	grpcserver "github.com/lcalzada-xor/fleetpulse/internal/adapters/grpc"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/messaging"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/reporting"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/fleetpulse/internal/adapters/web/server"
	"github.com/lcalzada-xor/fleetpulse/internal/config"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
	"github.com/lcalzada-xor/fleetpulse/internal/core/services/dashboard"
	"github.com/lcalzada-xor/fleetpulse/internal/geo"
	"github.com/lcalzada-xor/fleetpulse/internal/mock"
	"github.com/lcalzada-xor/fleetpulse/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config     *config.Config
	Scheduler  *dashboard.Scheduler
	Service    *dashboard.Service
	WebServer  *webserver.Server
	GrpcServer *grpc.Server

	fleet   *mock.Fleet
	trigger *messaging.MQTTTrigger
	closers []io.Closer
	logger  *slog.Logger
}

// upstream groups the three collaborators a directory mode provides.
type upstream struct {
	devices ports.DeviceDirectory
	alerts  ports.AlertSource
	acks    ports.AlertAcknowledger
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
		logger: slog.Default().With("component", "app"),
	}

	if err := app.bootstrap(); err != nil {
		app.closeAll()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation
	telemetry.InitMetrics()

	// 2. Upstream sources
	up, err := app.initUpstream()
	if err != nil {
		return err
	}

	// 3. Dashboard pipeline
	publishers := app.initPublishers()

	devices := dashboard.NewDeviceStore(up.devices, app.Config.Directory.FetchTimeout)
	feed := dashboard.NewAlertFeed(up.alerts, app.Config.Directory.FetchTimeout)
	ranker := dashboard.NewAlertRanker(app.Config.Dashboard.AlertLimit)
	pipeline := dashboard.NewPipeline(devices, feed, ranker, dashboard.WithLogger(slog.Default()))

	app.Scheduler = dashboard.NewScheduler(pipeline, dashboard.SchedulerConfig{
		Interval:    app.Config.Dashboard.RefreshInterval,
		AutoRefresh: app.Config.Dashboard.AutoRefresh,
		Publishers:  publishers,
		Logger:      slog.Default(),
	})
	app.Service = dashboard.NewService(app.Scheduler, devices, up.acks)

	// 4. Servers & Integration
	return app.initServers()
}

func (app *Application) initUpstream() (upstream, error) {
	dir := app.Config.Directory

	switch dir.Mode {
	case config.ModeSQLite:
		if err := os.MkdirAll(filepath.Dir(dir.DBPath), 0755); err != nil {
			return upstream{}, fmt.Errorf("failed to create DB directory: %w", err)
		}
		store, err := storage.NewSQLiteAdapter(dir.DBPath)
		if err != nil {
			return upstream{}, fmt.Errorf("failed to init device storage: %w", err)
		}
		app.closers = append(app.closers, store)

		repo, err := alerts.NewSQLiteRepository(dir.DBPath)
		if err != nil {
			return upstream{}, fmt.Errorf("failed to init alert storage: %w", err)
		}
		app.closers = append(app.closers, repo)

		app.logger.Info("Using SQLite directory", "path", dir.DBPath)
		return upstream{devices: store, alerts: repo, acks: repo}, nil

	case config.ModeHTTP:
		client := directory.NewClient(dir.URL, dir.FetchTimeout)
		app.logger.Info("Using remote device directory", "url", dir.URL)
		return upstream{devices: client, alerts: client, acks: client}, nil

	case config.ModeMock:
		m := app.Config.Mock
		gen := mock.NewDataGenerator(geo.NewStaticProvider(m.Latitude, m.Longitude), m.Seed)
		app.fleet = mock.NewFleet(gen, mock.ScenarioByName(m.Scenario))
		app.logger.Info("Mock Mode Active: simulating device fleet", "scenario", m.Scenario, "seed", m.Seed)
		return upstream{devices: app.fleet, alerts: app.fleet, acks: app.fleet}, nil
	}

	return upstream{}, fmt.Errorf("unknown directory mode %q", dir.Mode)
}

func (app *Application) initPublishers() []ports.SnapshotPublisher {
	k := app.Config.Kafka
	if len(k.Brokers) == 0 {
		return nil
	}
	pub := messaging.NewKafkaPublisher(k.Brokers, k.Topic, slog.Default())
	app.closers = append(app.closers, pub)
	app.logger.Info("Publishing snapshots to Kafka", "brokers", k.Brokers, "topic", k.Topic)
	return []ports.SnapshotPublisher{pub}
}

func (app *Application) initServers() error {
	h := app.Config.HTTP
	cfg := webserver.Config{
		Addr:           h.Addr,
		AllowedOrigins: h.AllowedOrigins,
		RefreshLimit:   h.RefreshLimit,
	}
	if h.AccessLog {
		cfg.AccessLog = os.Stdout
	}
	app.WebServer = webserver.NewServer(cfg, app.Service, reporting.NewPDFExporter())

	if app.Config.GRPC.Port > 0 {
		app.GrpcServer = grpcserver.NewGrpcServer(app.Service)
	}

	if m := app.Config.MQTT; m.Broker != "" {
		trigger, err := messaging.NewMQTTTrigger(m.Broker, m.ClientID, m.Topic, app.Service, slog.Default())
		if err != nil {
			return fmt.Errorf("mqtt trigger: %w", err)
		}
		app.trigger = trigger
	}
	return nil
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("Starting FleetPulse components...")

	errChan := make(chan error, 4)

	// 1. Refresh loop and simulation
	go func() {
		if err := app.Scheduler.Run(ctx); err != nil {
			errChan <- fmt.Errorf("scheduler error: %w", err)
		}
	}()

	// A zero step interval keeps the simulated fleet frozen.
	if app.fleet != nil && app.Config.Mock.StepInterval > 0 {
		go app.fleet.Run(ctx, app.Config.Mock.StepInterval, nil)
	}

	// 2. Servers
	go func() {
		app.logger.Info("Web Server listening", "addr", app.Config.HTTP.Addr)
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.GrpcServer != nil {
		go func() {
			app.logger.Info("gRPC Server listening", "port", app.Config.GRPC.Port)
			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPC.Port))
			if err != nil {
				errChan <- fmt.Errorf("grpc listen error: %w", err)
				return
			}

			go func() {
				<-ctx.Done()
				app.GrpcServer.GracefulStop()
			}()

			if err := app.GrpcServer.Serve(lis); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		}()
	}

	// 3. Device events
	if app.trigger != nil {
		if err := app.trigger.Start(); err != nil {
			// The periodic refresh still runs without the broker.
			app.logger.Warn("MQTT trigger unavailable", "error", err)
		}
	}

	app.logger.Info("FleetPulse Ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Termination signal received")
	case runErr = <-errChan:
	}

	if err := app.cleanup(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (app *Application) cleanup() error {
	app.logger.Info("Cleaning up resources...")

	if app.trigger != nil {
		app.trigger.Stop()
	}
	if app.GrpcServer != nil {
		app.GrpcServer.Stop()
	}
	return app.closeAll()
}

// closeAll closes storage and publishers in reverse order of creation.
func (app *Application) closeAll() error {
	var firstErr error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	app.closers = nil
	return firstErr
}
