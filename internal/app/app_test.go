package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/storage"
	"github.com/lcalzada-xor/fleetpulse/internal/config"
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.GRPC.Port = 0
	cfg.Directory.DBPath = filepath.Join(t.TempDir(), "fleet.db")
	cfg.Mock.Seed = 7
	return cfg
}

func getSnapshot(t *testing.T, app *Application) domain.DashboardSnapshot {
	t.Helper()
	srv := httptest.NewServer(app.WebServer.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap domain.DashboardSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	return snap
}

func TestNew_MockMode(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	defer app.cleanup()

	assert.NotNil(t, app.fleet)
	assert.Nil(t, app.GrpcServer)
	assert.Nil(t, app.trigger)

	snap := getSnapshot(t, app)
	assert.Equal(t, 24, snap.Stats.TotalDevices)
	assert.False(t, snap.Degraded)
	assert.Equal(t, uint64(1), snap.Sequence)
}

func TestNew_SQLiteMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory.Mode = config.ModeSQLite

	seed, err := storage.NewSQLiteAdapter(cfg.Directory.DBPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, seed.SaveDevice(ctx, domain.Device{ID: 1, Name: "Pump 1", Identifier: "TMP-1", Type: domain.TypeTemperatureSensor, Status: domain.StatusActive, Active: true}))
	require.NoError(t, seed.SaveDevice(ctx, domain.Device{ID: 2, Name: "Pump 2", Identifier: "TMP-2", Type: domain.TypeTemperatureSensor, Status: domain.StatusOffline}))
	require.NoError(t, seed.Close())

	app, err := New(cfg)
	require.NoError(t, err)
	defer app.cleanup()

	assert.Len(t, app.closers, 2)

	snap := getSnapshot(t, app)
	assert.Equal(t, 2, snap.Stats.TotalDevices)
	assert.Equal(t, 1, snap.Stats.OnlineDevices)
}

func TestNew_Optional(t *testing.T) {
	cfg := testConfig(t)
	cfg.GRPC.Port = 9555
	cfg.Kafka.Brokers = []string{"127.0.0.1:9092"}
	cfg.MQTT.Broker = "tcp://127.0.0.1:1883"

	app, err := New(cfg)
	require.NoError(t, err)

	assert.NotNil(t, app.GrpcServer)
	assert.NotNil(t, app.trigger)
	// Kafka writers connect lazily, so closing without traffic succeeds.
	assert.Len(t, app.closers, 1)
	assert.NoError(t, app.closeAll())
	app.GrpcServer.Stop()
}

func TestNew_UnknownMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory.Mode = "ldap"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mock.StepInterval = 10 * time.Millisecond

	app, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
