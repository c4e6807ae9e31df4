package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&DeviceModel{})
	require.NoError(t, err)

	return &SQLiteAdapter{db: db}
}

func TestSaveAndGetDevice(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	lat, lng := -23.55, -46.63
	seen := time.Now().UTC().Truncate(time.Second)
	dev := domain.Device{
		ID:                1,
		Name:              "Cold room sensor",
		Identifier:        "TMP-001",
		Type:              domain.TypeTemperatureSensor,
		Status:            domain.StatusActive,
		Active:            true,
		Latitude:          &lat,
		Longitude:         &lng,
		LastCommunication: &seen,
	}

	require.NoError(t, adapter.SaveDevice(ctx, dev))

	stored, err := adapter.GetDevice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, dev.Identifier, stored.Identifier)
	assert.Equal(t, domain.TypeTemperatureSensor, stored.Type)
	assert.True(t, stored.Active)
	assert.True(t, stored.HasLocation())
	require.NotNil(t, stored.LastCommunication)
	assert.True(t, seen.Equal(*stored.LastCommunication))
}

func TestGetDevice_NotFound(t *testing.T) {
	adapter := setupInMemoryDB(t)

	_, err := adapter.GetDevice(context.Background(), 42)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestSaveDevice_Update(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	dev := domain.Device{ID: 7, Name: "Truck", Identifier: "TRK-7", Status: domain.StatusActive, Active: true}
	require.NoError(t, adapter.SaveDevice(ctx, dev))

	dev.Status = domain.StatusMaintenance
	dev.Active = false
	require.NoError(t, adapter.SaveDevice(ctx, dev))

	stored, err := adapter.GetDevice(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMaintenance, stored.Status)
	assert.False(t, stored.Active)
}

func seedDevices(t *testing.T, adapter *SQLiteAdapter) {
	devices := []domain.Device{
		{ID: 1, Name: "Truck 7", Identifier: "TRK-7", Type: domain.TypeTracker, Status: domain.StatusActive, Active: true, Location: "Depot"},
		{ID: 2, Name: "Truck 9", Identifier: "TRK-9", Type: domain.TypeTracker, Status: domain.StatusOffline},
		{ID: 3, Name: "Boiler", Identifier: "TMP-1", Type: domain.TypeTemperatureSensor, Status: "error", Active: true},
	}
	require.NoError(t, adapter.SaveDevicesBatch(context.Background(), devices))
}

func TestListDevices(t *testing.T) {
	adapter := setupInMemoryDB(t)
	seedDevices(t, adapter)

	devices, err := adapter.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, int64(1), devices[0].ID)
	assert.Equal(t, int64(3), devices[2].ID)
}

func TestSaveDevicesBatch_Upsert(t *testing.T) {
	adapter := setupInMemoryDB(t)
	seedDevices(t, adapter)

	err := adapter.SaveDevicesBatch(context.Background(), []domain.Device{
		{ID: 2, Name: "Truck 9", Identifier: "TRK-9", Type: domain.TypeTracker, Status: domain.StatusActive, Active: true},
	})
	require.NoError(t, err)

	stored, err := adapter.GetDevice(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, stored.Active)

	all, err := adapter.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFilterDevices(t *testing.T) {
	adapter := setupInMemoryDB(t)
	seedDevices(t, adapter)
	inactive := false

	tests := []struct {
		name   string
		filter domain.DeviceFilter
		ids    []int64
	}{
		{"Type", domain.DeviceFilter{Type: "tracker"}, []int64{1, 2}},
		{"Status case-insensitive", domain.DeviceFilter{Status: "ERROR"}, []int64{3}},
		{"Inactive", domain.DeviceFilter{Active: &inactive}, []int64{2}},
		{"Search location", domain.DeviceFilter{SearchTerm: "depot"}, []int64{1}},
		{"Combined", domain.DeviceFilter{Type: "TRACKER", SearchTerm: "9"}, []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices, err := adapter.FilterDevices(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := make([]int64, 0, len(devices))
			for _, d := range devices {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}
