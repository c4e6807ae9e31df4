package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// ErrDeviceNotFound is returned by GetDevice for an unknown identifier.
var ErrDeviceNotFound = errors.New("device not found")

// SQLiteAdapter is a device directory backed by GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// DeviceModel is the GORM model for devices.
type DeviceModel struct {
	ID                int64  `gorm:"primaryKey"`
	Name              string `gorm:"not null"`
	Identifier        string `gorm:"uniqueIndex"`
	Type              string `gorm:"index"`
	Status            string `gorm:"index"`
	Location          string
	Description       string
	LastReading       string
	LastCommunication *time.Time
	IsActive          bool
	Latitude          *float64
	Longitude         *float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSQLiteAdapter opens the database, installs tracing and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing: %w", err)
	}

	if err := db.AutoMigrate(&DeviceModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_devices_active ON device_models(is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_devices_last_comm ON device_models(last_communication)")

	return &SQLiteAdapter{db: db}, nil
}

// SaveDevice inserts or replaces a device.
func (a *SQLiteAdapter) SaveDevice(ctx context.Context, d domain.Device) error {
	model := toModel(d)
	return a.db.WithContext(ctx).Save(&model).Error
}

// SaveDevicesBatch upserts devices in a single transaction.
func (a *SQLiteAdapter) SaveDevicesBatch(ctx context.Context, devices []domain.Device) error {
	if len(devices) == 0 {
		return nil
	}

	models := make([]DeviceModel, len(devices))
	for i, d := range devices {
		models[i] = toModel(d)
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			UpdateAll: true,
		}).CreateInBatches(models, 100).Error
	})
}

// GetDevice retrieves a device by ID.
func (a *SQLiteAdapter) GetDevice(ctx context.Context, id int64) (*domain.Device, error) {
	var model DeviceModel
	if err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("device %d: %w", id, ErrDeviceNotFound)
		}
		return nil, err
	}
	d := toDomain(model)
	return &d, nil
}

// ListDevices returns every device ordered by ID.
func (a *SQLiteAdapter) ListDevices(ctx context.Context) ([]domain.Device, error) {
	var models []DeviceModel
	if err := a.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(models), nil
}

// FilterDevices evaluates the filter in SQL.
func (a *SQLiteAdapter) FilterDevices(ctx context.Context, filter domain.DeviceFilter) ([]domain.Device, error) {
	query := a.db.WithContext(ctx).Order("id")

	if filter.Type != "" {
		query = query.Where("UPPER(type) = UPPER(?)", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("UPPER(TRIM(status)) = UPPER(?)", filter.Status)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.SearchTerm != "" {
		term := "%" + filter.SearchTerm + "%"
		query = query.Where("name LIKE ? OR identifier LIKE ? OR location LIKE ?", term, term, term)
	}

	var models []DeviceModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(models), nil
}

// Close closes the underlying connection pool.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ ports.DeviceRepository = (*SQLiteAdapter)(nil)
	_ ports.DeviceFilterer   = (*SQLiteAdapter)(nil)
)
