package alerts

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout has a fixed width so raised_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores device alerts in SQLite.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewSQLiteRepository opens the database and applies the schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With("component", "alert_repository"),
	}, nil
}

// ListAlerts returns every stored alert, newest first. Acknowledged alerts
// are included; ranking drops them.
func (r *SQLiteRepository) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	query := `
		SELECT id, device_id, device_name, alert_type, severity, message, description,
		       raised_at, duration_minutes, recommended_action, acknowledged
		FROM device_alerts
		ORDER BY raised_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		a, err := r.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// SaveAlert inserts a new alert and returns its ID.
func (r *SQLiteRepository) SaveAlert(ctx context.Context, a domain.Alert) (int64, error) {
	query := `
		INSERT INTO device_alerts (
			device_id, device_name, alert_type, severity, message, description,
			raised_at, duration_minutes, recommended_action, acknowledged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var duration sql.NullInt64
	if a.DurationMinutes != nil {
		duration = sql.NullInt64{Int64: int64(*a.DurationMinutes), Valid: true}
	}
	action := sql.NullString{String: a.RecommendedAction, Valid: a.RecommendedAction != ""}

	ts := a.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}

	res, err := r.db.ExecContext(ctx, query,
		a.DeviceID, a.DeviceName, string(a.Type), string(a.Severity), a.Message, a.Description,
		ts.UTC().Format(timeLayout), duration, action, a.Acknowledged,
	)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	return res.LastInsertId()
}

// AcknowledgeAlert sets the acknowledged flag. Acknowledging twice is not an error.
func (r *SQLiteRepository) AcknowledgeAlert(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidAlertID
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE device_alerts
		SET acknowledged = 1,
		    acknowledged_at = COALESCE(acknowledged_at, ?)
		WHERE id = ?
	`, r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("acknowledge alert %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("alert %d: %w", id, domain.ErrAlertNotFound)
	}
	return nil
}

// PendingCount returns the number of unacknowledged alerts.
func (r *SQLiteRepository) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM device_alerts WHERE acknowledged = 0").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// scanAlert reads one row. A malformed raised_at leaves Timestamp zero so the
// alert ranks last instead of failing the whole list.
func (r *SQLiteRepository) scanAlert(rows *sql.Rows) (domain.Alert, error) {
	var a domain.Alert
	var alertType, severity, raisedAt string
	var duration sql.NullInt64
	var action sql.NullString

	err := rows.Scan(
		&a.ID, &a.DeviceID, &a.DeviceName, &alertType, &severity, &a.Message, &a.Description,
		&raisedAt, &duration, &action, &a.Acknowledged,
	)
	if err != nil {
		return a, err
	}

	a.Type = domain.AlertType(alertType)
	a.Severity = domain.AlertSeverity(severity)
	a.RecommendedAction = action.String
	if duration.Valid {
		d := int(duration.Int64)
		a.DurationMinutes = &d
	}
	ts, err := time.Parse(time.RFC3339Nano, raisedAt)
	if err != nil {
		r.logger.Warn("Malformed raised_at", "alert_id", a.ID, "raised_at", raisedAt, "error", err)
	} else {
		a.Timestamp = ts
	}

	return a, nil
}

var _ ports.AlertRepository = (*SQLiteRepository)(nil)
