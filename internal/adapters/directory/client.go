package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

const maxBodyBytes = 16 << 20

// StatusError is returned for non-2xx answers from the directory.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directory returned %d: %s", e.StatusCode, e.Body)
}

// Client reads devices and alerts from a remote device-directory service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ListDevices calls GET /api/devices.
func (c *Client) ListDevices(ctx context.Context) ([]domain.Device, error) {
	var devices []domain.Device
	if err := c.do(ctx, http.MethodGet, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// ListAlerts calls GET /api/alerts.
func (c *Client) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if err := c.do(ctx, http.MethodGet, "/api/alerts", &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// AcknowledgeAlert calls PUT /api/alerts/{id}/acknowledge.
func (c *Client) AcknowledgeAlert(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidAlertID
	}
	err := c.do(ctx, http.MethodPut, "/api/alerts/"+strconv.FormatInt(id, 10)+"/acknowledge", nil)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("alert %d: %w", id, domain.ErrAlertNotFound)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

var (
	_ ports.DeviceDirectory   = (*Client)(nil)
	_ ports.AlertSource       = (*Client)(nil)
	_ ports.AlertAcknowledger = (*Client)(nil)
)
