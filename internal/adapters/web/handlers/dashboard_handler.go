package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
	"github.com/lcalzada-xor/fleetpulse/internal/core/services/export"
)

// SnapshotRenderer turns a snapshot into a printable document.
type SnapshotRenderer interface {
	ExportSnapshot(snap domain.DashboardSnapshot) ([]byte, error)
}

// DashboardHandler serves the snapshot, the refresh controls and the exports.
type DashboardHandler struct {
	Service  ports.DashboardService
	Renderer SnapshotRenderer
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler. renderer may be nil,
// which disables the PDF report.
func NewDashboardHandler(service ports.DashboardService, renderer SnapshotRenderer) *DashboardHandler {
	return &DashboardHandler{
		Service:  service,
		Renderer: renderer,
		logger:   slog.Default().With("component", "dashboard_handler"),
	}
}

// current returns the published snapshot, joining a refresh when nothing
// has been published yet.
func (h *DashboardHandler) current(ctx context.Context) (domain.DashboardSnapshot, error) {
	if snap, ok := h.Service.Latest(); ok {
		return snap, nil
	}
	return h.Service.Refresh(ctx)
}

// HandleGetSnapshot returns the latest snapshot
func (h *DashboardHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRefresh schedules a refresh. With wait=true it blocks until the
// cycle (possibly one already in flight) completes and returns its result.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		h.Service.TriggerRefresh()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh_scheduled"})
		return
	}

	snap, err := h.Service.Refresh(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleGetState returns the operational state
func (h *DashboardHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.State())
}

// HandleAutoRefresh sets auto-refresh from ?enabled=, or toggles it when
// the parameter is absent.
func (h *DashboardHandler) HandleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("enabled")
	if raw == "" {
		h.Service.ToggleAutoRefresh()
	} else {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid enabled value %q", raw))
			return
		}
		h.Service.SetAutoRefresh(enabled)
	}
	writeJSON(w, http.StatusOK, h.Service.State())
}

// HandleSetInterval changes the refresh period
func (h *DashboardHandler) HandleSetInterval(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "seconds must be an integer")
		return
	}
	if err := h.Service.SetIntervalSeconds(seconds); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.State())
}

// HandleExport downloads the snapshot as JSON or CSV
func (h *DashboardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+format.Filename(snap))
	if err := export.Write(w, format, snap); err != nil {
		h.logger.Error("Export failed", "format", format, "error", err)
	}
}

// HandleReport downloads the snapshot as a PDF report
func (h *DashboardHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if h.Renderer == nil {
		writeError(w, http.StatusNotImplemented, "report rendering disabled")
		return
	}

	snap, err := h.current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.Renderer.ExportSnapshot(snap)
	if err != nil {
		h.logger.Error("Report generation failed", "snapshot", snap.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=fleetpulse_report_%d.pdf", snap.Sequence))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
