package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// DeviceHandler serves the device listing and alert acknowledgement.
type DeviceHandler struct {
	Service ports.DashboardService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(service ports.DashboardService) *DeviceHandler {
	return &DeviceHandler{Service: service}
}

// HandleListDevices returns devices matching ?type=&status=&active=&q=
func (h *DeviceHandler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.DeviceFilter{
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		SearchTerm: q.Get("q"),
	}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid active value %q", raw))
			return
		}
		filter.Active = &active
	}

	devices, err := h.Service.ListDevices(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if devices == nil {
		devices = []domain.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// HandleAcknowledgeAlert marks the alert in {id} acknowledged
func (h *DeviceHandler) HandleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAlertID.Error())
		return
	}

	if err := h.Service.AcknowledgeAlert(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "acknowledged", "id": id})
}
