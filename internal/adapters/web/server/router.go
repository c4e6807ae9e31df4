package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/middleware"
)

// SetupRoutes builds the route tree with CORS, panic recovery and the
// optional access log around it.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Routes are registered on the root router so a wrong method answers 405.

	// Dashboard
	dash := s.DashboardHandler
	r.HandleFunc("/api/dashboard", dash.HandleGetSnapshot).Methods(http.MethodGet)
	r.Handle("/api/dashboard/refresh", middleware.RateLimit(s.refreshLimiter)(http.HandlerFunc(dash.HandleRefresh))).Methods(http.MethodPost)
	r.HandleFunc("/api/dashboard/state", dash.HandleGetState).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/auto-refresh", dash.HandleAutoRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/dashboard/interval", dash.HandleSetInterval).Methods(http.MethodPut)
	r.HandleFunc("/api/dashboard/export", dash.HandleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/report.pdf", dash.HandleReport).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/report.html", dash.HandleHTMLReport).Methods(http.MethodGet)

	// Devices and alerts
	r.HandleFunc("/api/devices", s.DeviceHandler.HandleListDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/{id}/acknowledge", s.DeviceHandler.HandleAcknowledgeAlert).Methods(http.MethodPost)

	// Live stream
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	var h http.Handler = r
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)(h)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)

	if s.cfg.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.cfg.AccessLog, h)
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Service.State()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"phase":     st.Phase,
		"observers": st.Observers,
	})
}
