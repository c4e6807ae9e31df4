package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/server"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/web/ws"
	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports/mocks"
)

// setupServer creates a server around a mocked dashboard service
func setupServer(t *testing.T) (*server.Server, *mocks.MockDashboardService) {
	svc := mocks.NewMockDashboardService()
	srv := server.NewServer(server.Config{
		Addr:          ":0",
		RefreshLimit:  2,
		RefreshWindow: time.Minute,
	}, svc, nil)
	return srv, svc
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.10:40000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	srv, svc := setupServer(t)
	svc.On("State").Return(domain.DashboardState{Phase: domain.PhaseIdle, AutoRefresh: true, RefreshInterval: 30})
	svc.On("Latest").Return(domain.DashboardSnapshot{ID: "snap-1"}, true)
	svc.On("AcknowledgeAlert", mock.Anything, int64(7)).Return(nil)
	svc.On("ListDevices", mock.Anything, domain.DeviceFilter{Type: "tracker"}).Return([]domain.Device{{ID: 1}}, nil)
	h := srv.Handler()

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"Snapshot", http.MethodGet, "/api/dashboard", http.StatusOK},
		{"State", http.MethodGet, "/api/dashboard/state", http.StatusOK},
		{"Devices", http.MethodGet, "/api/devices?type=tracker", http.StatusOK},
		{"Acknowledge", http.MethodPost, "/api/alerts/7/acknowledge", http.StatusOK},
		{"Export", http.MethodGet, "/api/dashboard/export?format=csv", http.StatusOK},
		{"Report disabled", http.MethodGet, "/api/dashboard/report.pdf", http.StatusNotImplemented},
		{"HTML report", http.MethodGet, "/api/dashboard/report.html", http.StatusOK},
		{"Health", http.MethodGet, "/healthz", http.StatusOK},
		{"Metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"Wrong method", http.MethodDelete, "/api/dashboard", http.StatusMethodNotAllowed},
		{"Unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_RefreshRateLimited(t *testing.T) {
	srv, svc := setupServer(t)
	svc.On("TriggerRefresh").Return()
	h := srv.Handler()

	assert.Equal(t, http.StatusAccepted, serve(h, http.MethodPost, "/api/dashboard/refresh").Code)
	assert.Equal(t, http.StatusAccepted, serve(h, http.MethodPost, "/api/dashboard/refresh").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodPost, "/api/dashboard/refresh").Code)

	svc.AssertNumberOfCalls(t, "TriggerRefresh", 2)
}

func TestServer_CORS(t *testing.T) {
	srv, svc := setupServer(t)
	svc.On("State").Return(domain.DashboardState{Phase: domain.PhaseIdle})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/state", nil)
	req.Header.Set("Origin", "http://dashboard.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_WebSocketStream(t *testing.T) {
	srv, svc := setupServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	svc.States.C <- domain.DashboardState{Phase: domain.PhaseFetching, IsLoading: true}
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeState, msg.Type)

	svc.Snapshots.C <- domain.DashboardSnapshot{ID: "snap-9", Sequence: 9}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeSnapshot, msg.Type)
	var snap domain.DashboardSnapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, "snap-9", snap.ID)

	assert.Equal(t, 1, srv.WSManager.Clients())

	conn.Close()
	select {
	case <-svc.Snapshots.Closed:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot subscription not released after disconnect")
	}
	assert.Eventually(t, func() bool { return srv.WSManager.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
