package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports/mocks"
)

func newTestManager(t *testing.T, origins ...string) (*Manager, *mocks.MockDashboardService, string) {
	t.Helper()
	svc := mocks.NewMockDashboardService()
	m := NewManager(svc, origins)

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWebSocket))
	t.Cleanup(srv.Close)
	t.Cleanup(m.Close)

	return m, svc, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	return msg.Type, msg.Payload
}

func closedWithin(ch <-chan struct{}, d time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func TestManager_StreamsSnapshotsAndState(t *testing.T) {
	m, svc, url := newTestManager(t)
	conn := dial(t, url)

	assert.Eventually(t, func() bool { return m.Clients() == 1 }, time.Second, 10*time.Millisecond)

	svc.States.C <- domain.DashboardState{IsLoading: true, Phase: domain.PhaseFetching}
	typ, payload := readMessage(t, conn)
	assert.Equal(t, TypeState, typ)
	var st domain.DashboardState
	require.NoError(t, json.Unmarshal(payload, &st))
	assert.True(t, st.IsLoading)

	svc.Snapshots.C <- domain.DashboardSnapshot{ID: "snap-1", Sequence: 1}
	typ, payload = readMessage(t, conn)
	assert.Equal(t, TypeSnapshot, typ)
	var snap domain.DashboardSnapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, uint64(1), snap.Sequence)
}

func TestManager_ClosedSubscriptionEndsConnection(t *testing.T) {
	tests := []struct {
		name  string
		close func(svc *mocks.MockDashboardService)
	}{
		{"Snapshot stream closed", func(svc *mocks.MockDashboardService) { close(svc.Snapshots.C) }},
		{"State stream closed", func(svc *mocks.MockDashboardService) { close(svc.States.C) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, svc, url := newTestManager(t)
			conn := dial(t, url)
			require.Eventually(t, func() bool { return m.Clients() == 1 }, time.Second, 10*time.Millisecond)

			tt.close(svc)

			// The write loop releases both subscriptions and drops the client.
			assert.True(t, closedWithin(svc.Snapshots.Closed, 2*time.Second), "snapshot subscription not released")
			assert.True(t, closedWithin(svc.States.Closed, 2*time.Second), "state subscription not released")
			assert.Eventually(t, func() bool { return m.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, _, err := conn.ReadMessage()
			assert.Error(t, err)
		})
	}
}

func TestManager_ClientDisconnectReleasesSubscriptions(t *testing.T) {
	m, svc, url := newTestManager(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return m.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.True(t, closedWithin(svc.Snapshots.Closed, 2*time.Second))
	assert.True(t, closedWithin(svc.States.Closed, 2*time.Second))
	assert.Eventually(t, func() bool { return m.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestManager_Close(t *testing.T) {
	m, svc, url := newTestManager(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return m.Clients() == 1 }, time.Second, 10*time.Millisecond)

	m.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.True(t, closedWithin(svc.Snapshots.Closed, 2*time.Second))
	assert.Eventually(t, func() bool { return m.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestManager_CheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		allowed []string
		wantOK  bool
	}{
		{"No origin header", "", []string{"https://ops.example.com"}, true},
		{"Any origin when unrestricted", "https://evil.example.com", nil, true},
		{"Allowed origin", "https://ops.example.com", []string{"https://ops.example.com"}, true},
		{"Rejected origin", "https://evil.example.com", []string{"https://ops.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, url := newTestManager(t, tt.allowed...)

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}
