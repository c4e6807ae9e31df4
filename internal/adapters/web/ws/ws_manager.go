package ws

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message types sent to clients
const (
	TypeSnapshot = "snapshot"
	TypeState    = "state"
)

// Message is the envelope of every frame sent to a client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client is one live connection with its own subscriptions, so each socket
// counts as a dashboard observer while it is open.
type client struct {
	conn   *websocket.Conn
	done   chan struct{}
	once   sync.Once
	remote string
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Manager upgrades /ws requests and streams snapshots and state changes.
type Manager struct {
	Service  ports.DashboardService
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *slog.Logger
}

// NewManager creates a manager. An empty allowedOrigins accepts any origin;
// requests without an Origin header are always accepted.
func NewManager(service ports.DashboardService, allowedOrigins []string) *Manager {
	m := &Manager{
		Service: service,
		clients: make(map[*client]struct{}),
		logger:  slog.Default().With("component", "ws_manager"),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			if slices.Contains(allowedOrigins, origin) {
				return true
			}
			m.logger.Warn("Rejected websocket origin", "origin", origin)
			return false
		},
	}
	return m
}

// HandleWebSocket serves GET /ws
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("Upgrade error", "error", err)
		return
	}

	c := &client{conn: conn, done: make(chan struct{}), remote: r.RemoteAddr}
	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()
	m.logger.Info("WebSocket connected", "remote", c.remote)

	// State first, so the snapshot subscription's refresh is reported.
	states := m.Service.SubscribeState()
	snaps := m.Service.Subscribe()

	go m.readLoop(c)
	go m.writeLoop(c, snaps, states)
}

// readLoop discards client frames and detects disconnects.
func (m *Manager) readLoop(c *client) {
	defer c.close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) writeLoop(c *client, snaps ports.Stream[domain.DashboardSnapshot], states ports.Stream[domain.DashboardState]) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		snaps.Close()
		states.Close()
		c.close()

		m.mu.Lock()
		delete(m.clients, c)
		m.mu.Unlock()
		m.logger.Info("WebSocket disconnected", "remote", c.remote)
	}()

	for {
		var msg Message
		select {
		case <-c.done:
			return
		case snap, ok := <-snaps.Updates():
			if !ok {
				return
			}
			msg = Message{Type: TypeSnapshot, Payload: snap}
		case st, ok := <-states.Updates():
			if !ok {
				return
			}
			msg = Message{Type: TypeState, Payload: st}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
			continue
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			m.logger.Debug("WebSocket write failed", "remote", c.remote, "error", err)
			return
		}
	}
}

// Clients returns the number of open connections.
func (m *Manager) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Close disconnects every client. Hijacked connections are not closed by
// http.Server.Shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	clients := make([]*client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(writeWait))
		c.close()
	}
}
