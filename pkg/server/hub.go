// Package server binds websocket connections to the coordinator.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tecu23/chess-server/pkg/manager"
)

// Hub keeps track of all active connections, registers and unregisters
// them with the manager and routes their inbound frames to it.
type Hub struct {
	mu          sync.RWMutex         // Mutex to protect direct access to the connections map.
	connections map[*Connection]bool // Registered connections

	manager *manager.Manager

	clock        clockwork.Clock
	syncInterval time.Duration
	sendBuffer   int

	logger *zap.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClock replaces the clock driving the periodic time sync and the
// connection pings.
func WithClock(clock clockwork.Clock) HubOption {
	return func(h *Hub) { h.clock = clock }
}

// WithSyncInterval sets how often running clocks are broadcast. Zero
// disables the periodic sync.
func WithSyncInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.syncInterval = d }
}

// WithSendBuffer sets the outbound queue length of new connections.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) { h.sendBuffer = n }
}

// NewHub creates a new hub
func NewHub(m *manager.Manager, logger *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		connections: make(map[*Connection]bool),
		manager:     m,
		clock:       clockwork.NewRealClock(),
		sendBuffer:  DefaultSendBuffer,
		logger:      logger,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Serve registers ws and starts its pumps.
func (h *Hub) Serve(ws *websocket.Conn) *Connection {
	conn := NewConnection(ws, h, h.sendBuffer, h.logger)
	h.Register(conn)

	go conn.WritePump()
	go conn.ReadPump()

	return conn
}

// Register opens a session for conn.
func (h *Hub) Register(conn *Connection) {
	s := h.manager.Connect(conn)

	conn.mu.Lock()
	conn.session = s
	conn.mu.Unlock()

	h.mu.Lock()
	h.connections[conn] = true
	n := len(h.connections)
	h.mu.Unlock()

	h.logger.Debug("new connection registered", zap.String("connection_id", s.ID), zap.Int("connections", n))
}

// Unregister closes conn's session and stops its write pump. It is safe to
// call more than once.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	_, ok := h.connections[conn]
	delete(h.connections, conn)
	n := len(h.connections)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.manager.Disconnect(conn.session)
	conn.close()

	h.logger.Debug("connection unregistered", zap.String("connection_id", conn.session.ID), zap.Int("connections", n))
}

// Inbound hands one text frame from conn to the manager.
func (h *Hub) Inbound(conn *Connection, data []byte) {
	h.manager.Handle(conn.session, data)
}

// Run broadcasts running clocks every sync interval until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	if h.syncInterval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := h.clock.NewTicker(h.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if n := h.manager.SyncAll(); n > 0 {
				h.logger.Debug("clocks synced", zap.Int("games", n))
			}
		}
	}
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections)
}

// Stats reports registry sizes for the health endpoint.
func (h *Hub) Stats() manager.Stats {
	return h.manager.Stats()
}

// Shutdown sends a going-away close frame to every connection. Their read
// pumps then unregister them.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for conn := range h.connections {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range conns {
		if err := conn.ws.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			h.logger.Debug("close frame not sent", conn.idField(), zap.Error(err))
		}
		conn.ws.Close()
	}

	h.logger.Info("hub shut down", zap.Int("connections", len(conns)))
}
