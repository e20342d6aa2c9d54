package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/chess-server/pkg/game"
	"github.com/tecu23/chess-server/pkg/manager"
	"github.com/tecu23/chess-server/pkg/messages"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// DefaultSendBuffer is the outbound queue length of a connection.
	DefaultSendBuffer = 256
)

// Connection is one websocket client. It implements repository.Handle.
type Connection struct {
	ws      *websocket.Conn // The underlying Websocket connection
	hub     *Hub
	session *game.Session

	mu     sync.Mutex  // guards closed and the closing of send
	send   chan []byte // Buffered channel of outbound messages.
	closed bool

	logger *zap.Logger
}

// NewConnection wraps ws. The connection gets its session when it is
// registered with the hub.
func NewConnection(ws *websocket.Conn, hub *Hub, sendBuffer int, logger *zap.Logger) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	return &Connection{
		ws:     ws,
		hub:    hub,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// Session returns the session bound to the connection, nil before
// registration.
func (c *Connection) Session() *game.Session {
	return c.session
}

// Deliver queues data for the write pump without blocking. A client too
// slow to keep its queue from filling up is cut off: the queue is closed,
// the write pump flushes what is already queued and sends a close frame, and
// the read pump then unregisters the connection. No later message is
// accepted, so a client never sees a gap in its stream.
func (c *Connection) Deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn("send buffer full, closing connection", c.idField())
		c.closeLocked()
		return false
	}
}

// Closed reports whether the connection refuses further deliveries.
func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// close stops the write pump. Further deliveries are refused.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *Connection) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Connection) idField() zap.Field {
	if c.session == nil {
		return zap.Skip()
	}
	return zap.String("connection_id", c.session.ID)
}

// ReadPump handles inbound messages from the client. Messages from one
// connection are processed in arrival order.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", c.idField(), zap.Error(err))
			}
			return
		}

		// We only handle text
		if msgType != websocket.TextMessage {
			c.replyBinary()
			continue
		}

		c.hub.Inbound(c, data)
	}
}

func (c *Connection) replyBinary() {
	data, err := messages.Encode(messages.NewError("", manager.Code(manager.ErrInvalidMessageFormat), "Binary messages are not supported"))
	if err != nil {
		c.logger.Error("failed to encode error", zap.Error(err))
		return
	}
	c.Deliver(data)
}

// WritePump handles outbound messages to the client. It is the only
// goroutine writing to the websocket.
func (c *Connection) WritePump() {
	ticker := c.hub.clock.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				c.logger.Debug("send channel closed for connection", c.idField())
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("write error", c.idField(), zap.Error(err))
				return
			}

		case <-ticker.Chan():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
