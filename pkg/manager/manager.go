// Package manager is the coordinator: it turns client messages into game
// state changes and hands the resulting server messages to a Dispatcher.
package manager

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tecu23/chess-server/pkg/chess"
	"github.com/tecu23/chess-server/pkg/events"
	"github.com/tecu23/chess-server/pkg/game"
	"github.com/tecu23/chess-server/pkg/messages"
	"github.com/tecu23/chess-server/pkg/repository"
	"github.com/tecu23/chess-server/pkg/rules"
)

// Dispatcher delivers server messages. Both methods only enqueue; they never
// block on the network, so they may be called with a game lock held.
type Dispatcher interface {
	// Send delivers msg to a single session.
	Send(sessionID string, msg *messages.ServerMessage) bool
	// Broadcast delivers msg to every session attached to gameID. actorID is
	// the session whose request produced msg.
	Broadcast(gameID string, msg *messages.ServerMessage, actorID string) int
}

// Manager owns the registries and runs the message handlers.
//
// Lock order: a game lock may be taken first, then the connection index,
// then the games registry. The connection index and the games registry are
// never held while acquiring a game lock.
type Manager struct {
	sessions    *repository.SessionRegistry
	games       *repository.InMemoryGameRepository
	connections *repository.ConnectionIndex

	rules      rules.Engine
	dispatcher Dispatcher
	publisher  *events.Publisher

	clock    clockwork.Clock
	defaults chess.TimeControl
	newID    func() string

	logger *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock, typically with a clockwork.FakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithDefaultTimeControl sets the time control used when a create request
// carries none.
func WithDefaultTimeControl(tc chess.TimeControl) Option {
	return func(m *Manager) { m.defaults = tc }
}

// WithIDGenerator replaces uuid based ids for sessions and games.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// NewManager wires a coordinator over the given registries.
func NewManager(
	sessions *repository.SessionRegistry,
	games *repository.InMemoryGameRepository,
	connections *repository.ConnectionIndex,
	eng rules.Engine,
	dispatcher Dispatcher,
	publisher *events.Publisher,
	logger *zap.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		sessions:    sessions,
		games:       games,
		connections: connections,
		rules:       eng,
		dispatcher:  dispatcher,
		publisher:   publisher,
		clock:       clockwork.NewRealClock(),
		defaults:    chess.DefaultTimeControl(),
		newID:       uuid.NewString,
		logger:      logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Stats is a snapshot of registry sizes.
type Stats struct {
	Sessions int `json:"sessions"`
	Games    int `json:"games"`
}

// Stats returns the current registry sizes.
func (m *Manager) Stats() Stats {
	return Stats{Sessions: m.sessions.Len(), Games: m.games.Len()}
}

// Connect registers a new connection's delivery handle and returns its
// session.
func (m *Manager) Connect(h repository.Handle) *game.Session {
	s := game.NewSession(m.newID())
	m.sessions.Insert(s.ID, h)

	m.logger.Info("session connected",
		zap.String("session_id", s.ID),
		zap.Int("sessions", m.sessions.Len()))

	m.dispatcher.Send(s.ID, &messages.ServerMessage{
		MessageType:  messages.TypeConnected,
		ConnectionID: s.ID,
	})

	m.publisher.Publish(events.Event{
		Type:    events.EventConnectionOpened,
		Payload: map[string]string{"connection_id": s.ID},
	})

	return s
}

// Disconnect runs the leave sequence and unregisters the session. Calling
// it more than once is a no-op.
func (m *Manager) Disconnect(s *game.Session) {
	if !s.Close() {
		return
	}

	m.leave(s)
	m.sessions.Remove(s.ID)

	m.logger.Info("session disconnected",
		zap.String("session_id", s.ID),
		zap.Int("sessions", m.sessions.Len()))

	m.publisher.Publish(events.Event{
		Type:    events.EventConnectionClosed,
		Payload: map[string]string{"connection_id": s.ID},
	})
}

// leave detaches s from its game: the seat is cleared, the session leaves
// the connection list, and an emptied game is dropped from both the index
// and the games registry.
func (m *Manager) leave(s *game.Session) {
	gameID, _ := s.Detach()
	if gameID == "" {
		return
	}

	if g, err := m.games.GetGame(gameID); err == nil {
		g.Lock()
		vacated := g.Vacate(s.ID)
		g.Unlock()

		if vacated.Valid() {
			m.logger.Info("player left seat",
				zap.String("game_id", gameID),
				zap.String("session_id", s.ID),
				zap.String("color", string(vacated)))
		}
	}

	m.connections.Detach(gameID, s.ID, func() {
		m.games.RemoveGame(gameID)
		m.logger.Info("no more connections, game removed", zap.String("game_id", gameID))
		m.publisher.Publish(events.Event{Type: events.EventGameRemoved, GameID: gameID})
	})

	m.publisher.Publish(events.Event{
		Type:    events.EventPlayerLeft,
		GameID:  gameID,
		Payload: map[string]string{"connection_id": s.ID},
	})
}
