package game

import (
	"sync"

	"github.com/tecu23/chess-server/internal/color"
)

// SessionState is the lifecycle state of a connection.
type SessionState int

// Session states. Connected sessions have no game; Seated and Spectating
// sessions are listed in exactly one game's connection list.
const (
	Connected SessionState = iota
	Seated
	Spectating
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Seated:
		return "seated"
	case Spectating:
		return "spectating"
	case Closed:
		return "closed"
	}
	return "connected"
}

// Session is the per-connection identity. Cross references to games are by
// id only; the delivery handle lives in the session registry.
type Session struct {
	ID string

	mu     sync.Mutex
	gameID string
	color  color.Color
	closed bool
}

// NewSession returns a session in the Connected state.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return Closed
	case s.gameID == "":
		return Connected
	case s.color == color.NoColor:
		return Spectating
	}
	return Seated
}

// GameID returns the attached game, empty if none.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// Color returns the seat color in the attached game, NoColor for spectators.
func (s *Session) Color() color.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// Attach records the game and seat. It is a no-op once the session closed.
func (s *Session) Attach(gameID string, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.gameID = gameID
	s.color = c
}

// Detach clears the attachment and returns what it was.
func (s *Session) Detach() (gameID string, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gameID, c = s.gameID, s.color
	s.gameID = ""
	s.color = color.NoColor
	return gameID, c
}

// Close moves the session to Closed. It returns false when the session was
// already closed so callers can skip repeated cleanup.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	return true
}
