// Package game holds the state of one game and of one connected session.
package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/tecu23/chess-server/internal/color"
	"github.com/tecu23/chess-server/pkg/chess"
	"github.com/tecu23/chess-server/pkg/messages"
	"github.com/tecu23/chess-server/pkg/rules"
)

// Game is one game: position, seats, clock and result.
//
// mu is the game lock. Every method other than Lock, Unlock and the ID field
// must be called with it held.
type Game struct {
	ID        string
	CreatedAt time.Time

	mu sync.Mutex

	rules    rules.Engine
	position rules.Position

	white string // session id seated as white, empty when vacant
	black string

	clock  *chess.Clock
	result Result

	lastMove  *rules.Move
	moveCount int
}

// MoveOutcome describes what an accepted move did.
type MoveOutcome struct {
	Mover   color.Color
	Move    rules.Move
	Flagged bool
	Result  Result
	Status  rules.Status
}

// New creates a game in the initial position with creator seated as white.
// The clock does not run until both seats are filled.
func New(id string, eng rules.Engine, creator string, tc chess.TimeControl, now time.Time) *Game {
	return &Game{
		ID:        id,
		CreatedAt: now,
		rules:     eng,
		position:  eng.NewInitialPosition(),
		white:     creator,
		clock:     chess.NewClock(tc),
	}
}

// Lock acquires the game lock.
func (g *Game) Lock() { g.mu.Lock() }

// Unlock releases the game lock.
func (g *Game) Unlock() { g.mu.Unlock() }

// Player returns the session seated as c.
func (g *Game) Player(c color.Color) string {
	if c == color.White {
		return g.white
	}
	return g.black
}

// SeatOf returns the color held by sessionID, NoColor if none.
func (g *Game) SeatOf(sessionID string) color.Color {
	switch {
	case sessionID == "":
		return color.NoColor
	case g.white == sessionID:
		return color.White
	case g.black == sessionID:
		return color.Black
	}
	return color.NoColor
}

// BothSeated reports whether both colors have a player.
func (g *Game) BothSeated() bool {
	return g.white != "" && g.black != ""
}

// Result returns the terminal result, NoResult while ongoing.
func (g *Game) Result() Result { return g.result }

// Clock returns a copy of the clock.
func (g *Game) Clock() chess.ClockTick { return g.clock.Snapshot() }

// ClockRunning reports whether time is being debited.
func (g *Game) ClockRunning() bool { return g.clock.Running() }

// SideToMove returns the color to move.
func (g *Game) SideToMove() color.Color { return g.rules.SideToMove(g.position) }

// FEN returns the position text.
func (g *Game) FEN() string { return g.rules.ToText(g.position) }

// MoveCount returns the number of accepted moves.
func (g *Game) MoveCount() int { return g.moveCount }

// LastMove returns the last accepted move.
func (g *Game) LastMove() (rules.Move, bool) {
	if g.lastMove == nil {
		return rules.Move{}, false
	}
	return *g.lastMove, true
}

// AssignSeat seats sessionID on the first vacant color, white first. A
// session already seated keeps its color. started is true when this call
// filled the second seat, which starts the clock.
func (g *Game) AssignSeat(sessionID string, now time.Time) (c color.Color, started bool, err error) {
	if c := g.SeatOf(sessionID); c != color.NoColor {
		return c, false, nil
	}

	switch {
	case g.white == "":
		g.white = sessionID
		c = color.White
	case g.black == "":
		g.black = sessionID
		c = color.Black
	default:
		return color.NoColor, false, ErrGameFull
	}

	if g.BothSeated() {
		g.clock.Start(now)
		started = true
	}

	return c, started, nil
}

// Vacate clears the seat held by sessionID and returns its color.
func (g *Game) Vacate(sessionID string) color.Color {
	c := g.SeatOf(sessionID)
	switch c {
	case color.White:
		g.white = ""
	case color.Black:
		g.black = ""
	}
	return c
}

// Move validates and plays m for sessionID. Nothing is mutated when an error
// is returned.
func (g *Game) Move(sessionID string, m rules.Move, now time.Time) (MoveOutcome, error) {
	if g.result.Over() {
		return MoveOutcome{}, ErrGameOver
	}

	mover := g.SeatOf(sessionID)
	if mover == color.NoColor || mover != g.SideToMove() {
		return MoveOutcome{}, ErrNotYourTurn
	}

	piece, ok := g.rules.PieceAt(g.position, m.From)
	if !ok {
		return MoveOutcome{}, ErrNoPieceAtSquare
	}

	next, err := g.rules.Apply(g.position, m)
	if err != nil {
		return MoveOutcome{}, err
	}

	// Record the promotion that was actually played: the engine picks a
	// queen when none was asked for and ignores one on an ordinary move.
	if piece.Kind == rules.Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		if m.Promotion == rules.NoPiece {
			m.Promotion = rules.Queen
		}
	} else {
		m.Promotion = rules.NoPiece
	}

	g.position = next
	g.lastMove = &m
	g.moveCount++

	out := MoveOutcome{Mover: mover, Move: m}

	if g.clock.Debit(mover, now, true) {
		out.Flagged = true
		g.result = timeout(mover, g.rules.HasInsufficientMaterial(g.position, mover.Opp()))
	}

	out.Status = g.rules.Status(g.position)
	if !g.result.Over() {
		switch out.Status {
		case rules.Checkmate:
			g.result = checkmateBy(mover)
		case rules.Stalemate:
			g.result = Stalemate
		}
	}
	out.Result = g.result

	return out, nil
}

// Sync debits the side to move for the time elapsed since the last tick
// without touching the position. It reports whether that side flagged.
func (g *Game) Sync(now time.Time) bool {
	if g.result.Over() || !g.BothSeated() || !g.clock.Running() {
		return false
	}

	active := g.SideToMove()
	if !g.clock.Debit(active, now, false) {
		return false
	}

	g.result = timeout(active, g.rules.HasInsufficientMaterial(g.position, active.Opp()))
	return true
}

// Destinations lists the legal target squares of the piece on from for
// sessionID.
func (g *Game) Destinations(sessionID string, from rules.Square) ([]string, error) {
	piece, ok := g.rules.PieceAt(g.position, from)
	if !ok {
		return nil, ErrNoPieceAtSquare
	}

	player := g.SeatOf(sessionID)
	if player == color.NoColor || player != g.SideToMove() {
		return nil, ErrNotYourTurn
	}
	if piece.Color != player {
		return nil, ErrNotYourPiece
	}

	dests := []string{}
	seen := make(map[rules.Square]bool)
	for _, m := range rules.MovesFrom(g.rules.LegalMoves(g.position), from) {
		// Promotions produce one move per piece kind for the same target.
		if seen[m.To] {
			continue
		}
		seen[m.To] = true
		dests = append(dests, m.To.String())
	}

	return dests, nil
}

// MoveStatus is the game_status reported after a move or a time sync.
func (g *Game) MoveStatus() string {
	if g.result.Over() {
		return g.result.Status()
	}
	if g.rules.Status(g.position) == rules.Check {
		return messages.StatusCheck
	}
	if g.SideToMove() == color.White {
		return messages.StatusWhiteTurn
	}
	return messages.StatusBlackTurn
}

// SeatStatus is the game_status reported on create and join.
func (g *Game) SeatStatus() string {
	if g.result.Over() {
		return g.result.Status()
	}
	if !g.BothSeated() {
		return messages.StatusWaitingForOpponent
	}
	return messages.StatusInProgress
}

// StateMessage fills the fields every state-bearing server message shares.
func (g *Game) StateMessage(kind string) *messages.ServerMessage {
	tick := g.clock.Snapshot()

	msg := &messages.ServerMessage{
		MessageType: kind,
		GameID:      g.ID,
		FEN:         g.FEN(),
		WhiteTimeMs: messages.Ms(tick.White),
		BlackTimeMs: messages.Ms(tick.Black),
		IncrementMs: messages.Ms(tick.Increment),
		ActiveColor: string(g.SideToMove()),
	}

	if m, ok := g.LastMove(); ok {
		msg.LastMove = &messages.LastMove{From: m.From.String(), To: m.To.String()}
		if m.Promotion != rules.NoPiece {
			msg.LastMove.Promotion = m.UCI()[4:]
		}
	}

	return msg
}

func (g *Game) String() string {
	return fmt.Sprintf("game %s (white=%q black=%q moves=%d result=%s)", g.ID, g.white, g.black, g.moveCount, g.result)
}
