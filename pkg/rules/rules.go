// Package rules is the boundary to the board rules: legal move generation,
// move application, check/mate detection and position text. The rest of the
// server treats positions as opaque values and only talks to an Engine.
package rules

import (
	"errors"

	"github.com/tecu23/chess-server/internal/color"
)

var (
	// ErrIllegalMove is returned by Apply when the move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidSquare is returned for square names outside a1..h8.
	ErrInvalidSquare = errors.New("invalid square name")
	// ErrInvalidPromotion is returned for promotion letters other than q, r, b, n.
	ErrInvalidPromotion = errors.New("invalid promotion piece")
)

// Position is an opaque board position owned by an Engine.
type Position any

// PieceKind identifies a piece without its color.
type PieceKind uint8

// Piece kinds. NoPiece doubles as "no promotion" in a Move.
const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece is a colored piece on the board.
type Piece struct {
	Kind  PieceKind
	Color color.Color
}

// Move is a from/to pair with an optional promotion.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// Status is the rules-level state of a position.
type Status int

// Position statuses.
const (
	Ongoing Status = iota
	Check
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Engine is the contract the coordinator consumes.
type Engine interface {
	NewInitialPosition() Position
	LegalMoves(pos Position) []Move
	// Apply returns the position after m or ErrIllegalMove. pos is not modified.
	Apply(pos Position, m Move) (Position, error)
	SideToMove(pos Position) color.Color
	Status(pos Position) Status
	// HasInsufficientMaterial reports whether c can never deliver checkmate
	// with the material it has left.
	HasInsufficientMaterial(pos Position, c color.Color) bool
	ToText(pos Position) string
	PieceAt(pos Position, sq Square) (Piece, bool)
}

// MovesFrom filters moves down to those starting on from.
func MovesFrom(moves []Move, from Square) []Move {
	var out []Move
	for _, m := range moves {
		if m.From == from {
			out = append(out, m)
		}
	}
	return out
}
