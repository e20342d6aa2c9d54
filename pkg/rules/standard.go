package rules

import (
	"fmt"

	"github.com/corentings/chess/v2"

	"github.com/tecu23/chess-server/internal/color"
)

// Standard implements Engine for orthodox chess on top of
// github.com/corentings/chess/v2.
type Standard struct{}

// NewStandard returns the orthodox chess engine.
func NewStandard() *Standard {
	return &Standard{}
}

type standardPosition struct {
	pos *chess.Position
}

// PositionFromFEN builds a position from FEN text.
func PositionFromFEN(fen string) (Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}

	return &standardPosition{pos: chess.NewGame(opt).Position()}, nil
}

func (s *Standard) position(pos Position) *chess.Position {
	p, ok := pos.(*standardPosition)
	if !ok || p == nil {
		panic(fmt.Sprintf("rules: position %T does not belong to the standard engine", pos))
	}
	return p.pos
}

// NewInitialPosition returns the standard starting position.
func (s *Standard) NewInitialPosition() Position {
	return &standardPosition{pos: chess.NewGame().Position()}
}

// LegalMoves enumerates every legal move for the side to move.
func (s *Standard) LegalMoves(pos Position) []Move {
	p := s.position(pos)

	var out []Move
	for _, m := range p.ValidMoves() {
		out = append(out, Move{
			From:      Square(m.S1()),
			To:        Square(m.S2()),
			Promotion: kindOf(m.Promo()),
		})
	}
	return out
}

// Apply plays m on a copy of pos. A pawn reaching the last rank without a
// promotion choice is promoted to a queen.
func (s *Standard) Apply(pos Position, m Move) (Position, error) {
	p := s.position(pos)

	chosen, ok := matchLegal(s.LegalMoves(pos), m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m.UCI())
	}

	mv, err := chess.UCINotation{}.Decode(p, chosen.UCI())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIllegalMove, chosen.UCI(), err)
	}

	return &standardPosition{pos: p.Update(mv)}, nil
}

func matchLegal(legal []Move, m Move) (Move, bool) {
	for _, l := range legal {
		if l.From != m.From || l.To != m.To {
			continue
		}
		if l.Promotion == NoPiece {
			return l, true
		}
		if l.Promotion == m.Promotion || (m.Promotion == NoPiece && l.Promotion == Queen) {
			return l, true
		}
	}
	return Move{}, false
}

// SideToMove returns the color whose turn it is.
func (s *Standard) SideToMove(pos Position) color.Color {
	return colorOf(s.position(pos).Turn())
}

// Status reports check, checkmate or stalemate for the side to move.
// Mates come from the library; plain check from the attack map.
func (s *Standard) Status(pos Position) Status {
	switch s.position(pos).Status() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate:
		return Stalemate
	}

	if inCheck(s.board(pos), s.SideToMove(pos)) {
		return Check
	}
	return Ongoing
}

// HasInsufficientMaterial reports whether c lacks mating material.
func (s *Standard) HasInsufficientMaterial(pos Position, c color.Color) bool {
	return insufficientMaterial(s.board(pos), c)
}

// ToText returns the FEN of pos.
func (s *Standard) ToText(pos Position) string {
	return s.position(pos).String()
}

// PieceAt returns the piece on sq, if any.
func (s *Standard) PieceAt(pos Position, sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}

	pc := s.position(pos).Board().Piece(chess.Square(sq))
	if pc == chess.NoPiece {
		return Piece{}, false
	}

	return Piece{Kind: kindOf(pc.Type()), Color: colorOf(pc.Color())}, true
}

func (s *Standard) board(pos Position) board {
	b := make(board)
	for sq, pc := range s.position(pos).Board().SquareMap() {
		if pc == chess.NoPiece {
			continue
		}
		b[Square(sq)] = Piece{Kind: kindOf(pc.Type()), Color: colorOf(pc.Color())}
	}
	return b
}

func colorOf(c chess.Color) color.Color {
	switch c {
	case chess.White:
		return color.White
	case chess.Black:
		return color.Black
	}
	return color.NoColor
}

func kindOf(t chess.PieceType) PieceKind {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoPiece
}
