package rules

import (
	"fmt"
	"strings"
)

// Square indexes the board a1=0, b1=1, ... h8=63.
type Square int8

// NewSquare builds a square from zero based file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the zero based file (a=0).
func (sq Square) File() int { return int(sq) % 8 }

// Rank returns the zero based rank (1=0).
func (sq Square) Rank() int { return int(sq) / 8 }

// Valid reports whether sq is on the board.
func (sq Square) Valid() bool { return sq >= 0 && sq < 64 }

// Light reports whether sq is a light square.
func (sq Square) Light() bool { return (sq.File()+sq.Rank())%2 == 1 }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses names like "e4". Case is ignored.
func ParseSquare(text string) (Square, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}

	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// ParsePromotion parses a promotion letter or name. An empty string means
// no promotion was requested.
func ParsePromotion(text string) (PieceKind, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return NoPiece, nil
	case "q", "queen":
		return Queen, nil
	case "r", "rook":
		return Rook, nil
	case "b", "bishop":
		return Bishop, nil
	case "n", "knight":
		return Knight, nil
	}

	return NoPiece, fmt.Errorf("%w: %q", ErrInvalidPromotion, text)
}

func (k PieceKind) letter() string {
	switch k {
	case Queen:
		return "q"
	case Rook:
		return "r"
	case Bishop:
		return "b"
	case Knight:
		return "n"
	}
	return ""
}

// UCI renders the move in long algebraic form, e.g. "e7e8q".
func (m Move) UCI() string {
	return m.From.String() + m.To.String() + m.Promotion.letter()
}
