package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tecu23/chess-server/internal/color"
)

func sq(name string) Square {
	s, err := ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return s
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name  string
		board board
		want  bool
	}{
		{
			name:  "bare king",
			board: board{sq("e1"): {King, color.White}, sq("e8"): {King, color.Black}, sq("d8"): {Queen, color.Black}},
			want:  true,
		},
		{
			name:  "king and queen",
			board: board{sq("e1"): {King, color.White}, sq("d1"): {Queen, color.White}},
			want:  false,
		},
		{
			name:  "king and knight",
			board: board{sq("e1"): {King, color.White}, sq("b1"): {Knight, color.White}},
			want:  true,
		},
		{
			name:  "king and bishop",
			board: board{sq("e1"): {King, color.White}, sq("c1"): {Bishop, color.White}},
			want:  true,
		},
		{
			name:  "same colored bishops",
			board: board{sq("e1"): {King, color.White}, sq("c1"): {Bishop, color.White}, sq("e3"): {Bishop, color.White}},
			want:  true,
		},
		{
			name:  "opposite colored bishops",
			board: board{sq("e1"): {King, color.White}, sq("c1"): {Bishop, color.White}, sq("f1"): {Bishop, color.White}},
			want:  false,
		},
		{
			name:  "two knights",
			board: board{sq("e1"): {King, color.White}, sq("b1"): {Knight, color.White}, sq("g1"): {Knight, color.White}},
			want:  false,
		},
		{
			name:  "single pawn",
			board: board{sq("e1"): {King, color.White}, sq("a2"): {Pawn, color.White}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insufficientMaterial(tt.board, color.White))
		})
	}
}

func TestAttacked(t *testing.T) {
	t.Run("rook along the file", func(t *testing.T) {
		b := board{sq("e8"): {King, color.Black}, sq("e1"): {Rook, color.White}}
		assert.True(t, inCheck(b, color.Black))
	})

	t.Run("blocked rook", func(t *testing.T) {
		b := board{sq("e8"): {King, color.Black}, sq("e5"): {Pawn, color.Black}, sq("e1"): {Rook, color.White}}
		assert.False(t, inCheck(b, color.Black))
	})

	t.Run("bishop diagonal", func(t *testing.T) {
		b := board{sq("e1"): {King, color.White}, sq("h4"): {Bishop, color.Black}}
		assert.True(t, inCheck(b, color.White))
	})

	t.Run("queen acts as bishop", func(t *testing.T) {
		b := board{sq("e1"): {King, color.White}, sq("h4"): {Queen, color.Black}}
		assert.True(t, inCheck(b, color.White))
	})

	t.Run("knight", func(t *testing.T) {
		b := board{sq("e1"): {King, color.White}, sq("f3"): {Knight, color.Black}}
		assert.True(t, inCheck(b, color.White))
	})

	t.Run("white pawn attacks forward diagonals only", func(t *testing.T) {
		b := board{sq("e5"): {King, color.Black}, sq("d4"): {Pawn, color.White}}
		assert.True(t, inCheck(b, color.Black))

		b = board{sq("e3"): {King, color.Black}, sq("d4"): {Pawn, color.White}}
		assert.False(t, inCheck(b, color.Black))
	})

	t.Run("black pawn", func(t *testing.T) {
		b := board{sq("e4"): {King, color.White}, sq("f5"): {Pawn, color.Black}}
		assert.True(t, inCheck(b, color.White))
	})

	t.Run("no king", func(t *testing.T) {
		assert.False(t, inCheck(board{}, color.White))
	})
}
