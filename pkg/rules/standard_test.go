package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/chess-server/internal/color"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func play(t *testing.T, eng *Standard, pos Position, moves ...string) Position {
	t.Helper()
	for _, uci := range moves {
		m := Move{From: sq(uci[0:2]), To: sq(uci[2:4])}
		if len(uci) == 5 {
			p, err := ParsePromotion(uci[4:])
			require.NoError(t, err)
			m.Promotion = p
		}
		next, err := eng.Apply(pos, m)
		require.NoError(t, err, uci)
		pos = next
	}
	return pos
}

func fromFEN(t *testing.T, fen string) Position {
	t.Helper()
	pos, err := PositionFromFEN(fen)
	require.NoError(t, err)
	return pos
}

func TestStandard_InitialPosition(t *testing.T) {
	eng := NewStandard()
	pos := eng.NewInitialPosition()

	assert.Equal(t, startFEN, eng.ToText(pos))
	assert.Equal(t, color.White, eng.SideToMove(pos))
	assert.Equal(t, Ongoing, eng.Status(pos))
	assert.Len(t, eng.LegalMoves(pos), 20)
	assert.False(t, eng.HasInsufficientMaterial(pos, color.White))

	pc, ok := eng.PieceAt(pos, sq("e1"))
	require.True(t, ok)
	assert.Equal(t, Piece{Kind: King, Color: color.White}, pc)

	_, ok = eng.PieceAt(pos, sq("e4"))
	assert.False(t, ok)
}

func TestStandard_Apply(t *testing.T) {
	eng := NewStandard()

	t.Run("legal move flips side and leaves input untouched", func(t *testing.T) {
		pos := eng.NewInitialPosition()

		next := play(t, eng, pos, "e2e4")

		assert.Equal(t, color.Black, eng.SideToMove(next))
		assert.True(t, strings.HasPrefix(eng.ToText(next), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b"))
		assert.Equal(t, startFEN, eng.ToText(pos))
	})

	t.Run("illegal move", func(t *testing.T) {
		pos := eng.NewInitialPosition()

		_, err := eng.Apply(pos, Move{From: sq("e2"), To: sq("e5")})

		require.ErrorIs(t, err, ErrIllegalMove)
	})

	t.Run("moving the opponent's piece", func(t *testing.T) {
		pos := eng.NewInitialPosition()

		_, err := eng.Apply(pos, Move{From: sq("e7"), To: sq("e5")})

		require.ErrorIs(t, err, ErrIllegalMove)
	})

	t.Run("promotion defaults to queen", func(t *testing.T) {
		pos := fromFEN(t, "8/4P3/8/8/8/8/k7/4K3 w - - 0 1")

		next := play(t, eng, pos, "e7e8")

		assert.True(t, strings.HasPrefix(eng.ToText(next), "4Q3/"))
	})

	t.Run("under promotion", func(t *testing.T) {
		pos := fromFEN(t, "8/4P3/8/8/8/8/k7/4K3 w - - 0 1")

		next := play(t, eng, pos, "e7e8n")

		assert.True(t, strings.HasPrefix(eng.ToText(next), "4N3/"))
	})
}

func TestStandard_Status(t *testing.T) {
	eng := NewStandard()

	t.Run("fool's mate", func(t *testing.T) {
		pos := play(t, eng, eng.NewInitialPosition(), "f2f3", "e7e5", "g2g4", "d8h4")

		assert.Equal(t, Checkmate, eng.Status(pos))
		assert.Empty(t, eng.LegalMoves(pos))
	})

	t.Run("check", func(t *testing.T) {
		pos := fromFEN(t, "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")
		assert.Equal(t, Check, eng.Status(pos))
	})

	t.Run("stalemate", func(t *testing.T) {
		pos := fromFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
		assert.Equal(t, Stalemate, eng.Status(pos))
	})
}

func TestStandard_LegalMovesFromSquare(t *testing.T) {
	eng := NewStandard()
	pos := eng.NewInitialPosition()

	moves := MovesFrom(eng.LegalMoves(pos), sq("g1"))

	var dests []string
	for _, m := range moves {
		assert.Equal(t, sq("g1"), m.From)
		dests = append(dests, m.To.String())
	}
	assert.ElementsMatch(t, []string{"f3", "h3"}, dests)
}

func TestStandard_InsufficientMaterial(t *testing.T) {
	eng := NewStandard()
	pos := fromFEN(t, "3qk3/8/8/8/8/8/8/4K3 w - - 0 1")

	assert.True(t, eng.HasInsufficientMaterial(pos, color.White))
	assert.False(t, eng.HasInsufficientMaterial(pos, color.Black))
}

func TestPositionFromFEN_Invalid(t *testing.T) {
	_, err := PositionFromFEN("not a fen")
	require.Error(t, err)
}
