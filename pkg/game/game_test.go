package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecu23/chess-server/internal/color"
	"github.com/tecu23/chess-server/pkg/chess"
	"github.com/tecu23/chess-server/pkg/messages"
	"github.com/tecu23/chess-server/pkg/rules"
)

const (
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// fenEngine starts games from a fixed position instead of the initial one.
type fenEngine struct {
	*rules.Standard
	fen string
}

func (e fenEngine) NewInitialPosition() rules.Position {
	pos, err := rules.PositionFromFEN(e.fen)
	if err != nil {
		panic(err)
	}
	return pos
}

func mv(t *testing.T, from, to string) rules.Move {
	t.Helper()
	f, err := rules.ParseSquare(from)
	require.NoError(t, err)
	d, err := rules.ParseSquare(to)
	require.NoError(t, err)
	return rules.Move{From: f, To: d}
}

func newStarted(t *testing.T, eng rules.Engine, tc chess.TimeControl) *Game {
	t.Helper()
	g := New("g1", eng, alice, tc, t0)
	_, started, err := g.AssignSeat(bob, t0)
	require.NoError(t, err)
	require.True(t, started)
	return g
}

func TestNew(t *testing.T) {
	// When: a game is created
	g := New("g1", rules.NewStandard(), alice, chess.DefaultTimeControl(), t0)

	// Then: only the creator's seat is taken and the clock is idle
	assert.Equal(t, color.White, g.SeatOf(alice))
	assert.Empty(t, g.Player(color.Black))
	assert.False(t, g.BothSeated())
	assert.False(t, g.ClockRunning())
	assert.Equal(t, messages.StatusWaitingForOpponent, g.SeatStatus())
	assert.Equal(t, NoResult, g.Result())
	assert.Equal(t, color.White, g.SideToMove())
}

func TestGame_AssignSeat(t *testing.T) {
	g := New("g1", rules.NewStandard(), alice, chess.DefaultTimeControl(), t0)

	c, started, err := g.AssignSeat(bob, t0)
	require.NoError(t, err)
	assert.Equal(t, color.Black, c)
	assert.True(t, started)
	assert.True(t, g.ClockRunning())
	assert.Equal(t, messages.StatusInProgress, g.SeatStatus())

	t.Run("full", func(t *testing.T) {
		_, _, err := g.AssignSeat(carol, t0)
		require.ErrorIs(t, err, ErrGameFull)
		assert.Equal(t, color.NoColor, g.SeatOf(carol))
	})

	t.Run("already seated keeps the seat", func(t *testing.T) {
		c, started, err := g.AssignSeat(bob, t0)
		require.NoError(t, err)
		assert.Equal(t, color.Black, c)
		assert.False(t, started)
	})

	t.Run("vacated white seat is assigned first", func(t *testing.T) {
		assert.Equal(t, color.White, g.Vacate(alice))
		assert.False(t, g.BothSeated())

		c, started, err := g.AssignSeat(carol, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, color.White, c)
		assert.True(t, started)
		assert.Equal(t, t0.Add(time.Minute), g.clock.LastTick())
	})

	t.Run("vacate without a seat", func(t *testing.T) {
		assert.Equal(t, color.NoColor, g.Vacate("nobody"))
	})
}

func TestGame_Move(t *testing.T) {
	eng := rules.NewStandard()
	tc := chess.TimeControl{Initial: time.Minute, Increment: 2 * time.Second}

	t.Run("out of turn leaves state unchanged", func(t *testing.T) {
		g := newStarted(t, eng, tc)
		fen := g.FEN()
		clock := g.Clock()

		_, err := g.Move(bob, mv(t, "e7", "e5"), t0.Add(time.Second))

		require.ErrorIs(t, err, ErrNotYourTurn)
		assert.Equal(t, fen, g.FEN())
		assert.Equal(t, clock, g.Clock())
		assert.Equal(t, color.White, g.SideToMove())
		assert.Equal(t, t0, g.clock.LastTick())
	})

	t.Run("spectator cannot move", func(t *testing.T) {
		g := newStarted(t, eng, tc)

		_, err := g.Move(carol, mv(t, "e2", "e4"), t0)

		require.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("empty origin square", func(t *testing.T) {
		g := newStarted(t, eng, tc)

		_, err := g.Move(alice, mv(t, "e4", "e5"), t0)

		require.ErrorIs(t, err, ErrNoPieceAtSquare)
	})

	t.Run("illegal move touches nothing", func(t *testing.T) {
		g := newStarted(t, eng, tc)
		clock := g.Clock()

		_, err := g.Move(alice, mv(t, "e2", "e5"), t0.Add(5*time.Second))

		require.ErrorIs(t, err, rules.ErrIllegalMove)
		assert.Equal(t, clock, g.Clock())
		assert.Equal(t, t0, g.clock.LastTick())
		assert.Equal(t, 0, g.MoveCount())
	})

	t.Run("legal moves alternate and only debit the mover", func(t *testing.T) {
		g := newStarted(t, eng, tc)

		out, err := g.Move(alice, mv(t, "e2", "e4"), t0.Add(3*time.Second))
		require.NoError(t, err)
		assert.Equal(t, color.White, out.Mover)
		assert.Equal(t, color.Black, g.SideToMove())
		assert.Equal(t, int64(60000-3000+2000), g.Clock().White)
		assert.Equal(t, int64(60000), g.Clock().Black)
		assert.Equal(t, messages.StatusBlackTurn, g.MoveStatus())

		_, err = g.Move(bob, mv(t, "e7", "e5"), t0.Add(10*time.Second))
		require.NoError(t, err)
		assert.Equal(t, color.White, g.SideToMove())
		assert.Equal(t, int64(59000), g.Clock().White)
		assert.Equal(t, int64(60000-7000+2000), g.Clock().Black)
		assert.Equal(t, 2, g.MoveCount())

		last, ok := g.LastMove()
		require.True(t, ok)
		assert.Equal(t, "e7e5", last.UCI())
	})

	t.Run("moves before the opponent arrives do not use the clock", func(t *testing.T) {
		g := New("g1", eng, alice, tc, t0)

		_, err := g.Move(alice, mv(t, "d2", "d4"), t0.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, int64(60000), g.Clock().White)
	})

	t.Run("checkmate ends the game", func(t *testing.T) {
		g := newStarted(t, eng, tc)
		for i, m := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}} {
			player := alice
			if i%2 == 1 {
				player = bob
			}
			_, err := g.Move(player, mv(t, m[0], m[1]), t0)
			require.NoError(t, err)
		}

		out, err := g.Move(bob, mv(t, "d8", "h4"), t0)
		require.NoError(t, err)

		assert.Equal(t, rules.Checkmate, out.Status)
		assert.Equal(t, BlackCheckmates, g.Result())
		assert.Equal(t, messages.StatusCheckmate, g.MoveStatus())

		_, err = g.Move(alice, mv(t, "a2", "a3"), t0)
		require.ErrorIs(t, err, ErrGameOver)
	})
}

func TestGame_FlagFall(t *testing.T) {
	tc := chess.TimeControl{Initial: 1200 * time.Millisecond, Increment: time.Second}

	tests := []struct {
		name   string
		fen    string
		from   string
		to     string
		result Result
		status string
	}{
		{
			// White flags while black only has a king.
			name:   "opponent with bare king draws",
			fen:    "4k3/8/8/8/8/8/8/3QK3 w - - 0 1",
			from:   "d1",
			to:     "d2",
			result: DrawOnTime,
			status: messages.StatusDraw,
		},
		{
			name:   "opponent with a queen wins",
			fen:    "3qk3/8/8/8/8/8/8/4K3 w - - 0 1",
			from:   "e1",
			to:     "f2",
			result: BlackWinsOnTime,
			status: messages.StatusBlackWins,
		},
	}

	for _, tt := range tests {
		t.Run("move "+tt.name, func(t *testing.T) {
			g := newStarted(t, fenEngine{rules.NewStandard(), tt.fen}, tc)

			out, err := g.Move(alice, mv(t, tt.from, tt.to), t0.Add(1300*time.Millisecond))

			require.NoError(t, err)
			assert.True(t, out.Flagged)
			assert.Equal(t, tt.result, g.Result())
			assert.Equal(t, tt.status, g.MoveStatus())
			assert.Equal(t, int64(0), g.Clock().White)
			assert.Equal(t, int64(1200), g.Clock().Black)

			_, err = g.Move(bob, mv(t, "e8", "e7"), t0.Add(2*time.Second))
			require.ErrorIs(t, err, ErrGameOver)
		})

		t.Run("sync "+tt.name, func(t *testing.T) {
			g := newStarted(t, fenEngine{rules.NewStandard(), tt.fen}, tc)
			fen := g.FEN()

			assert.False(t, g.Sync(t0.Add(500*time.Millisecond)))
			assert.Equal(t, int64(700), g.Clock().White)

			assert.True(t, g.Sync(t0.Add(1300*time.Millisecond)))
			assert.Equal(t, tt.result, g.Result())
			assert.Equal(t, int64(0), g.Clock().White)
			assert.Equal(t, fen, g.FEN())
			assert.Equal(t, color.White, g.SideToMove())

			// Terminal games no longer tick.
			assert.False(t, g.Sync(t0.Add(time.Hour)))
		})
	}
}

func TestGame_Sync(t *testing.T) {
	t.Run("idle before the second player", func(t *testing.T) {
		g := New("g1", rules.NewStandard(), alice, chess.TimeControl{Initial: time.Second}, t0)

		assert.False(t, g.Sync(t0.Add(time.Hour)))
		assert.Equal(t, int64(1000), g.Clock().White)
	})

	t.Run("zero allotment flags at once", func(t *testing.T) {
		g := newStarted(t, rules.NewStandard(), chess.TimeControl{})

		assert.True(t, g.Sync(t0))
		assert.Equal(t, BlackWinsOnTime, g.Result())
	})
}

func TestGame_Destinations(t *testing.T) {
	g := newStarted(t, rules.NewStandard(), chess.DefaultTimeControl())

	t.Run("own piece on own turn", func(t *testing.T) {
		dests, err := g.Destinations(alice, mv(t, "g1", "g1").From)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"f3", "h3"}, dests)
	})

	t.Run("piece without moves", func(t *testing.T) {
		dests, err := g.Destinations(alice, mv(t, "a1", "a1").From)
		require.NoError(t, err)
		assert.NotNil(t, dests)
		assert.Empty(t, dests)
	})

	t.Run("empty square", func(t *testing.T) {
		_, err := g.Destinations(alice, mv(t, "e4", "e4").From)
		require.ErrorIs(t, err, ErrNoPieceAtSquare)
	})

	t.Run("not your turn", func(t *testing.T) {
		_, err := g.Destinations(bob, mv(t, "e7", "e7").From)
		require.ErrorIs(t, err, ErrNotYourTurn)
	})

	t.Run("not your piece", func(t *testing.T) {
		_, err := g.Destinations(alice, mv(t, "e7", "e7").From)
		require.ErrorIs(t, err, ErrNotYourPiece)
	})
}

func TestGame_StateMessage(t *testing.T) {
	g := newStarted(t, rules.NewStandard(), chess.DefaultTimeControl())
	_, err := g.Move(alice, mv(t, "e2", "e4"), t0.Add(time.Second))
	require.NoError(t, err)

	msg := g.StateMessage(messages.TypeMoveMade)

	assert.Equal(t, "g1", msg.GameID)
	assert.Equal(t, g.FEN(), msg.FEN)
	assert.Equal(t, &messages.LastMove{From: "e2", To: "e4"}, msg.LastMove)
	assert.Equal(t, "black", msg.ActiveColor)
	require.NotNil(t, msg.WhiteTimeMs)
	assert.Equal(t, int64(900000-1000+10000), *msg.WhiteTimeMs)
	assert.Equal(t, int64(10000), *msg.IncrementMs)
}
