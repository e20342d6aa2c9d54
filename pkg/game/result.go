package game

import (
	"github.com/tecu23/chess-server/internal/color"
	"github.com/tecu23/chess-server/pkg/messages"
)

// Result is the terminal outcome of a game. Timeouts are kept apart from
// checkmates.
type Result int

// Possible results. NoResult means the game still accepts moves.
const (
	NoResult Result = iota
	WhiteCheckmates
	BlackCheckmates
	WhiteWinsOnTime
	BlackWinsOnTime
	DrawOnTime
	Stalemate
)

// Over reports whether r is terminal.
func (r Result) Over() bool {
	return r != NoResult
}

// Winner returns the winning color, NoColor for draws and ongoing games.
func (r Result) Winner() color.Color {
	switch r {
	case WhiteCheckmates, WhiteWinsOnTime:
		return color.White
	case BlackCheckmates, BlackWinsOnTime:
		return color.Black
	}
	return color.NoColor
}

// Status maps the result to its wire game_status.
func (r Result) Status() string {
	switch r {
	case WhiteCheckmates, BlackCheckmates:
		return messages.StatusCheckmate
	case WhiteWinsOnTime:
		return messages.StatusWhiteWins
	case BlackWinsOnTime:
		return messages.StatusBlackWins
	case DrawOnTime:
		return messages.StatusDraw
	case Stalemate:
		return messages.StatusStalemate
	}
	return ""
}

func (r Result) String() string {
	switch r {
	case WhiteCheckmates:
		return "white checkmates"
	case BlackCheckmates:
		return "black checkmates"
	case WhiteWinsOnTime:
		return "white wins on time"
	case BlackWinsOnTime:
		return "black wins on time"
	case DrawOnTime:
		return "draw on time"
	case Stalemate:
		return "stalemate"
	}
	return "ongoing"
}

// timeout resolves a flag-fall of flagged. The game is drawn when the
// opponent cannot mate anyway.
func timeout(flagged color.Color, opponentInsufficient bool) Result {
	if opponentInsufficient {
		return DrawOnTime
	}
	if flagged == color.White {
		return BlackWinsOnTime
	}
	return WhiteWinsOnTime
}

func checkmateBy(mover color.Color) Result {
	if mover == color.White {
		return WhiteCheckmates
	}
	return BlackCheckmates
}
