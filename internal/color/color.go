// Package color provides basic color definitions for a chess game
package color

// Color represent a chess color
type Color string

// Possible color variations in a chess game. NoColor marks a session
// without a seat.
const (
	NoColor Color = ""
	White   Color = "white"
	Black   Color = "black"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}

// Valid reports whether c is one of the two playing colors.
func (c Color) Valid() bool {
	return c == White || c == Black
}
