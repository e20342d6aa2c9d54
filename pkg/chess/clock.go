// Package chess defines the game clock shared by both players of a game
package chess

import (
	"errors"
	"fmt"
	"time"

	"github.com/tecu23/chess-server/internal/color"
)

// Default time control applied when a create request does not carry one.
const (
	DefaultStartMinutes     = 15
	DefaultIncrementSeconds = 10
)

// Upper bounds of a time control. Far below the int64 millisecond range so
// that increments added over a long game cannot wrap either.
const (
	MaxStartMinutes     = 7 * 24 * 60
	MaxIncrementSeconds = 60 * 60
)

var (
	// ErrNegativeTimeControl is returned when a time control has a negative
	// allotment or increment.
	ErrNegativeTimeControl = errors.New("time control must not be negative")
	// ErrTimeControlTooLarge is returned when the allotment or increment is
	// above MaxStartMinutes or MaxIncrementSeconds.
	ErrTimeControlTooLarge = errors.New("time control is too large")
)

// TimeControl defines the time settings for a game
type TimeControl struct {
	Initial   time.Duration // Allotment for each side
	Increment time.Duration // Added to the mover's clock after each completed move
}

// DefaultTimeControl returns 15 minutes per side with a 10 second increment.
func DefaultTimeControl() TimeControl {
	return TimeControl{
		Initial:   DefaultStartMinutes * time.Minute,
		Increment: DefaultIncrementSeconds * time.Second,
	}
}

// NewTimeControl builds a time control from the minutes/seconds the wire
// protocol uses. Zero is legal for both values.
func NewTimeControl(startMinutes, incrementSeconds int64) (TimeControl, error) {
	if startMinutes < 0 || incrementSeconds < 0 {
		return TimeControl{}, ErrNegativeTimeControl
	}
	if startMinutes > MaxStartMinutes || incrementSeconds > MaxIncrementSeconds {
		return TimeControl{}, fmt.Errorf("%w: at most %d minutes and %d seconds increment",
			ErrTimeControlTooLarge, MaxStartMinutes, MaxIncrementSeconds)
	}

	return TimeControl{
		Initial:   time.Duration(startMinutes) * time.Minute,
		Increment: time.Duration(incrementSeconds) * time.Second,
	}, nil
}

// Clock holds the two countdowns of a game. It has no lock of its own: the
// owning game mutates it only while holding the game lock.
type Clock struct {
	whiteTimeMs int64
	blackTimeMs int64
	incrementMs int64

	// lastTick is the instant of the last event that debited time. It stays
	// zero until both seats are filled.
	lastTick time.Time
}

// ClockTick is a point-in-time copy of the clock
type ClockTick struct {
	White     int64
	Black     int64
	Increment int64
}

// NewClock creates a new chess clock with the given time controls
func NewClock(tc TimeControl) *Clock {
	return &Clock{
		whiteTimeMs: tc.Initial.Milliseconds(),
		blackTimeMs: tc.Initial.Milliseconds(),
		incrementMs: tc.Increment.Milliseconds(),
	}
}

// Start marks now as the last tick. Calling it again restarts the
// measurement from now.
func (c *Clock) Start(now time.Time) {
	c.lastTick = now
}

// Running reports whether the clock has a last tick to measure from.
func (c *Clock) Running() bool {
	return !c.lastTick.IsZero()
}

// LastTick returns the last debit instant, zero when not running.
func (c *Clock) LastTick() time.Time {
	return c.lastTick
}

// Remaining returns the remaining milliseconds for a color
func (c *Clock) Remaining(col color.Color) int64 {
	if col == color.White {
		return c.whiteTimeMs
	}
	return c.blackTimeMs
}

// IncrementMs returns the per-move increment in milliseconds
func (c *Clock) IncrementMs() int64 {
	return c.incrementMs
}

// Snapshot returns the current remaining time for both players
func (c *Clock) Snapshot() ClockTick {
	return ClockTick{
		White:     c.whiteTimeMs,
		Black:     c.blackTimeMs,
		Increment: c.incrementMs,
	}
}

// Debit charges the time elapsed since the last tick to col. When the side
// still has time left and withIncrement is set, the increment is added.
// Otherwise the clock is clamped to zero and Debit reports a flag-fall.
// The last tick moves to now in both cases. A clock that is not running
// is left untouched.
func (c *Clock) Debit(col color.Color, now time.Time, withIncrement bool) (flagged bool) {
	if !c.Running() {
		return false
	}

	elapsed := now.Sub(c.lastTick).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := &c.whiteTimeMs
	if col == color.Black {
		remaining = &c.blackTimeMs
	}

	if *remaining > elapsed {
		*remaining -= elapsed
		if withIncrement {
			*remaining += c.incrementMs
		}
	} else {
		*remaining = 0
		flagged = true
	}

	c.lastTick = now

	return flagged
}

// FormatClockTime renders a remaining time for logs: "m:ss", or seconds
// with tenths under ten seconds. Negative values render as zero.
func FormatClockTime(timeMs int64) string {
	d := time.Duration(max(timeMs, 0)) * time.Millisecond
	if d < 10*time.Second {
		return fmt.Sprintf("%.1f", d.Truncate(100*time.Millisecond).Seconds())
	}

	d = d.Truncate(time.Second)
	return fmt.Sprintf("%d:%02d", int64(d/time.Minute), int64(d%time.Minute/time.Second))
}
