package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tecu23/chess-server/internal/color"
)

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession("s1")
	assert.Equal(t, Connected, s.State())

	s.Attach("g1", color.Black)
	assert.Equal(t, Seated, s.State())
	assert.Equal(t, "g1", s.GameID())
	assert.Equal(t, color.Black, s.Color())

	gameID, c := s.Detach()
	assert.Equal(t, "g1", gameID)
	assert.Equal(t, color.Black, c)
	assert.Equal(t, Connected, s.State())

	s.Attach("g2", color.NoColor)
	assert.Equal(t, Spectating, s.State())

	assert.True(t, s.Close())
	assert.False(t, s.Close())
	assert.Equal(t, Closed, s.State())

	s.Detach()
	s.Attach("g3", color.White)
	assert.Empty(t, s.GameID())
}
