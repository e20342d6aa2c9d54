package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpp(t *testing.T) {
	assert.Equal(t, Black, White.Opp())
	assert.Equal(t, White, Black.Opp())
}

func TestValid(t *testing.T) {
	assert.True(t, White.Valid())
	assert.True(t, Black.Valid())
	assert.False(t, NoColor.Valid())
}
