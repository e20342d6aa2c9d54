package repository

import (
	"slices"
	"sync"
)

// ConnectionIndex maps a game id to the ordered list of session ids attached
// to it, spectators included. An entry disappears with its last session.
type ConnectionIndex struct {
	mu    sync.Mutex
	lists map[string][]string
}

// NewConnectionIndex returns an empty index.
func NewConnectionIndex() *ConnectionIndex {
	return &ConnectionIndex{lists: make(map[string][]string)}
}

// Attach appends sessionID to the game's list unless already present. live
// is evaluated under the index lock and must report whether the game still
// exists; when it does not, nothing is added and Attach returns false.
func (c *ConnectionIndex) Attach(gameID, sessionID string, live func() bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if live != nil && !live() {
		return false
	}

	list := c.lists[gameID]
	if !slices.Contains(list, sessionID) {
		c.lists[gameID] = append(list, sessionID)
	}

	return true
}

// Detach removes sessionID from the game's list. When the list becomes empty
// the entry is deleted and onEmpty runs before the lock is released, so no
// Attach can slip in between. It reports whether the session was listed.
func (c *ConnectionIndex) Detach(gameID, sessionID string, onEmpty func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, ok := c.lists[gameID]
	if !ok {
		return false
	}

	i := slices.Index(list, sessionID)
	if i < 0 {
		return false
	}

	list = slices.Delete(slices.Clone(list), i, i+1)
	if len(list) > 0 {
		c.lists[gameID] = list
		return true
	}

	delete(c.lists, gameID)
	if onEmpty != nil {
		onEmpty()
	}

	return true
}

// Snapshot returns a copy of the game's list in insertion order.
func (c *ConnectionIndex) Snapshot(gameID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.lists[gameID])
}

// Contains reports whether sessionID is listed for the game.
func (c *ConnectionIndex) Contains(gameID, sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Contains(c.lists[gameID], sessionID)
}

// Len returns the number of games with at least one connection.
func (c *ConnectionIndex) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lists)
}
