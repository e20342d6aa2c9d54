// Package repository holds the in-memory registries shared by every
// connection handler: sessions, games and the per-game connection lists.
// Each store has its own lock; no method performs I/O while holding it.
package repository

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/chess-server/pkg/game"
)

// ErrGameNotFound is returned when no game is registered under an id.
var ErrGameNotFound = errors.New("game not found")

// InMemoryGameRepository in an in-memory implementation of the games registry
type InMemoryGameRepository struct {
	games  map[string]*game.Game
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository(logger *zap.Logger) *InMemoryGameRepository {
	return &InMemoryGameRepository{
		games:  make(map[string]*game.Game),
		logger: logger,
	}
}

// SaveGame saves a game to the repository
func (r *InMemoryGameRepository) SaveGame(g *game.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games[g.ID] = g
	r.logger.Debug("game saved", zap.String("game_id", g.ID), zap.Int("games", len(r.games)))
}

// GetGame retrieves a game by ID
func (r *InMemoryGameRepository) GetGame(id string) (*game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return g, nil
}

// Holds reports whether id is still registered to exactly g.
func (r *InMemoryGameRepository) Holds(id string, g *game.Game) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.games[id] == g
}

// RemoveGame deletes a game. Removing an unknown id is a no-op.
func (r *InMemoryGameRepository) RemoveGame(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return false
	}
	delete(r.games, id)
	r.logger.Debug("game removed", zap.String("game_id", id), zap.Int("games", len(r.games)))

	return true
}

// ListGames returns every registered game. The slice is a copy; the games
// themselves must be locked before use.
func (r *InMemoryGameRepository) ListGames() []*game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}

	return games
}

// Keys returns the sorted game ids, for diagnostics.
func (r *InMemoryGameRepository) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.games))
	for id := range r.games {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	return keys
}

// Len returns the number of games.
func (r *InMemoryGameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.games)
}
