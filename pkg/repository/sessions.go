package repository

import (
	"sort"
	"sync"
)

// Handle delivers serialized messages to one connection. Deliver must not
// block; it reports whether the payload was accepted.
type Handle interface {
	Deliver(data []byte) bool
}

// SessionRegistry maps a session id to its delivery handle.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Handle
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]Handle)}
}

// Insert registers h under id.
func (r *SessionRegistry) Insert(id string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = h
}

// Remove unregisters id and reports whether it was present.
func (r *SessionRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)

	return true
}

// Get returns the handle registered under id.
func (r *SessionRegistry) Get(id string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.sessions[id]
	return h, ok
}

// Recipient pairs a session id with its handle.
type Recipient struct {
	ID     string
	Handle Handle
}

// Lookup copies out the handles of ids, in order, skipping unknown ids.
func (r *SessionRegistry) Lookup(ids []string) []Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Recipient, 0, len(ids))
	for _, id := range ids {
		if h, ok := r.sessions[id]; ok {
			out = append(out, Recipient{ID: id, Handle: h})
		}
	}

	return out
}

// Keys returns the sorted session ids, for diagnostics.
func (r *SessionRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	return keys
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
