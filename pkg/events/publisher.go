// Package events is an in-process publisher for game lifecycle events.
package events

import "sync"

// EventType represents the type of event
type EventType string

// Define event types
const (
	EventConnectionOpened EventType = "CONNECTION_OPENED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"
	EventGameCreated      EventType = "GAME_CREATED"
	EventPlayerJoined     EventType = "PLAYER_JOINED"
	EventPlayerLeft       EventType = "PLAYER_LEFT"
	EventMoveProcessed    EventType = "MOVE_PROCESSED"
	EventTimeUp           EventType = "TIME_UP"
	EventGameOver         EventType = "GAME_OVER"
	EventGameRemoved      EventType = "GAME_REMOVED"

	allEvents EventType = "*"
)

// Event represents an event in the system
type Event struct {
	Type    EventType   `json:"type"`
	GameID  string      `json:"game_id,omitempty"` // Optional, can be empty for non-game events
	Payload interface{} `json:"payload,omitempty"`
}

// Handler is a function that processes events
type Handler func(event Event)

// Publisher is the central event publisher. A nil *Publisher drops events.
type Publisher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

// NewPublisher creates a new event publisher
func NewPublisher() *Publisher {
	return &Publisher{
		subscribers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (p *Publisher) Subscribe(eventType EventType, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[eventType] = append(p.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (p *Publisher) SubscribeAll(handler Handler) {
	p.Subscribe(allEvents, handler)
}

// Publish broadcasts an event to all subscribers including "all events"
// handlers. Handlers run on their own goroutines so publishing never blocks
// the caller, which may be holding a game lock.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}

	p.mu.RLock()
	handlers := append([]Handler(nil), p.subscribers[event.Type]...)
	handlers = append(handlers, p.subscribers[allEvents]...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		go handler(event)
	}
}
