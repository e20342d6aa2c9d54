package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublisher_Publish(t *testing.T) {
	p := NewPublisher()

	var (
		mu       sync.Mutex
		specific []Event
		all      []Event
	)
	p.Subscribe(EventGameCreated, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		specific = append(specific, e)
	})
	p.SubscribeAll(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		all = append(all, e)
	})

	p.Publish(Event{Type: EventGameCreated, GameID: "g1"})
	p.Publish(Event{Type: EventGameRemoved, GameID: "g1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(specific) == 1 && len(all) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "g1", specific[0].GameID)
}

func TestPublisher_NilDropsEvents(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() { p.Publish(Event{Type: EventTimeUp}) })
}

type fakeConn struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return f.err
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSSink(t *testing.T) {
	conn := &fakeConn{}
	sink := newNATSSink(conn, "chess.", zap.NewNop())

	assert.Equal(t, "chess.time_up", sink.Subject(EventTimeUp))

	sink.Handle(Event{Type: EventGameCreated, GameID: "g1", Payload: map[string]string{"creator": "s1"}})

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "chess.game_created", conn.subjects[0])

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, "GAME_CREATED", got["type"])
	assert.Equal(t, "g1", got["game_id"])

	conn.err = errors.New("nats: connection closed")
	assert.NotPanics(t, func() { sink.Handle(Event{Type: EventGameRemoved}) })

	require.NoError(t, sink.Close())
	assert.True(t, conn.drained)
}
