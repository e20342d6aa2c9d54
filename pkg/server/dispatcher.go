package server

import (
	"go.uber.org/zap"

	"github.com/tecu23/chess-server/pkg/messages"
	"github.com/tecu23/chess-server/pkg/repository"
)

// Dispatcher serializes server messages once and hands the bytes to the
// delivery handles of their recipients. It never writes to the network;
// each Connection's write pump does.
type Dispatcher struct {
	connections *repository.ConnectionIndex
	sessions    *repository.SessionRegistry
	logger      *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registries.
func NewDispatcher(
	connections *repository.ConnectionIndex,
	sessions *repository.SessionRegistry,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		connections: connections,
		sessions:    sessions,
		logger:      logger,
	}
}

// skipsActor reports whether a broadcast of kind leaves out the session that
// caused it. Those sessions already got a direct reply.
func skipsActor(kind string) bool {
	return kind == messages.TypeJoined || kind == messages.TypeGameCreated
}

// Send delivers msg to one session. It reports false when the session is
// gone, the payload cannot be encoded or the session's buffer is full.
func (d *Dispatcher) Send(sessionID string, msg *messages.ServerMessage) bool {
	h, ok := d.sessions.Get(sessionID)
	if !ok {
		d.logger.Debug("send to unknown session",
			zap.String("session_id", sessionID),
			zap.String("message_type", msg.MessageType))
		return false
	}

	data, err := messages.Encode(msg)
	if err != nil {
		d.logger.Error("failed to encode server message",
			zap.String("message_type", msg.MessageType),
			zap.Error(err))
		return false
	}

	return h.Deliver(data)
}

// Broadcast delivers msg to every session attached to gameID and returns
// how many accepted it. Sessions listed for the game but no longer
// registered are skipped.
func (d *Dispatcher) Broadcast(gameID string, msg *messages.ServerMessage, actorID string) int {
	ids := d.connections.Snapshot(gameID)
	if len(ids) == 0 {
		return 0
	}

	if skipsActor(msg.MessageType) {
		kept := ids[:0]
		for _, id := range ids {
			if id != actorID {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	data, err := messages.Encode(msg)
	if err != nil {
		d.logger.Error("failed to encode broadcast",
			zap.String("game_id", gameID),
			zap.String("message_type", msg.MessageType),
			zap.Error(err))
		return 0
	}

	delivered := 0
	for _, r := range d.sessions.Lookup(ids) {
		if r.Handle.Deliver(data) {
			delivered++
		}
	}

	return delivered
}
