package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// natsConn is the part of *nats.Conn the sink uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSSink mirrors published events onto NATS subjects of the form
// "<prefix>.<event type>", e.g. "chess.game_created".
type NATSSink struct {
	conn   natsConn
	prefix string
	logger *zap.Logger
}

// ConnectNATS dials url and returns a sink publishing under prefix.
func ConnectNATS(url, prefix string, logger *zap.Logger) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("chess-server"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return newNATSSink(nc, prefix, logger), nil
}

func newNATSSink(conn natsConn, prefix string, logger *zap.Logger) *NATSSink {
	return &NATSSink{conn: conn, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Subject returns the subject an event type is published on.
func (s *NATSSink) Subject(t EventType) string {
	return s.prefix + "." + strings.ToLower(string(t))
}

// Handle publishes one event. It is meant to be passed to SubscribeAll.
func (s *NATSSink) Handle(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	if err := s.conn.Publish(s.Subject(event.Type), data); err != nil {
		s.logger.Warn("publish event to nats", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// Close flushes pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
