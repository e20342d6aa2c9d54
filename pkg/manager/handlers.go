package manager

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/chess-server/internal/color"
	"github.com/tecu23/chess-server/pkg/chess"
	"github.com/tecu23/chess-server/pkg/events"
	"github.com/tecu23/chess-server/pkg/game"
	"github.com/tecu23/chess-server/pkg/messages"
	"github.com/tecu23/chess-server/pkg/rules"
)

// Handle decodes one inbound text frame from s and processes it.
func (m *Manager) Handle(s *game.Session, data []byte) {
	msg, err := messages.DecodeClientMessage(data)
	if err != nil {
		m.logger.Debug("malformed client message",
			zap.String("session_id", s.ID),
			zap.Error(err))
		m.replyError(s, "", fmt.Errorf("%w: %v", ErrInvalidMessageFormat, err))
		return
	}

	m.HandleMessage(s, msg)
}

// HandleMessage routes a decoded client message to its handler. Failures
// are reported to s as an error message and never affect other sessions.
func (m *Manager) HandleMessage(s *game.Session, msg messages.ClientMessage) {
	var err error

	switch msg.MessageType {
	case messages.TypeCreate:
		err = m.handleCreate(s, msg)
	case messages.TypeJoin:
		err = m.handleJoin(s, msg)
	case messages.TypeMove:
		err = m.handleMove(s, msg)
	case messages.TypeGetMoves:
		err = m.handleGetMoves(s, msg)
	case messages.TypeTimeSync:
		err = m.handleTimeSync(s, msg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.MessageType)
	}

	if err != nil {
		gameID := msg.GameID
		if gameID == "" {
			gameID = s.GameID()
		}
		m.replyError(s, gameID, err)
	}
}

func (m *Manager) replyError(s *game.Session, gameID string, err error) {
	code := Code(err)
	m.logger.Debug("request rejected",
		zap.String("session_id", s.ID),
		zap.String("game_id", gameID),
		zap.String("code", code),
		zap.Error(err))

	m.dispatcher.Send(s.ID, messages.NewError(gameID, code, err.Error()))
}

// timeControl resolves the requested time control, filling absent fields
// from the defaults.
func (m *Manager) timeControl(msg messages.ClientMessage) (chess.TimeControl, error) {
	if msg.StartTimeMinutes == nil && msg.IncrementSeconds == nil {
		return m.defaults, nil
	}

	minutes := int64(m.defaults.Initial / time.Minute)
	if msg.StartTimeMinutes != nil {
		minutes = *msg.StartTimeMinutes
	}
	increment := int64(m.defaults.Increment / time.Second)
	if msg.IncrementSeconds != nil {
		increment = *msg.IncrementSeconds
	}

	return chess.NewTimeControl(minutes, increment)
}

func (m *Manager) handleCreate(s *game.Session, msg messages.ClientMessage) error {
	tc, err := m.timeControl(msg)
	if err != nil {
		return err
	}

	if s.GameID() != "" {
		m.leave(s)
	}

	g := game.New(m.newID(), m.rules, s.ID, tc, m.clock.Now())

	g.Lock()
	defer g.Unlock()

	m.games.SaveGame(g)
	m.connections.Attach(g.ID, s.ID, nil)
	s.Attach(g.ID, color.White)

	reply := g.StateMessage(messages.TypeGameCreated)
	reply.Color = string(color.White)
	reply.GameStatus = g.SeatStatus()
	m.dispatcher.Send(s.ID, reply)

	m.logger.Info("created new game",
		zap.String("game_id", g.ID),
		zap.String("session_id", s.ID),
		zap.Duration("initial", tc.Initial),
		zap.Duration("increment", tc.Increment))

	m.publisher.Publish(events.Event{
		Type:    events.EventGameCreated,
		GameID:  g.ID,
		Payload: map[string]string{"connection_id": s.ID},
	})

	return nil
}

func (m *Manager) handleJoin(s *game.Session, msg messages.ClientMessage) error {
	if msg.GameID == "" {
		return ErrGameIDMissing
	}

	if current := s.GameID(); current != "" && current != msg.GameID {
		m.leave(s)
	}

	g, err := m.games.GetGame(msg.GameID)
	if err != nil {
		return err
	}

	g.Lock()
	defer g.Unlock()

	c, started, err := g.AssignSeat(s.ID, m.clock.Now())
	if err != nil {
		return err
	}

	// The last session may have left between the lookup and the attach;
	// never attach to a game that is no longer registered.
	if !m.connections.Attach(g.ID, s.ID, func() bool { return m.games.Holds(g.ID, g) }) {
		g.Vacate(s.ID)
		return ErrGameNotFound
	}
	s.Attach(g.ID, c)

	reply := g.StateMessage(messages.TypeJoined)
	reply.Color = string(c)
	reply.GameStatus = g.SeatStatus()
	m.dispatcher.Send(s.ID, reply)

	notice := *reply
	notice.MessageType = messages.TypePlayerJoined
	m.dispatcher.Broadcast(g.ID, &notice, s.ID)

	m.logger.Info("player joined game",
		zap.String("game_id", g.ID),
		zap.String("session_id", s.ID),
		zap.String("color", string(c)),
		zap.Bool("clock_started", started))

	m.publisher.Publish(events.Event{
		Type:    events.EventPlayerJoined,
		GameID:  g.ID,
		Payload: map[string]string{"connection_id": s.ID, "color": string(c)},
	})

	return nil
}

func (m *Manager) handleMove(s *game.Session, msg messages.ClientMessage) error {
	gameID := s.GameID()
	if gameID == "" {
		return ErrNotInGame
	}
	if msg.MoveFrom == "" || msg.MoveTo == "" {
		return fmt.Errorf("%w: move_from and move_to are required", ErrInvalidMoveFormat)
	}

	from, err := rules.ParseSquare(msg.MoveFrom)
	if err != nil {
		return err
	}
	to, err := rules.ParseSquare(msg.MoveTo)
	if err != nil {
		return err
	}
	promotion, err := rules.ParsePromotion(msg.PromoteTo)
	if err != nil {
		return err
	}

	g, err := m.games.GetGame(gameID)
	if err != nil {
		return err
	}

	g.Lock()
	defer g.Unlock()

	out, err := g.Move(s.ID, rules.Move{From: from, To: to, Promotion: promotion}, m.clock.Now())
	if err != nil {
		return err
	}

	update := g.StateMessage(messages.TypeMoveMade)
	update.GameStatus = g.MoveStatus()
	m.dispatcher.Broadcast(g.ID, update, s.ID)

	m.logger.Debug("move processed",
		zap.String("game_id", g.ID),
		zap.String("color", string(out.Mover)),
		zap.String("move", out.Move.UCI()),
		zap.String("status", update.GameStatus))

	m.publisher.Publish(events.Event{
		Type:    events.EventMoveProcessed,
		GameID:  g.ID,
		Payload: map[string]string{"move": out.Move.UCI(), "color": string(out.Mover), "fen": update.FEN},
	})
	m.publishOutcome(g, out.Flagged, out.Mover, out.Result.Over())

	return nil
}

func (m *Manager) handleGetMoves(s *game.Session, msg messages.ClientMessage) error {
	gameID := s.GameID()
	if gameID == "" {
		return ErrNotInGame
	}
	if msg.MoveFrom == "" {
		return fmt.Errorf("%w: move_from is required", ErrInvalidMoveFormat)
	}

	from, err := rules.ParseSquare(msg.MoveFrom)
	if err != nil {
		return err
	}

	g, err := m.games.GetGame(gameID)
	if err != nil {
		return err
	}

	g.Lock()
	defer g.Unlock()

	dests, err := g.Destinations(s.ID, from)
	if err != nil {
		return err
	}

	m.dispatcher.Send(s.ID, &messages.ServerMessage{
		MessageType:    messages.TypeAvailableMoves,
		GameID:         g.ID,
		AvailableMoves: dests,
	})

	return nil
}

func (m *Manager) handleTimeSync(s *game.Session, msg messages.ClientMessage) error {
	gameID := msg.GameID
	if gameID == "" {
		return ErrGameIDMissing
	}

	g, err := m.games.GetGame(gameID)
	if err != nil {
		return err
	}

	g.Lock()
	defer g.Unlock()

	m.syncLocked(g)

	// A requester that is not attached to the game still gets its answer.
	if !m.connections.Contains(g.ID, s.ID) {
		update := g.StateMessage(messages.TypeTimeSync)
		update.GameStatus = g.MoveStatus()
		m.dispatcher.Send(s.ID, update)
	}

	return nil
}

// SyncAll debits the running clock of every live game and broadcasts the
// refreshed times. It returns the number of games that were broadcast to.
func (m *Manager) SyncAll() int {
	synced := 0
	for _, g := range m.games.ListGames() {
		g.Lock()
		if g.ClockRunning() && g.BothSeated() && !g.Result().Over() {
			m.syncLocked(g)
			synced++
		}
		g.Unlock()
	}
	return synced
}

// syncLocked runs a clock sync and broadcasts the result. Terminal games and
// games whose clock is not running are broadcast unchanged. g must be
// locked.
func (m *Manager) syncLocked(g *game.Game) {
	active := g.SideToMove()
	flagged := g.Sync(m.clock.Now())

	update := g.StateMessage(messages.TypeTimeSync)
	update.GameStatus = g.MoveStatus()
	m.dispatcher.Broadcast(g.ID, update, "")

	if flagged {
		m.publishOutcome(g, true, active, true)
	}
}

func (m *Manager) publishOutcome(g *game.Game, flagged bool, flaggedColor color.Color, ended bool) {
	tick := g.Clock()

	if flagged {
		m.logger.Info("player ran out of time",
			zap.String("game_id", g.ID),
			zap.String("color", string(flaggedColor)),
			zap.String("white_clock", chess.FormatClockTime(tick.White)),
			zap.String("black_clock", chess.FormatClockTime(tick.Black)))
		m.publisher.Publish(events.Event{
			Type:    events.EventTimeUp,
			GameID:  g.ID,
			Payload: map[string]string{"color": string(flaggedColor)},
		})
	}

	if !ended {
		return
	}

	r := g.Result()
	m.logger.Info("game over",
		zap.String("game_id", g.ID),
		zap.String("result", r.String()),
		zap.Int("moves", g.MoveCount()),
		zap.Duration("duration", m.clock.Since(g.CreatedAt)),
		zap.String("white_clock", chess.FormatClockTime(tick.White)),
		zap.String("black_clock", chess.FormatClockTime(tick.Black)))
	m.publisher.Publish(events.Event{
		Type:   events.EventGameOver,
		GameID: g.ID,
		Payload: map[string]string{
			"result": r.String(),
			"status": r.Status(),
			"winner": string(r.Winner()),
		},
	})
}
