// Package messages holds the JSON wire format exchanged with clients
package messages

import "encoding/json"

// Server message kinds
const (
	TypeConnected      = "connected"
	TypeGameCreated    = "game_created"
	TypeJoined         = "joined"
	TypePlayerJoined   = "player_joined"
	TypeMoveMade       = "move_made"
	TypeAvailableMoves = "available_moves"
	TypeError          = "error"
	// TypeTimeSync is shared with the client request of the same name.
)

// Values of ServerMessage.GameStatus
const (
	StatusWaitingForOpponent = "waiting_for_opponent"
	StatusInProgress         = "in_progress"
	StatusCheck              = "check"
	StatusCheckmate          = "checkmate"
	StatusStalemate          = "stalemate"
	StatusWhiteWins          = "white_wins"
	StatusBlackWins          = "black_wins"
	StatusDraw               = "draw"
	StatusWhiteTurn          = "white_turn"
	StatusBlackTurn          = "black_turn"
)

// LastMove is the origin/destination of the move that produced a position
type LastMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// ServerMessage is the single envelope every server message uses. Absent
// fields are omitted from the JSON rather than sent as null; clock fields are
// pointers because zero is a meaningful value.
type ServerMessage struct {
	MessageType    string    `json:"message_type"`
	ConnectionID   string    `json:"connection_id,omitempty"`
	GameID         string    `json:"game_id,omitempty"`
	FEN            string    `json:"fen,omitempty"`
	Color          string    `json:"color,omitempty"`
	Error          string    `json:"error,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	AvailableMoves []string  `json:"available_moves,omitzero"`
	LastMove       *LastMove `json:"last_move,omitempty"`
	GameStatus     string    `json:"game_status,omitempty"`
	WhiteTimeMs    *int64    `json:"white_time_ms,omitempty"`
	BlackTimeMs    *int64    `json:"black_time_ms,omitempty"`
	IncrementMs    *int64    `json:"increment_ms,omitempty"`
	ActiveColor    string    `json:"active_color,omitempty"`
}

// Encode serializes a server message.
func Encode(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeServerMessage parses a server message; used by clients and tests.
func DecodeServerMessage(data []byte) (*ServerMessage, error) {
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NewError builds an error message addressed to a single connection.
func NewError(gameID, code, text string) *ServerMessage {
	return &ServerMessage{
		MessageType: TypeError,
		GameID:      gameID,
		Error:       text,
		ErrorCode:   code,
	}
}

// Ms returns a pointer to v for the clock fields.
func Ms(v int64) *int64 {
	return &v
}
