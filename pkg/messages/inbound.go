package messages

import (
	"encoding/json"
	"fmt"
)

// Client message kinds
const (
	TypeCreate   = "create"
	TypeJoin     = "join"
	TypeMove     = "move"
	TypeGetMoves = "get_moves"
	TypeTimeSync = "time_sync"
)

// ClientMessage is the single envelope every client request uses. Only the
// fields relevant to MessageType are populated.
type ClientMessage struct {
	MessageType      string `json:"message_type"`
	GameID           string `json:"game_id,omitempty"`
	MoveFrom         string `json:"move_from,omitempty"`
	MoveTo           string `json:"move_to,omitempty"`
	PromoteTo        string `json:"promote_to,omitempty"`
	ColorPreference  string `json:"color_preference,omitempty"` // advisory only
	StartTimeMinutes *int64 `json:"start_time_minutes,omitempty"`
	IncrementSeconds *int64 `json:"increment_seconds,omitempty"`
}

// DecodeClientMessage parses one inbound text frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	return msg, nil
}
