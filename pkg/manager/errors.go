package manager

import (
	"errors"

	"github.com/tecu23/chess-server/pkg/chess"
	"github.com/tecu23/chess-server/pkg/game"
	"github.com/tecu23/chess-server/pkg/repository"
	"github.com/tecu23/chess-server/pkg/rules"
)

// Protocol and precondition errors raised by the handlers themselves. The
// seat and move policy errors live in package game.
var (
	ErrInvalidMessageFormat = errors.New("invalid message format")
	ErrUnknownMessageType   = errors.New("unknown message type")
	ErrNotInGame            = errors.New("you are not in a game")
	ErrGameIDMissing        = errors.New("game id is required")
	ErrInvalidMoveFormat    = errors.New("invalid move format")
	ErrGameNotFound         = repository.ErrGameNotFound
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidMessageFormat, "InvalidMessageFormat"},
	{ErrUnknownMessageType, "UnknownMessageType"},
	{ErrNotInGame, "NotInGame"},
	{ErrGameIDMissing, "GameIdMissing"},
	{ErrGameNotFound, "GameNotFound"},
	{ErrInvalidMoveFormat, "InvalidMoveFormat"},
	{game.ErrGameFull, "GameFull"},
	{game.ErrGameOver, "GameOver"},
	{game.ErrNotYourTurn, "NotYourTurn"},
	{game.ErrNotYourPiece, "NotYourPiece"},
	{game.ErrNoPieceAtSquare, "NoPieceAtSquare"},
	{rules.ErrIllegalMove, "IllegalMove"},
	{rules.ErrInvalidSquare, "InvalidSquareName"},
	{rules.ErrInvalidPromotion, "InvalidMoveFormat"},
	{chess.ErrNegativeTimeControl, "InvalidTimeControl"},
	{chess.ErrTimeControlTooLarge, "InvalidTimeControl"},
}

// Code returns the wire error code for err.
func Code(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "InternalError"
}
