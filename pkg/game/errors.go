package game

import "errors"

// Precondition failures raised by the seat and move policy. Each maps to one
// error code on the wire.
var (
	ErrGameFull        = errors.New("game is full")
	ErrGameOver        = errors.New("game has already ended")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrNotYourPiece    = errors.New("not your piece")
	ErrNoPieceAtSquare = errors.New("no piece at the selected square")
)
