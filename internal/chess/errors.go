package chess

import "errors"

// Reason codes for requests that left the game unchanged.
var (
	ErrOutOfRange        = errors.New("square out of range")
	ErrNoPiece           = errors.New("no piece on source square")
	ErrNotYourTurn       = errors.New("piece does not belong to the active color")
	ErrIllegalMove       = errors.New("illegal move")
	ErrLeavesKingInCheck = errors.New("move leaves own king in check")
	ErrGameOver          = errors.New("game is over")
	ErrInvalidFEN        = errors.New("invalid FEN")
)
