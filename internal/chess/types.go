package chess

import "strings"

// Size is the number of rows and columns on the board.
const Size = 8

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Kind identifies one of the six piece variants.
type Kind uint8

const (
	Pawn Kind = iota + 1
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindTags = map[Kind]string{
	Pawn:   "PAWN",
	Rook:   "ROOK",
	Knight: "KNIGHT",
	Bishop: "BISHOP",
	Queen:  "QUEEN",
	King:   "KING",
}

// String returns the tag carried in Move.PieceType, e.g. "PAWN".
func (k Kind) String() string {
	if tag, ok := kindTags[k]; ok {
		return tag
	}
	return "UNKNOWN"
}

// ParseKind is the inverse of Kind.String. Matching is case-insensitive.
func ParseKind(tag string) (Kind, bool) {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	for k, t := range kindTags {
		if t == tag {
			return k, true
		}
	}
	return 0, false
}

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// State is the selection state of a Game.
type State uint8

const (
	AwaitingSelection State = iota
	PieceSelected
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitingSelection:
		return "awaiting_selection"
	case PieceSelected:
		return "piece_selected"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Result describes what a selection did to the game.
type Result uint8

const (
	ResultNone Result = iota
	ResultSelected
	ResultReselected
	ResultDeselected
	ResultMoved
)

func (r Result) String() string {
	switch r {
	case ResultSelected:
		return "selected"
	case ResultReselected:
		return "reselected"
	case ResultDeselected:
		return "deselected"
	case ResultMoved:
		return "moved"
	default:
		return "none"
	}
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece kinds to their standard values
var StandardPieceValues = map[Kind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0, // King has no material value
}
