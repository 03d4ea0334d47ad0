package chess

import "fmt"

// Move is the record exchanged between the two players. PieceType is a hint
// for the receiver; the receiving game validates the move against its own
// board and never trusts the tag.
type Move struct {
	FromRow   int    `json:"fromRow"`
	FromCol   int    `json:"fromCol"`
	ToRow     int    `json:"toRow"`
	ToCol     int    `json:"toCol"`
	PieceType string `json:"pieceType"`
}

func NewMove(from, to Position, pieceType string) Move {
	return Move{
		FromRow:   from.Row,
		FromCol:   from.Col,
		ToRow:     to.Row,
		ToCol:     to.Col,
		PieceType: pieceType,
	}
}

func (m Move) From() Position { return Position{Row: m.FromRow, Col: m.FromCol} }

func (m Move) To() Position { return Position{Row: m.ToRow, Col: m.ToCol} }

// Valid reports whether both squares are on the board.
func (m Move) Valid() bool {
	return m.From().Valid() && m.To().Valid()
}

// Mirror converts the move between the two board orientations.
func (m Move) Mirror() Move {
	return NewMove(m.From().Mirror(), m.To().Mirror(), m.PieceType)
}

func (m Move) String() string {
	return fmt.Sprintf("%s from %s to %s", m.PieceType, m.From(), m.To())
}
