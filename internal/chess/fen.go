package chess

import (
	"fmt"

	notnil "github.com/notnil/chess"
)

var toNotnil = map[Color]map[Kind]notnil.Piece{
	White: {
		King: notnil.WhiteKing, Queen: notnil.WhiteQueen, Rook: notnil.WhiteRook,
		Bishop: notnil.WhiteBishop, Knight: notnil.WhiteKnight, Pawn: notnil.WhitePawn,
	},
	Black: {
		King: notnil.BlackKing, Queen: notnil.BlackQueen, Rook: notnil.BlackRook,
		Bishop: notnil.BlackBishop, Knight: notnil.BlackKnight, Pawn: notnil.BlackPawn,
	},
}

var fromNotnilType = map[notnil.PieceType]Kind{
	notnil.King:   King,
	notnil.Queen:  Queen,
	notnil.Rook:   Rook,
	notnil.Bishop: Bishop,
	notnil.Knight: Knight,
	notnil.Pawn:   Pawn,
}

// square maps a board position to a notnil square. Columns map to files
// a-h in both orientations; rows count down from rank 8 when white is at
// the bottom and up from rank 1 otherwise.
func (b *Board) square(p Position) notnil.Square {
	rank := p.Row
	if b.whiteAtBottom {
		rank = Size - 1 - p.Row
	}
	return notnil.Square(rank*Size + p.Col)
}

func (b *Board) position(sq notnil.Square) Position {
	row := int(sq.Rank())
	if b.whiteAtBottom {
		row = Size - 1 - row
	}
	return Position{Row: row, Col: int(sq.File())}
}

func (b *Board) toNotnil() *notnil.Board {
	m := make(map[notnil.Square]notnil.Piece)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := b.squares[r][c]; p != nil {
				m[b.square(Position{Row: r, Col: c})] = toNotnil[p.color][p.kind]
			}
		}
	}
	return notnil.NewBoard(m)
}

// FEN returns the piece-placement field of the position in FEN.
func (b *Board) FEN() string {
	return b.toNotnil().String()
}

// Draw returns a text diagram of the board with white at the bottom.
func (b *Board) Draw() string {
	return b.toNotnil().Draw()
}

// LoadFEN builds a board from a full FEN string. Castling rights, en
// passant square and clocks are ignored.
func LoadFEN(fen string, whiteAtBottom bool) (*Board, error) {
	b, _, err := loadFEN(fen, whiteAtBottom)
	return b, err
}

// NewGameFromFEN starts a game from a FEN position with its side to move.
func NewGameFromFEN(fen string, isWhite bool) (*Game, error) {
	b, active, err := loadFEN(fen, isWhite)
	if err != nil {
		return nil, err
	}
	return NewGameFromBoard(b, active), nil
}

func loadFEN(fen string, whiteAtBottom bool) (*Board, Color, error) {
	opt, err := notnil.FEN(fen)
	if err != nil {
		return nil, White, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := notnil.NewGame(opt).Position()

	b := NewEmptyBoard(whiteAtBottom)
	for sq, p := range pos.Board().SquareMap() {
		kind, ok := fromNotnilType[p.Type()]
		if !ok {
			continue
		}
		color := White
		if p.Color() == notnil.Black {
			color = Black
		}
		at := b.position(sq)
		b.SetPiece(at.Row, at.Col, NewPiece(kind, color))
	}

	active := White
	if pos.Turn() == notnil.Black {
		active = Black
	}
	return b, active, nil
}
