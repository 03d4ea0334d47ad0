package chess

import "strings"

// Piece is one of the six chess variants. A piece knows its color and the
// square that currently holds it; it never holds a reference to the board.
type Piece struct {
	kind  Kind
	color Color
	pos   Position
}

// NewPiece returns an unplaced piece. Its position is set when a Board
// places it.
func NewPiece(kind Kind, color Color) *Piece {
	return &Piece{kind: kind, color: color}
}

func (p *Piece) Kind() Kind { return p.kind }

func (p *Piece) Color() Color { return p.color }

func (p *Piece) Position() Position { return p.pos }

// Symbol returns the FEN letter of the piece, upper case for white.
func (p *Piece) Symbol() string {
	var s string
	switch p.kind {
	case Pawn:
		s = "p"
	case Rook:
		s = "r"
	case Knight:
		s = "n"
	case Bishop:
		s = "b"
	case Queen:
		s = "q"
	case King:
		s = "k"
	default:
		return "?"
	}
	if p.color == White {
		return strings.ToUpper(s)
	}
	return s
}

// ValidMove reports whether the piece's movement rule allows a move to
// target on b. It only looks at occupancy and colors: whose turn it is and
// whether the mover's king ends up in check are decided by Game.
func (p *Piece) ValidMove(target Position, b *Board) bool {
	if !target.Valid() || target == p.pos {
		return false
	}
	if dst := b.At(target); dst != nil && dst.color == p.color {
		return false
	}

	dr, dc := p.pos.Delta(target)
	switch p.kind {
	case Rook:
		return isStraight(dr, dc) && b.pathClear(p.pos, target)
	case Bishop:
		return isDiagonal(dr, dc) && b.pathClear(p.pos, target)
	case Queen:
		return (isStraight(dr, dc) || isDiagonal(dr, dc)) && b.pathClear(p.pos, target)
	case Knight:
		return (abs(dr) == 1 && abs(dc) == 2) || (abs(dr) == 2 && abs(dc) == 1)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	case Pawn:
		return p.validPawnMove(target, dr, dc, b)
	}
	return false
}

func (p *Piece) validPawnMove(target Position, dr, dc int, b *Board) bool {
	dir := b.Forward(p.color)
	switch {
	case dc == 0 && dr == dir:
		return b.At(target) == nil
	case dc == 0 && dr == 2*dir:
		if p.pos.Row != b.PawnStartRow(p.color) {
			return false
		}
		mid := Position{Row: p.pos.Row + dir, Col: p.pos.Col}
		return b.At(mid) == nil && b.At(target) == nil
	case abs(dc) == 1 && dr == dir:
		// Diagonal steps are captures only; the same-color case was
		// rejected above.
		return b.At(target) != nil
	}
	return false
}

func isStraight(dr, dc int) bool {
	return (dr == 0) != (dc == 0)
}

func isDiagonal(dr, dc int) bool {
	return dr != 0 && abs(dr) == abs(dc)
}
