package chess

import "fmt"

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board is the 8x8 grid. Each square exclusively owns its occupant, and a
// piece's stored position always matches the square holding it.
type Board struct {
	squares       [Size][Size]*Piece
	whiteAtBottom bool
}

// NewBoard returns a board with the standard starting layout. When
// whiteAtBottom is set white occupies rows 6 and 7.
func NewBoard(whiteAtBottom bool) *Board {
	b := &Board{}
	b.SetupPieces(whiteAtBottom)
	return b
}

// NewEmptyBoard returns a board with no pieces and the given orientation.
func NewEmptyBoard(whiteAtBottom bool) *Board {
	return &Board{whiteAtBottom: whiteAtBottom}
}

func (b *Board) WhiteAtBottom() bool { return b.whiteAtBottom }

// Piece returns the occupant of (row, col), or nil. Coordinates outside the
// board are a programming error.
func (b *Board) Piece(row, col int) *Piece {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		panic(fmt.Sprintf("chess: square (%d,%d) out of range", row, col))
	}
	return b.squares[row][col]
}

func (b *Board) At(p Position) *Piece {
	return b.Piece(p.Row, p.Col)
}

// SetPiece places piece at (row, col), replacing any occupant, or clears the
// square when piece is nil. A piece already on another square of this board
// is lifted from it first.
func (b *Board) SetPiece(row, col int, piece *Piece) {
	target := Position{Row: row, Col: col}
	if !target.Valid() {
		panic(fmt.Sprintf("chess: square (%d,%d) out of range", row, col))
	}
	if piece != nil && piece.pos.Valid() && piece.pos != target && b.At(piece.pos) == piece {
		b.squares[piece.pos.Row][piece.pos.Col] = nil
	}
	b.squares[row][col] = piece
	if piece != nil {
		piece.pos = target
	}
}

// SetupPieces clears the board and lays out both armies.
func (b *Board) SetupPieces(whiteAtBottom bool) {
	b.squares = [Size][Size]*Piece{}
	b.whiteAtBottom = whiteAtBottom

	top, bottom := Black, White
	if !whiteAtBottom {
		top, bottom = White, Black
	}
	for col, kind := range backRank {
		b.SetPiece(0, col, NewPiece(kind, top))
		b.SetPiece(1, col, NewPiece(Pawn, top))
		b.SetPiece(Size-2, col, NewPiece(Pawn, bottom))
		b.SetPiece(Size-1, col, NewPiece(kind, bottom))
	}
}

// MovePiece applies m if the source holds a piece whose movement rule
// accepts the destination. Anything on the destination is captured. It
// does not check turn order or king safety. The return value reports
// whether the board changed.
func (b *Board) MovePiece(m Move) bool {
	if !m.Valid() {
		return false
	}
	from, to := m.From(), m.To()
	pc := b.At(from)
	if pc == nil || !pc.ValidMove(to, b) {
		return false
	}
	b.squares[from.Row][from.Col] = nil
	b.squares[to.Row][to.Col] = pc
	pc.pos = to
	return true
}

// Forward returns the row step a pawn of color c advances by.
func (b *Board) Forward(c Color) int {
	if (c == White) == b.whiteAtBottom {
		return -1
	}
	return 1
}

// PawnStartRow returns the row pawns of color c start on.
func (b *Board) PawnStartRow(c Color) int {
	if b.Forward(c) < 0 {
		return Size - 2
	}
	return 1
}

// Clone returns a deep copy. Pieces are copied so the clone can be mutated
// without touching the original.
func (b *Board) Clone() *Board {
	c := &Board{whiteAtBottom: b.whiteAtBottom}
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if p := b.squares[r][col]; p != nil {
				cp := *p
				c.squares[r][col] = &cp
			}
		}
	}
	return c
}

// Pieces returns every piece of color c in row-major order.
func (b *Board) Pieces(c Color) []*Piece {
	var out []*Piece
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if p := b.squares[r][col]; p != nil && p.color == c {
				out = append(out, p)
			}
		}
	}
	return out
}

// FindKing returns the square of c's king.
func (b *Board) FindKing(c Color) (Position, bool) {
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if p := b.squares[r][col]; p != nil && p.color == c && p.kind == King {
				return p.pos, true
			}
		}
	}
	return Position{}, false
}

// IsAttacked reports whether any piece of color by can move to pos.
func (b *Board) IsAttacked(pos Position, by Color) bool {
	for _, p := range b.Pieces(by) {
		if p.ValidMove(pos, b) {
			return true
		}
	}
	return false
}

// Material returns the summed piece values of both sides.
func (b *Board) Material() MaterialCount {
	var mc MaterialCount
	for _, p := range b.Pieces(White) {
		mc.White += StandardPieceValues[p.kind]
	}
	for _, p := range b.Pieces(Black) {
		mc.Black += StandardPieceValues[p.kind]
	}
	return mc
}

// pathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, a column or a diagonal.
func (b *Board) pathClear(from, to Position) bool {
	dr, dc := from.Delta(to)
	stepR, stepC := sign(dr), sign(dc)
	r, c := from.Row+stepR, from.Col+stepC
	for r != to.Row || c != to.Col {
		if b.squares[r][c] != nil {
			return false
		}
		r += stepR
		c += stepC
	}
	return true
}
