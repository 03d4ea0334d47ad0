package chess

import "fmt"

// Position is a (row, column) coordinate on the board. Row 0 is the top
// row as seen from the local viewpoint.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewPosition returns the position or ErrOutOfRange.
func NewPosition(row, col int) (Position, error) {
	p := Position{Row: row, Col: col}
	if !p.Valid() {
		return Position{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfRange, row, col)
	}
	return p, nil
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Delta returns the row and column offsets from p to to.
func (p Position) Delta(to Position) (dr, dc int) {
	return to.Row - p.Row, to.Col - p.Col
}

// Mirror returns the same square as seen from the opposite side of the
// board. Columns keep their file, so only the row flips.
func (p Position) Mirror() Position {
	return Position{Row: Size - 1 - p.Row, Col: p.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
