package chess

// Snapshot is a read-only, JSON friendly view of a game for renderers and
// spectators.
type Snapshot struct {
	Squares       [Size][Size]string `json:"squares"`
	Active        string             `json:"active"`
	State         string             `json:"state"`
	Status        GameStatus         `json:"status"`
	Check         bool               `json:"check"`
	Selected      *Position          `json:"selected,omitempty"`
	WhiteAtBottom bool               `json:"whiteAtBottom"`
	FEN           string             `json:"fen"`
	MoveCount     int                `json:"moveCount"`
	Material      MaterialCount      `json:"material"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Active:        g.active.String(),
		State:         g.state.String(),
		Status:        g.Status(),
		Check:         g.IsInCheck(g.active),
		WhiteAtBottom: g.board.WhiteAtBottom(),
		FEN:           g.board.FEN(),
		MoveCount:     len(g.history),
		Material:      g.board.Material(),
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := g.board.Piece(r, c); p != nil {
				s.Squares[r][c] = p.Symbol()
			}
		}
	}
	if sel, ok := g.Selected(); ok {
		s.Selected = &sel
	}
	return s
}
