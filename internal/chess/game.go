package chess

import "fmt"

// Game is the turn and selection state machine around a Board. It is not
// safe for concurrent use; one goroutine must own it.
type Game struct {
	board    *Board
	isWhite  bool
	active   Color
	state    State
	selected Position
	winner   Color
	history  []Move
}

// NewGame starts a game from the initial layout. isWhite selects the local
// viewpoint: white occupies the bottom rows when set.
func NewGame(isWhite bool) *Game {
	return &Game{
		board:   NewBoard(isWhite),
		isWhite: isWhite,
		active:  White,
	}
}

// NewGameFromBoard starts a game from an arbitrary position with active to
// move. The game takes ownership of b.
func NewGameFromBoard(b *Board, active Color) *Game {
	g := &Game{
		board:   b,
		isWhite: b.WhiteAtBottom(),
		active:  active,
	}
	if g.IsCheckmate(active) {
		g.state = GameOver
		g.winner = active.Opposite()
	}
	return g
}

// Board returns the live board. Callers must treat it as read-only.
func (g *Game) Board() *Board { return g.board }

func (g *Game) IsWhite() bool { return g.isWhite }

// Active returns the color whose turn it is.
func (g *Game) Active() Color { return g.active }

func (g *Game) State() State { return g.state }

func (g *Game) IsPieceSelected() bool { return g.state == PieceSelected }

// Selected returns the selected source square, if any.
func (g *Game) Selected() (Position, bool) {
	if g.state != PieceSelected {
		return Position{}, false
	}
	return g.selected, true
}

func (g *Game) Status() GameStatus {
	if g.state != GameOver {
		return StatusActive
	}
	if g.winner == White {
		return StatusWhiteWon
	}
	return StatusBlackWon
}

// History returns the accepted moves in order.
func (g *Game) History() []Move {
	out := make([]Move, len(g.history))
	copy(out, g.history)
	return out
}

// Reset discards the board and starts over with white to move.
func (g *Game) Reset() {
	*g = *NewGame(g.isWhite)
}

// HandleSquareSelection is the click entry point. It reports true only when
// the click completed a move.
func (g *Game) HandleSquareSelection(row, col int) bool {
	res, err := g.Select(row, col)
	return err == nil && res == ResultMoved
}

// Select drives the state machine with a click on (row, col) and reports
// what happened. Rejected input never changes the board.
func (g *Game) Select(row, col int) (Result, error) {
	pos, err := NewPosition(row, col)
	if err != nil {
		return ResultNone, err
	}

	switch g.state {
	case GameOver:
		return ResultNone, ErrGameOver

	case AwaitingSelection:
		if !g.ownsActivePiece(pos) {
			return ResultNone, g.selectionError(pos)
		}
		g.state, g.selected = PieceSelected, pos
		return ResultSelected, nil

	default:
		pc := g.board.At(g.selected)
		if pc == nil {
			g.state = AwaitingSelection
			return ResultDeselected, ErrNoPiece
		}
		moveErr := g.TryMove(NewMove(g.selected, pos, pc.Kind().String()))
		if moveErr == nil {
			return ResultMoved, nil
		}
		if g.ownsActivePiece(pos) {
			g.selected = pos
			return ResultReselected, moveErr
		}
		g.state = AwaitingSelection
		return ResultDeselected, moveErr
	}
}

// TryMove validates m for the active color and applies it. On success the
// turn passes to the other color and the game ends if that color is
// checkmated.
func (g *Game) TryMove(m Move) error {
	if err := g.validate(m); err != nil {
		return err
	}

	pc := g.board.At(m.From())
	m.PieceType = pc.Kind().String()
	g.board.MovePiece(m)
	g.history = append(g.history, m)

	g.active = g.active.Opposite()
	g.state = AwaitingSelection
	if g.IsCheckmate(g.active) {
		g.state = GameOver
		g.winner = g.active.Opposite()
	}
	return nil
}

// ApplyRemoteMove applies a move received from the opponent. The move goes
// through the same checks as a local one; its PieceType tag is ignored.
func (g *Game) ApplyRemoteMove(m Move) error {
	if err := g.TryMove(m); err != nil {
		return fmt.Errorf("remote move %s: %w", m, err)
	}
	return nil
}

// LegalMovesForPieceAt lists every square the piece at pos may move to by
// its movement rule. Squares that would expose the mover's king are
// included; see SafeMovesForPieceAt.
func (g *Game) LegalMovesForPieceAt(pos Position) []Position {
	if !pos.Valid() {
		return nil
	}
	pc := g.board.At(pos)
	if pc == nil {
		return nil
	}
	var out []Position
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			target := Position{Row: r, Col: c}
			if pc.ValidMove(target, g.board) {
				out = append(out, target)
			}
		}
	}
	return out
}

// SafeMovesForPieceAt is LegalMovesForPieceAt without the moves that leave
// the mover's own king in check.
func (g *Game) SafeMovesForPieceAt(pos Position) []Position {
	legal := g.LegalMovesForPieceAt(pos)
	if len(legal) == 0 {
		return nil
	}
	var out []Position
	for _, to := range legal {
		if !g.exposesKing(NewMove(pos, to, "")) {
			out = append(out, to)
		}
	}
	return out
}

// IsInCheck reports whether c's king is attacked. A side without a king is
// never in check.
func (g *Game) IsInCheck(c Color) bool {
	return inCheck(g.board, c)
}

// IsCheckmate reports whether c is in check and no move by any of c's
// pieces gets it out.
func (g *Game) IsCheckmate(c Color) bool {
	if !g.IsInCheck(c) {
		return false
	}
	for _, pc := range g.board.Pieces(c) {
		if len(g.SafeMovesForPieceAt(pc.Position())) > 0 {
			return false
		}
	}
	return true
}

func (g *Game) validate(m Move) error {
	if g.state == GameOver {
		return ErrGameOver
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %s", ErrOutOfRange, m)
	}
	pc := g.board.At(m.From())
	if pc == nil {
		return ErrNoPiece
	}
	if pc.Color() != g.active {
		return ErrNotYourTurn
	}
	if !pc.ValidMove(m.To(), g.board) {
		return ErrIllegalMove
	}
	if g.exposesKing(m) {
		return ErrLeavesKingInCheck
	}
	return nil
}

// exposesKing plays m on a scratch copy and reports whether the mover is in
// check afterwards.
func (g *Game) exposesKing(m Move) bool {
	pc := g.board.At(m.From())
	if pc == nil {
		return false
	}
	scratch := g.board.Clone()
	if !scratch.MovePiece(m) {
		return false
	}
	return inCheck(scratch, pc.Color())
}

func (g *Game) ownsActivePiece(pos Position) bool {
	pc := g.board.At(pos)
	return pc != nil && pc.Color() == g.active
}

func (g *Game) selectionError(pos Position) error {
	if g.board.At(pos) == nil {
		return ErrNoPiece
	}
	return ErrNotYourTurn
}

func inCheck(b *Board, c Color) bool {
	king, ok := b.FindKing(c)
	if !ok {
		return false
	}
	return b.IsAttacked(king, c.Opposite())
}
