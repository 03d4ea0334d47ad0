package chess

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// play applies a sequence of {fromRow, fromCol, toRow, toCol} moves through
// TryMove and fails the test on the first rejection.
func play(t *testing.T, g *Game, moves ...[4]int) {
	t.Helper()
	for _, m := range moves {
		err := g.TryMove(Move{FromRow: m[0], FromCol: m[1], ToRow: m[2], ToCol: m[3]})
		require.NoError(t, err, "move %v", m)
	}
}

func TestNewGame(t *testing.T) {
	for _, isWhite := range []bool{true, false} {
		g := NewGame(isWhite)
		assert.Equal(t, isWhite, g.IsWhite())
		assert.Equal(t, isWhite, g.Board().WhiteAtBottom())
		assert.Equal(t, White, g.Active())
		assert.Equal(t, AwaitingSelection, g.State())
		assert.False(t, g.IsPieceSelected())
		assert.Equal(t, StatusActive, g.Status())
		assert.Empty(t, g.History())
	}
}

func TestSelectStateMachine(t *testing.T) {
	g := NewGame(true)

	res, err := g.Select(4, 4)
	assert.ErrorIs(t, err, ErrNoPiece)
	assert.Equal(t, ResultNone, res)
	assert.Equal(t, AwaitingSelection, g.State())

	res, err = g.Select(1, 4)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, ResultNone, res)
	assert.Equal(t, AwaitingSelection, g.State())

	res, err = g.Select(6, 4)
	require.NoError(t, err)
	assert.Equal(t, ResultSelected, res)
	sel, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, pos(6, 4), sel)

	// Clicking another own piece swaps the selection.
	res, err = g.Select(6, 3)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, ResultReselected, res)
	sel, _ = g.Selected()
	assert.Equal(t, pos(6, 3), sel)

	// Clicking the selected square again keeps it selected.
	res, _ = g.Select(6, 3)
	assert.Equal(t, ResultReselected, res)
	assert.True(t, g.IsPieceSelected())

	// An illegal empty target clears the selection.
	res, err = g.Select(3, 3)
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Equal(t, ResultDeselected, res)
	assert.Equal(t, AwaitingSelection, g.State())
	_, ok = g.Selected()
	assert.False(t, ok)

	require.NoError(t, selectBoth(g, 6, 4, 4, 4))
	assert.Equal(t, Black, g.Active())
	assert.Equal(t, AwaitingSelection, g.State())
	assert.Nil(t, g.Board().Piece(6, 4))
	require.NotNil(t, g.Board().Piece(4, 4))

	history := g.History()
	require.Len(t, history, 1)
	assert.Equal(t, Move{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4, PieceType: "PAWN"}, history[0])
}

func selectBoth(g *Game, fr, fc, tr, tc int) error {
	if _, err := g.Select(fr, fc); err != nil {
		return err
	}
	res, err := g.Select(tr, tc)
	if err != nil {
		return err
	}
	if res != ResultMoved {
		return errors.New("selection did not move: " + res.String())
	}
	return nil
}

func TestSelectOutOfRangeKeepsState(t *testing.T) {
	g := NewGame(true)
	_, err := g.Select(6, 0)
	require.NoError(t, err)

	res, err := g.Select(8, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, ResultNone, res)
	sel, ok := g.Selected()
	assert.True(t, ok)
	assert.Equal(t, pos(6, 0), sel)
}

func TestHandleSquareSelection(t *testing.T) {
	g := NewGame(true)
	assert.False(t, g.HandleSquareSelection(6, 1), "selection only")
	assert.False(t, g.HandleSquareSelection(2, 1), "illegal target")
	assert.False(t, g.HandleSquareSelection(7, 1), "select knight")
	assert.True(t, g.HandleSquareSelection(5, 2), "knight jumps")
	assert.Equal(t, Black, g.Active())
}

func TestTryMoveRejectionLeavesGameUnchanged(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want error
	}{
		{"out of range", Move{FromRow: 6, FromCol: 4, ToRow: -1, ToCol: 4}, ErrOutOfRange},
		{"empty source", Move{FromRow: 4, FromCol: 4, ToRow: 3, ToCol: 4}, ErrNoPiece},
		{"opponent piece", Move{FromRow: 1, FromCol: 4, ToRow: 3, ToCol: 4}, ErrNotYourTurn},
		{"illegal geometry", Move{FromRow: 7, FromCol: 0, ToRow: 5, ToCol: 0}, ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame(true)
			before := g.Snapshot()
			err := g.TryMove(tt.move)
			assert.ErrorIs(t, err, tt.want)
			if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
				t.Errorf("game changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestMoveThatExposesKingIsRejected(t *testing.T) {
	b := NewEmptyBoard(true)
	place(b, King, White, 7, 4)
	place(b, Rook, White, 6, 4)
	place(b, Rook, Black, 0, 4)
	place(b, King, Black, 0, 0)
	g := NewGameFromBoard(b, White)

	assert.Contains(t, g.LegalMovesForPieceAt(pos(6, 4)), pos(6, 0))
	safe := g.SafeMovesForPieceAt(pos(6, 4))
	assert.NotContains(t, safe, pos(6, 0))
	assert.Contains(t, safe, pos(3, 4))
	assert.Contains(t, safe, pos(0, 4), "capturing the pinning rook is fine")

	err := g.TryMove(Move{FromRow: 6, FromCol: 4, ToRow: 6, ToCol: 0})
	assert.ErrorIs(t, err, ErrLeavesKingInCheck)
	assert.Equal(t, White, g.Active())
	assert.NotNil(t, g.Board().Piece(6, 4))

	require.NoError(t, g.TryMove(Move{FromRow: 6, FromCol: 4, ToRow: 3, ToCol: 4}))
	assert.Equal(t, Black, g.Active())
}

func TestRookGivesCheck(t *testing.T) {
	b := NewEmptyBoard(true)
	place(b, King, White, 7, 4)
	place(b, Rook, Black, 7, 0)
	place(b, King, Black, 0, 4)
	g := NewGameFromBoard(b, White)

	assert.True(t, g.IsInCheck(White))
	assert.False(t, g.IsInCheck(Black))
	assert.False(t, g.IsCheckmate(White), "the king can step off the rank")
	assert.Equal(t, AwaitingSelection, g.State())

	place(b, Bishop, White, 7, 2)
	assert.False(t, g.IsInCheck(White))
}

func TestCheckEscapedByCapture(t *testing.T) {
	b := NewEmptyBoard(true)
	place(b, King, White, 7, 7)
	place(b, Pawn, White, 6, 6)
	place(b, Pawn, White, 6, 7)
	place(b, Rook, White, 3, 0)
	place(b, Rook, Black, 7, 0)
	place(b, King, Black, 0, 4)
	g := NewGameFromBoard(b, White)

	assert.True(t, g.IsInCheck(White))
	assert.False(t, g.IsCheckmate(White))
	assert.Equal(t, []Position{pos(7, 0)}, g.SafeMovesForPieceAt(pos(3, 0)))
}

func TestBackRankMate(t *testing.T) {
	b := NewEmptyBoard(true)
	place(b, King, White, 7, 7)
	place(b, Pawn, White, 6, 5)
	place(b, Pawn, White, 6, 6)
	place(b, Pawn, White, 6, 7)
	place(b, Rook, Black, 7, 0)
	place(b, King, Black, 0, 4)
	g := NewGameFromBoard(b, White)

	assert.True(t, g.IsCheckmate(White))
	assert.Equal(t, GameOver, g.State())
	assert.Equal(t, StatusBlackWon, g.Status())
}

func TestFoolsMate(t *testing.T) {
	g := NewGame(true)
	play(t, g,
		[4]int{6, 5, 5, 5}, // f3
		[4]int{1, 4, 3, 4}, // e5
		[4]int{6, 6, 4, 6}, // g4
	)
	assert.Equal(t, StatusActive, g.Status())

	require.NoError(t, selectBoth(g, 0, 3, 4, 7)) // Qh4#
	assert.True(t, g.IsInCheck(White))
	assert.True(t, g.IsCheckmate(White))
	assert.Equal(t, GameOver, g.State())
	assert.Equal(t, StatusBlackWon, g.Status())

	_, err := g.Select(6, 0)
	assert.ErrorIs(t, err, ErrGameOver)
	assert.ErrorIs(t, g.TryMove(Move{FromRow: 6, FromCol: 0, ToRow: 5, ToCol: 0}), ErrGameOver)
	assert.False(t, g.HandleSquareSelection(6, 0))

	g.Reset()
	assert.Equal(t, AwaitingSelection, g.State())
	assert.Equal(t, White, g.Active())
	assert.Empty(t, g.History())
	assert.Equal(t, NewGame(true).Board().FEN(), g.Board().FEN())
	assert.True(t, g.IsWhite())
}

func TestApplyRemoteMove(t *testing.T) {
	g := NewGame(false)

	// The tag is advisory; the board decides what moved.
	err := g.ApplyRemoteMove(Move{FromRow: 1, FromCol: 4, ToRow: 3, ToCol: 4, PieceType: "QUEEN"})
	require.NoError(t, err)
	assert.Equal(t, Black, g.Active())
	assert.Equal(t, "PAWN", g.History()[0].PieceType)

	err = g.ApplyRemoteMove(Move{FromRow: 1, FromCol: 3, ToRow: 3, ToCol: 3, PieceType: "PAWN"})
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Contains(t, err.Error(), "remote move")
	assert.Equal(t, Black, g.Active())
}

func TestSafeMovesForEmptyOrInvalidSquare(t *testing.T) {
	g := NewGame(true)
	assert.Nil(t, g.LegalMovesForPieceAt(pos(4, 4)))
	assert.Nil(t, g.SafeMovesForPieceAt(pos(4, 4)))
	assert.Nil(t, g.LegalMovesForPieceAt(pos(9, 9)))
	assert.ElementsMatch(t, []Position{pos(5, 0), pos(5, 2)}, g.SafeMovesForPieceAt(pos(7, 1)))
}

func TestHistoryIsACopy(t *testing.T) {
	g := NewGame(true)
	play(t, g, [4]int{6, 0, 5, 0})
	h := g.History()
	h[0].ToRow = 0
	assert.Equal(t, 5, g.History()[0].ToRow)
}

func TestSnapshot(t *testing.T) {
	g := NewGame(true)
	_, err := g.Select(6, 4)
	require.NoError(t, err)

	s := g.Snapshot()
	assert.Equal(t, "white", s.Active)
	assert.Equal(t, "piece_selected", s.State)
	assert.Equal(t, StatusActive, s.Status)
	assert.False(t, s.Check)
	require.NotNil(t, s.Selected)
	assert.Equal(t, pos(6, 4), *s.Selected)
	assert.True(t, s.WhiteAtBottom)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", s.FEN)
	assert.Equal(t, 0, s.MoveCount)
	assert.Equal(t, "K", s.Squares[7][4])
	assert.Equal(t, "p", s.Squares[1][0])
	assert.Equal(t, "", s.Squares[4][4])
}
