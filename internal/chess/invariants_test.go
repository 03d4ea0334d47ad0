package chess

import (
	"encoding/json"
	"testing"
)

// TestMoveJSONSerializationAlwaysIncludesRequiredFields ensures that Move
// always serializes with the field names the peer expects on the wire.
func TestMoveJSONSerializationAlwaysIncludesRequiredFields(t *testing.T) {
	move := Move{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4, PieceType: "PAWN"}

	jsonData, err := json.Marshal(move)
	if err != nil {
		t.Fatalf("Failed to marshal Move: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	expectedFields := []string{"fromRow", "fromCol", "toRow", "toCol", "pieceType"}
	for _, field := range expectedFields {
		if _, exists := parsed[field]; !exists {
			t.Errorf("Missing field in JSON: %s", field)
		}
	}
	if parsed["pieceType"] != "PAWN" {
		t.Errorf("Expected pieceType=PAWN, got %v", parsed["pieceType"])
	}

	var back Move
	if err := json.Unmarshal(jsonData, &back); err != nil {
		t.Fatalf("Failed to decode Move: %v", err)
	}
	if back != move {
		t.Errorf("Round trip changed move: got %+v, want %+v", back, move)
	}
}

// TestNoPieceMayMoveToItsOwnSquare checks every variant on every square of
// an otherwise empty board.
func TestNoPieceMayMoveToItsOwnSquare(t *testing.T) {
	kinds := []Kind{Pawn, Rook, Knight, Bishop, Queen, King}
	for _, kind := range kinds {
		for _, color := range []Color{White, Black} {
			for r := 0; r < Size; r++ {
				for c := 0; c < Size; c++ {
					b := NewEmptyBoard(true)
					p := NewPiece(kind, color)
					b.SetPiece(r, c, p)
					if p.ValidMove(Position{Row: r, Col: c}, b) {
						t.Errorf("%s %s at (%d,%d) may move to its own square", color, kind, r, c)
					}
				}
			}
		}
	}
}

// TestNoPieceMayCaptureItsOwnColor places a friendly piece on every square a
// piece could otherwise reach and checks the move is refused.
func TestNoPieceMayCaptureItsOwnColor(t *testing.T) {
	for _, kind := range []Kind{Rook, Knight, Bishop, Queen, King} {
		empty := NewEmptyBoard(true)
		p := NewPiece(kind, White)
		empty.SetPiece(3, 3, p)

		g := NewGameFromBoard(empty, White)
		for _, target := range g.LegalMovesForPieceAt(Position{Row: 3, Col: 3}) {
			b := empty.Clone()
			b.SetPiece(target.Row, target.Col, NewPiece(Pawn, White))
			if b.Piece(3, 3).ValidMove(target, b) {
				t.Errorf("%s may capture its own color at %s", kind, target)
			}
		}
	}
}

// TestPositionsStayInSyncAfterMoves verifies that every occupied square
// holds a piece whose recorded position is that square, through a short
// game that includes captures.
func TestPositionsStayInSyncAfterMoves(t *testing.T) {
	g := NewGame(true)
	moves := []Move{
		{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4},
		{FromRow: 1, FromCol: 3, ToRow: 3, ToCol: 3},
		{FromRow: 4, FromCol: 4, ToRow: 3, ToCol: 3},
		{FromRow: 0, FromCol: 3, ToRow: 3, ToCol: 3},
		{FromRow: 7, FromCol: 1, ToRow: 5, ToCol: 2},
		{FromRow: 3, FromCol: 3, ToRow: 6, ToCol: 3},
	}
	for i, m := range moves {
		if err := g.TryMove(m); err != nil {
			t.Fatalf("move %d (%v) rejected: %v", i, m, err)
		}
		assertPositionsInSync(t, g.Board())
	}
}

func assertPositionsInSync(t *testing.T, b *Board) {
	t.Helper()
	count := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.Piece(r, c)
			if p == nil {
				continue
			}
			count++
			if got := p.Position(); got != (Position{Row: r, Col: c}) {
				t.Errorf("piece on (%d,%d) records position %s", r, c, got)
			}
		}
	}
	if n := len(b.Pieces(White)) + len(b.Pieces(Black)); n != count {
		t.Errorf("Pieces reports %d pieces, board holds %d", n, count)
	}
}

// TestMirrorIsAnInvolution ensures that converting a move between
// orientations twice gives back the original.
func TestMirrorIsAnInvolution(t *testing.T) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			m := Move{FromRow: r, FromCol: c, ToRow: Size - 1 - c, ToCol: r, PieceType: "ROOK"}
			if got := m.Mirror().Mirror(); got != m {
				t.Errorf("Mirror twice: got %+v, want %+v", got, m)
			}
			if !m.Mirror().Valid() {
				t.Errorf("Mirror of %v left the board", m)
			}
		}
	}
}

// TestMirroredGamesAgree plays the same moves on a white-at-bottom game
// and a black-at-bottom game and checks both report the same position.
func TestMirroredGamesAgree(t *testing.T) {
	white := NewGame(true)
	black := NewGame(false)
	moves := []Move{
		{FromRow: 6, FromCol: 4, ToRow: 4, ToCol: 4},
		{FromRow: 1, FromCol: 4, ToRow: 3, ToCol: 4},
		{FromRow: 7, FromCol: 6, ToRow: 5, ToCol: 5},
		{FromRow: 0, FromCol: 1, ToRow: 2, ToCol: 2},
	}
	for _, m := range moves {
		if err := white.TryMove(m); err != nil {
			t.Fatalf("white view rejected %v: %v", m, err)
		}
		if err := black.ApplyRemoteMove(m.Mirror()); err != nil {
			t.Fatalf("black view rejected %v: %v", m.Mirror(), err)
		}
		if white.Board().FEN() != black.Board().FEN() {
			t.Fatalf("views diverged after %v: %s vs %s", m, white.Board().FEN(), black.Board().FEN())
		}
	}
}
