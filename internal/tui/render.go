// Package tui is a line-mode terminal front end: it draws the board after
// every change and reads square selections from the keyboard.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/justinabrahms/lanchess/internal/chess"
)

var glyphs = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

var (
	lightSquare    = color.New(color.BgHiWhite, color.FgBlack)
	darkSquare     = color.New(color.BgGreen, color.FgBlack)
	selectedSquare = color.New(color.BgYellow, color.FgBlack)
	targetSquare   = color.New(color.BgCyan, color.FgBlack)
	labelStyle     = color.New(color.Faint)
	checkStyle     = color.New(color.FgRed, color.Bold)
	overStyle      = color.New(color.FgMagenta, color.Bold)
)

// Render writes the board with row and column indices on the top and left
// edges and ranks and files on the right and bottom. The selected square
// and highlighted targets are coloured.
func Render(w io.Writer, snap chess.Snapshot, highlights []chess.Position) {
	targets := make(map[chess.Position]bool, len(highlights))
	for _, p := range highlights {
		targets[p] = true
	}

	var b strings.Builder
	b.WriteString("   ")
	for c := 0; c < chess.Size; c++ {
		b.WriteString(labelStyle.Sprintf(" %d ", c))
	}
	b.WriteString("\n")

	for r := 0; r < chess.Size; r++ {
		b.WriteString(labelStyle.Sprintf(" %d ", r))
		for c := 0; c < chess.Size; c++ {
			pos := chess.Position{Row: r, Col: c}
			style := lightSquare
			switch {
			case snap.Selected != nil && *snap.Selected == pos:
				style = selectedSquare
			case targets[pos]:
				style = targetSquare
			case (r+c)%2 == 1:
				style = darkSquare
			}
			b.WriteString(style.Sprintf(" %s ", glyph(snap.Squares[r][c])))
		}
		b.WriteString(labelStyle.Sprintf(" %d\n", rankOf(r, snap.WhiteAtBottom)))
	}

	b.WriteString("   ")
	for c := 0; c < chess.Size; c++ {
		b.WriteString(labelStyle.Sprintf(" %c ", 'a'+c))
	}
	b.WriteString("\n")
	b.WriteString(StatusLine(snap))
	b.WriteString("\n")

	fmt.Fprint(w, b.String())
}

// StatusLine summarises whose turn it is and whether the game is decided.
func StatusLine(snap chess.Snapshot) string {
	switch snap.Status {
	case chess.StatusWhiteWon:
		return overStyle.Sprint("Checkmate. White wins.")
	case chess.StatusBlackWon:
		return overStyle.Sprint("Checkmate. Black wins.")
	}
	line := fmt.Sprintf("%s to move (move %d, material %d-%d)",
		capitalize(snap.Active), snap.MoveCount+1, snap.Material.White, snap.Material.Black)
	if snap.Check {
		line += " " + checkStyle.Sprint("CHECK")
	}
	return line
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func glyph(symbol string) string {
	if g, ok := glyphs[symbol]; ok {
		return g
	}
	return " "
}

// rankOf returns the chess rank shown beside a row.
func rankOf(row int, whiteAtBottom bool) int {
	if whiteAtBottom {
		return chess.Size - row
	}
	return row + 1
}
