package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/justinabrahms/lanchess/internal/chess"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandKind int

const (
	CmdSelect CommandKind = iota
	CmdMoves
	CmdHistory
	CmdBoard
	CmdReset
	CmdHelp
	CmdQuit
)

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	// Square is set for CmdSelect, and for CmdMoves when a square was given.
	Square    chess.Position
	HasSquare bool
}

const helpText = `Commands:
  <row> <col>   select a square by index, e.g. "6 4"
  <square>      select a square by name, e.g. "e2"
  moves [sq]    highlight where the selected (or named) piece can go
  history       list the moves played so far
  board         redraw the board
  reset         start a new game
  help          show this text
  quit          leave the game`

// ParseCommand interprets a line typed by the player. Square names are
// resolved against the board orientation.
func ParseCommand(line string, whiteAtBottom bool) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(line, ",", " ")))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}

	switch fields[0] {
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "reset", "new":
		return Command{Kind: CmdReset}, nil
	case "board", "b":
		return Command{Kind: CmdBoard}, nil
	case "history":
		return Command{Kind: CmdHistory}, nil
	case "moves", "m":
		cmd := Command{Kind: CmdMoves}
		if len(fields) > 1 {
			sq, err := parseSquare(fields[1:], whiteAtBottom)
			if err != nil {
				return Command{}, err
			}
			cmd.Square, cmd.HasSquare = sq, true
		}
		return cmd, nil
	}

	sq, err := parseSquare(fields, whiteAtBottom)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdSelect, Square: sq, HasSquare: true}, nil
}

func parseSquare(fields []string, whiteAtBottom bool) (chess.Position, error) {
	switch len(fields) {
	case 1:
		return SquareByName(fields[0], whiteAtBottom)
	case 2:
		row, rerr := strconv.Atoi(fields[0])
		col, cerr := strconv.Atoi(fields[1])
		if rerr != nil || cerr != nil {
			return chess.Position{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.Join(fields, " "))
		}
		return chess.NewPosition(row, col)
	default:
		return chess.Position{}, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.Join(fields, " "))
	}
}

// SquareByName converts a square such as "e2" to a board position.
func SquareByName(name string, whiteAtBottom bool) (chess.Position, error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return chess.Position{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	col := int(name[0] - 'a')
	rank := int(name[1] - '0')
	row := rank - 1
	if whiteAtBottom {
		row = chess.Size - rank
	}
	return chess.Position{Row: row, Col: col}, nil
}

// SquareName is the inverse of SquareByName.
func SquareName(p chess.Position, whiteAtBottom bool) string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, rankOf(p.Row, whiteAtBottom))
}
