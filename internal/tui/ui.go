package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/justinabrahms/lanchess/internal/chess"
	"github.com/justinabrahms/lanchess/internal/match"
	"github.com/rs/zerolog"
)

// Driver is the game the UI plays. match.Controller implements it.
type Driver interface {
	Select(row, col int) (chess.Result, error)
	Reset() error
	Snapshot() (chess.Snapshot, error)
	History() ([]chess.Move, error)
	SafeMoves(row, col int) ([]chess.Position, error)
}

// UI reads commands from in and draws to out. It also implements
// match.Publisher so opponent moves are drawn as they arrive.
type UI struct {
	driver  Driver
	in      io.Reader
	out     io.Writer
	player  string
	logger  zerolog.Logger
	updates chan match.Update
}

func New(driver Driver, in io.Reader, out io.Writer, player string, logger zerolog.Logger) *UI {
	return &UI{
		driver:  driver,
		in:      in,
		out:     out,
		player:  player,
		logger:  logger,
		updates: make(chan match.Update, 16),
	}
}

// Publish implements match.Publisher. Only changes made by the opponent
// are queued; local changes, resets included, are drawn by the command that
// caused them.
func (u *UI) Publish(up match.Update) {
	if up.Origin != match.OriginRemote && up.Origin != match.OriginRematch {
		return
	}
	select {
	case u.updates <- up:
	default:
		u.logger.Warn().Int("seq", up.Seq).Msg("UI update queue full, dropping update")
	}
}

// Run draws the board and processes input until quit, EOF on input or ctx
// cancellation.
func (u *UI) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(u.out, "Welcome, %s. Type \"help\" for commands.\n", u.player)
	if err := u.draw(nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case up := <-u.updates:
			if up.LastMove != nil {
				fmt.Fprintf(u.out, "Opponent played %s.\n", u.describe(*up.LastMove, up.Snapshot.WhiteAtBottom))
			} else if up.Origin == match.OriginRematch {
				fmt.Fprintln(u.out, "A new game has started.")
			}
			Render(u.out, up.Snapshot, nil)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			quit, err := u.handle(line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// handle runs one command. Only a failure to reach the driver is returned
// as an error; bad input is reported to the player.
func (u *UI) handle(line string) (bool, error) {
	snap, err := u.driver.Snapshot()
	if err != nil {
		return false, err
	}

	cmd, err := ParseCommand(line, snap.WhiteAtBottom)
	if err != nil {
		fmt.Fprintf(u.out, "%v. Type \"help\" for commands.\n", err)
		return false, nil
	}

	switch cmd.Kind {
	case CmdQuit:
		return true, nil

	case CmdHelp:
		fmt.Fprintln(u.out, helpText)

	case CmdBoard:
		return false, u.draw(nil)

	case CmdHistory:
		history, err := u.driver.History()
		if err != nil {
			return false, err
		}
		if len(history) == 0 {
			fmt.Fprintln(u.out, "No moves yet.")
		}
		for i, m := range history {
			fmt.Fprintf(u.out, "%3d. %s\n", i+1, u.describe(m, snap.WhiteAtBottom))
		}

	case CmdReset:
		if err := u.driver.Reset(); err != nil {
			if errors.Is(err, match.ErrGameInProgress) {
				fmt.Fprintln(u.out, "The game is still in progress.")
				return false, nil
			}
			return false, err
		}
		fmt.Fprintln(u.out, "New game.")
		return false, u.draw(nil)

	case CmdMoves:
		from := cmd.Square
		if !cmd.HasSquare {
			if snap.Selected == nil {
				fmt.Fprintln(u.out, "Select a piece first, or name a square.")
				return false, nil
			}
			from = *snap.Selected
		}
		targets, err := u.driver.SafeMoves(from.Row, from.Col)
		if err != nil {
			return false, err
		}
		if len(targets) == 0 {
			fmt.Fprintf(u.out, "No moves from %s.\n", SquareName(from, snap.WhiteAtBottom))
			return false, nil
		}
		return false, u.draw(targets)

	case CmdSelect:
		return false, u.selectSquare(cmd.Square)
	}
	return false, nil
}

func (u *UI) selectSquare(sq chess.Position) error {
	res, err := u.driver.Select(sq.Row, sq.Col)
	if isStopped(err) {
		return err
	}

	switch {
	case errors.Is(err, match.ErrOpponentsTurn):
		fmt.Fprintln(u.out, "Waiting for your opponent to move.")
		return nil
	case errors.Is(err, match.ErrDisconnected):
		fmt.Fprintln(u.out, "Your opponent has disconnected.")
		return nil
	case errors.Is(err, chess.ErrGameOver):
		fmt.Fprintln(u.out, "The game is over. Type \"reset\" for a new one.")
		return nil
	}

	switch res {
	case chess.ResultSelected, chess.ResultReselected:
		targets, qerr := u.driver.SafeMoves(sq.Row, sq.Col)
		if qerr != nil {
			return qerr
		}
		return u.draw(targets)
	case chess.ResultMoved:
		if err != nil {
			fmt.Fprintf(u.out, "Move played locally but not delivered: %v\n", err)
		}
		return u.draw(nil)
	case chess.ResultDeselected:
		fmt.Fprintf(u.out, "Not a legal move (%v).\n", err)
		return u.draw(nil)
	default:
		if err != nil {
			fmt.Fprintf(u.out, "Cannot select %s: %v.\n", sqLabel(sq), err)
		}
		return nil
	}
}

func (u *UI) draw(highlights []chess.Position) error {
	snap, err := u.driver.Snapshot()
	if err != nil {
		return err
	}
	Render(u.out, snap, highlights)
	return nil
}

func (u *UI) describe(m chess.Move, whiteAtBottom bool) string {
	return fmt.Sprintf("%s %s-%s", strings.ToLower(m.PieceType),
		SquareName(m.From(), whiteAtBottom), SquareName(m.To(), whiteAtBottom))
}

func sqLabel(p chess.Position) string {
	return fmt.Sprintf("%d %d", p.Row, p.Col)
}

func isStopped(err error) bool {
	return errors.Is(err, match.ErrStopped)
}
