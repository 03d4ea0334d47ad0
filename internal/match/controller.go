// Package match runs one game between a local player and either a remote
// opponent or a second player at the same keyboard.
package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/justinabrahms/lanchess/internal/chess"
	"github.com/rs/zerolog"
)

var (
	ErrOpponentsTurn  = errors.New("waiting for opponent")
	ErrGameInProgress = errors.New("game in progress")
	ErrDisconnected   = errors.New("opponent disconnected")
	ErrStopped        = errors.New("controller stopped")
)

// Link is the connection to the opponent. Moves on the link use the
// white-at-bottom orientation.
type Link interface {
	Send(chess.Move) error
	Inbound() <-chan chess.Move
}

// Controller owns a Game. All access goes through Run's goroutine, so
// local clicks and opponent moves are applied one at a time in arrival
// order.
type Controller struct {
	id         string
	game       *chess.Game
	link       Link
	logger     zerolog.Logger
	publishers []Publisher
	isWhite    bool

	requests     chan func()
	done         chan struct{}
	seq          int
	disconnected bool
}

type Option func(*Controller)

// WithLink plays against a remote opponent. Without a link both colors
// are driven locally.
func WithLink(link Link) Option {
	return func(c *Controller) {
		c.link = link
	}
}

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		c.publishers = append(c.publishers, p)
	}
}

// WithGame starts from an existing game instead of the initial position.
func WithGame(g *chess.Game) Option {
	return func(c *Controller) {
		c.game = g
	}
}

func WithMatchID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// New creates a controller for a player seated at isWhite.
func New(isWhite bool, opts ...Option) *Controller {
	c := &Controller{
		id:       uuid.NewString(),
		logger:   zerolog.Nop(),
		requests: make(chan func()),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.game == nil {
		c.game = chess.NewGame(isWhite)
	}
	c.isWhite = c.game.IsWhite()
	c.logger = c.logger.With().Str("match", c.id).Logger()
	return c
}

func (c *Controller) ID() string { return c.id }

// Networked reports whether an opponent link is attached.
func (c *Controller) Networked() bool { return c.link != nil }

// Color is the color the local player controls. In hot-seat mode it is
// white, though both colors are playable.
func (c *Controller) Color() chess.Color {
	if c.isWhite {
		return chess.White
	}
	return chess.Black
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Run processes requests and opponent moves until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	var inbound <-chan chess.Move
	if c.link != nil {
		inbound = c.link.Inbound()
	}

	c.publish(OriginStart, nil)
	c.logger.Info().
		Bool("networked", c.Networked()).
		Str("color", c.Color().String()).
		Msg("Match started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Match stopped")
			return ctx.Err()

		case fn := <-c.requests:
			fn()

		case m, ok := <-inbound:
			if !ok {
				c.logger.Warn().Msg("Opponent link closed")
				c.disconnected = true
				inbound = nil
				continue
			}
			c.applyRemote(m)
		}
	}
}

// Select forwards a click on (row, col) from the local player.
func (c *Controller) Select(row, col int) (chess.Result, error) {
	var (
		res chess.Result
		err error
	)
	if doErr := c.do(func() { res, err = c.handleSelect(row, col) }); doErr != nil {
		return chess.ResultNone, doErr
	}
	return res, err
}

// Reset starts a new game. Against a remote opponent this is only allowed
// once the current game is over.
func (c *Controller) Reset() error {
	var err error
	if doErr := c.do(func() { err = c.handleReset() }); doErr != nil {
		return doErr
	}
	return err
}

func (c *Controller) Snapshot() (chess.Snapshot, error) {
	var s chess.Snapshot
	err := c.do(func() { s = c.game.Snapshot() })
	return s, err
}

func (c *Controller) History() ([]chess.Move, error) {
	var h []chess.Move
	err := c.do(func() { h = c.game.History() })
	return h, err
}

// SafeMoves lists where the piece on (row, col) may go without exposing
// its king.
func (c *Controller) SafeMoves(row, col int) ([]chess.Position, error) {
	var out []chess.Position
	err := c.do(func() {
		out = c.game.SafeMovesForPieceAt(chess.Position{Row: row, Col: col})
	})
	return out, err
}

// do runs fn on the Run goroutine and waits for it.
func (c *Controller) do(fn func()) error {
	finished := make(chan struct{})
	select {
	case c.requests <- func() { fn(); close(finished) }:
	case <-c.done:
		return ErrStopped
	}
	<-finished
	return nil
}

func (c *Controller) handleSelect(row, col int) (chess.Result, error) {
	if c.Networked() {
		if c.disconnected {
			return chess.ResultNone, ErrDisconnected
		}
		if c.game.State() != chess.GameOver && c.game.Active() != c.Color() {
			return chess.ResultNone, ErrOpponentsTurn
		}
	}

	before := len(c.game.History())
	res, err := c.game.Select(row, col)

	switch res {
	case chess.ResultMoved:
		history := c.game.History()
		m := history[before]
		c.logger.Info().Str("move", m.String()).Msg("Local move")
		c.publish(OriginLocal, &m)
		if c.Networked() {
			if sendErr := c.link.Send(c.toWire(m)); sendErr != nil {
				c.logger.Error().Err(sendErr).Msg("Failed to send move")
				c.disconnected = true
				return res, fmt.Errorf("send move: %w", sendErr)
			}
		}
	case chess.ResultSelected, chess.ResultReselected, chess.ResultDeselected:
		c.publish(OriginLocal, nil)
	}
	return res, err
}

func (c *Controller) handleReset() error {
	if c.Networked() && c.game.State() != chess.GameOver {
		return ErrGameInProgress
	}
	c.game.Reset()
	c.logger.Info().Msg("Game reset")
	c.publish(OriginReset, nil)
	return nil
}

func (c *Controller) applyRemote(wire chess.Move) {
	m := c.fromWire(wire)
	log := c.logger.With().Str("move", m.String()).Logger()

	// A move after checkmate means the opponent started a new game.
	if c.game.State() == chess.GameOver {
		log.Info().Msg("Opponent started a new game")
		c.game.Reset()
		c.publish(OriginRematch, nil)
	}

	if c.game.Active() == c.Color() {
		log.Warn().Msg("Rejected opponent move out of turn")
		return
	}

	if pc := c.game.Board().At(m.From()); pc != nil && m.PieceType != "" && m.PieceType != pc.Kind().String() {
		log.Warn().
			Str("claimed", m.PieceType).
			Str("actual", pc.Kind().String()).
			Msg("Opponent move piece type does not match board")
	}

	before := len(c.game.History())
	if err := c.game.ApplyRemoteMove(m); err != nil {
		log.Warn().Err(err).Msg("Rejected opponent move")
		return
	}
	applied := c.game.History()[before]
	log.Info().Msg("Opponent move")
	c.publish(OriginRemote, &applied)
}

// toWire and fromWire convert between the local view and the
// white-at-bottom orientation used on the link.
func (c *Controller) toWire(m chess.Move) chess.Move {
	if c.isWhite {
		return m
	}
	return m.Mirror()
}

func (c *Controller) fromWire(m chess.Move) chess.Move {
	return c.toWire(m)
}

func (c *Controller) publish(origin Origin, last *chess.Move) {
	c.seq++
	snap := c.game.Snapshot()
	u := Update{
		MatchID:   c.id,
		Seq:       c.seq,
		Origin:    origin,
		LastMove:  last,
		Check:     snap.Check,
		Checkmate: snap.Status != chess.StatusActive,
		Snapshot:  snap,
	}
	for _, p := range c.publishers {
		p.Publish(u)
	}
}
