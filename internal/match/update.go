package match

import "github.com/justinabrahms/lanchess/internal/chess"

// Origin says what produced an Update.
type Origin string

const (
	OriginStart  Origin = "start"
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
	// OriginReset is a reset requested through this controller.
	OriginReset Origin = "reset"
	// OriginRematch is a reset caused by the opponent's first move of a new
	// game.
	OriginRematch Origin = "rematch"
)

// Update is published after every change to the game.
type Update struct {
	MatchID   string         `json:"matchId"`
	Seq       int            `json:"seq"`
	Origin    Origin         `json:"origin"`
	LastMove  *chess.Move    `json:"lastMove,omitempty"`
	Check     bool           `json:"check"`
	Checkmate bool           `json:"checkmate"`
	Snapshot  chess.Snapshot `json:"snapshot"`
}

// Publisher receives updates on the controller goroutine and must not block.
type Publisher interface {
	Publish(Update)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Update)

func (f PublisherFunc) Publish(u Update) { f(u) }
