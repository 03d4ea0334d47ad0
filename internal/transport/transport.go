// Package transport carries moves between two players over a single TCP
// connection. Moves are encoded as a stream of JSON values.
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	MinPort = 1024
	MaxPort = 65535

	DefaultConnectTimeout = 5 * time.Second
	DefaultQueueSize      = 10
)

var (
	ErrInvalidPort      = errors.New("invalid port")
	ErrClosed           = errors.New("connection closed")
	ErrAlreadyConnected = errors.New("host already accepted a peer")
)

// ValidatePort rejects ports outside 1024-65535 before anything is bound.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidPort, port, MinPort, MaxPort)
	}
	return nil
}

type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a connection lifecycle notification.
type Event struct {
	Kind   EventKind
	Remote string
	Err    error
}

type options struct {
	logger         zerolog.Logger
	connectTimeout time.Duration
	queueSize      int
}

// Option configures hosts, dialers and the sessions they create
type Option func(*options)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConnectTimeout bounds how long Dial waits for the peer.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithQueueSize sets the buffer of the inbound and outbound move queues.
func WithQueueSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:         zerolog.Nop(),
		connectTimeout: DefaultConnectTimeout,
		queueSize:      DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
