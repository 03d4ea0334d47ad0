package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justinabrahms/lanchess/internal/chess"
	"github.com/rs/zerolog"
)

// DrainTimeout bounds how long Close waits for queued moves to reach the peer.
const DrainTimeout = 2 * time.Second

// Session is one live peer connection. A reader goroutine decodes moves
// into Inbound and a writer goroutine encodes moves handed to Send.
type Session struct {
	id     string
	conn   net.Conn
	remote string
	logger zerolog.Logger

	enc *json.Encoder
	dec *json.Decoder

	inbound  chan chess.Move
	outbound chan chess.Move
	events   chan Event
	done     chan struct{}

	// closing asks the writer to flush outbound and stop; writerDone is
	// closed when the writer has returned.
	closing    chan struct{}
	writerDone chan struct{}

	closeOnce   sync.Once
	closingOnce sync.Once
}

func newSession(conn net.Conn, o options) *Session {
	id := uuid.NewString()
	remote := conn.RemoteAddr().String()
	s := &Session{
		id:       id,
		conn:     conn,
		remote:   remote,
		logger:   o.logger.With().Str("session", id).Str("remote", remote).Logger(),
		inbound:  make(chan chess.Move, o.queueSize),
		outbound: make(chan chess.Move, o.queueSize),
		// Connected, Error and Disconnected fit without a reader.
		events: make(chan Event, 4),
		done:   make(chan struct{}),

		closing:    make(chan struct{}),
		writerDone: make(chan struct{}),
	}

	// Both ends set up the encoder first so neither blocks on the other.
	s.enc = json.NewEncoder(conn)
	s.dec = json.NewDecoder(conn)

	s.events <- Event{Kind: EventConnected, Remote: remote}
	s.logger.Info().Msg("Peer connected")

	go s.readLoop()
	go s.writeLoop()
	return s
}

func (s *Session) ID() string { return s.id }

// Remote returns the peer address.
func (s *Session) Remote() string { return s.remote }

// Inbound delivers decoded moves in arrival order. It is closed when the
// session ends.
func (s *Session) Inbound() <-chan chess.Move { return s.inbound }

// Events delivers lifecycle notifications. Disconnected is sent exactly
// once, after which the channel is closed.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// Send queues m for the peer. It blocks while the queue is full and
// returns ErrClosed once the session has ended or Close has been called.
// A move Send accepted is written before Close tears the connection down.
func (s *Session) Send(m chess.Move) error {
	select {
	case <-s.done:
		return ErrClosed
	case <-s.closing:
		return ErrClosed
	default:
	}

	select {
	case s.outbound <- m:
		return nil
	case <-s.done:
		return ErrClosed
	case <-s.closing:
		return ErrClosed
	}
}

// Close flushes queued moves, waiting at most DrainTimeout, then ends the
// session. The peer observes the queued moves followed by EOF.
func (s *Session) Close() error {
	s.closingOnce.Do(func() {
		if err := s.conn.SetWriteDeadline(time.Now().Add(DrainTimeout)); err != nil {
			s.logger.Debug().Err(err).Msg("Error setting write deadline")
		}
		close(s.closing)
	})
	<-s.writerDone
	s.shutdown(nil)
	return nil
}

func (s *Session) readLoop() {
	defer close(s.inbound)

	for {
		var m chess.Move
		if err := s.dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.shutdown(nil)
			} else {
				s.shutdown(err)
			}
			return
		}

		s.logger.Debug().Str("move", m.String()).Msg("Received move")

		select {
		case s.inbound <- m:
		case <-s.done:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer close(s.writerDone)

	for {
		select {
		case <-s.done:
			return
		case <-s.closing:
			s.flush()
			return
		case m := <-s.outbound:
			if !s.write(m) {
				return
			}
		}
	}
}

// flush writes whatever is still queued, in order.
func (s *Session) flush() {
	for {
		select {
		case m := <-s.outbound:
			if !s.write(m) {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) write(m chess.Move) bool {
	if err := s.enc.Encode(m); err != nil {
		if errors.Is(err, net.ErrClosed) {
			s.shutdown(nil)
		} else {
			s.shutdown(err)
		}
		return false
	}
	s.logger.Debug().Str("move", m.String()).Msg("Sent move")
	return true
}

// shutdown tears the connection down once, whichever path gets here first.
func (s *Session) shutdown(cause error) {
	s.closeOnce.Do(func() {
		close(s.done)
		if err := s.conn.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Error closing connection")
		}

		if cause != nil {
			s.logger.Error().Err(cause).Msg("Connection error")
			s.events <- Event{Kind: EventError, Remote: s.remote, Err: cause}
		}
		s.logger.Info().Msg("Peer disconnected")
		s.events <- Event{Kind: EventDisconnected, Remote: s.remote, Err: cause}
		close(s.events)
	})
}
