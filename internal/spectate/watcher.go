// Package spectate follows a match from another machine through the
// spectator websocket.
package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/justinabrahms/lanchess/internal/match"
	"github.com/rs/zerolog"
)

const (
	// Reconnection parameters
	initialReconnectDelay  = 1 * time.Second
	maxReconnectDelay      = 1 * time.Minute
	reconnectBackoffFactor = 2

	pongTimeout = 70 * time.Second
	dialTimeout = 10 * time.Second
)

// UpdateHandler is called for each update received.
type UpdateHandler func(match.Update) error

// Watcher keeps a websocket open to a spectator server and reconnects
// with exponential backoff when it drops.
type Watcher struct {
	url            string
	handler        UpdateHandler
	logger         zerolog.Logger
	dialer         *websocket.Dialer
	reconnectDelay time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	lastSeq   int
	matchID   string
}

// Option configures the watcher
type Option func(*Watcher)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDialer replaces the websocket dialer
func WithDialer(dialer *websocket.Dialer) Option {
	return func(w *Watcher) {
		w.dialer = dialer
	}
}

// WithInitialReconnectDelay sets the initial reconnect delay
func WithInitialReconnectDelay(delay time.Duration) Option {
	return func(w *Watcher) {
		w.reconnectDelay = delay
	}
}

// NewWatcher creates a watcher for the websocket at url, e.g.
// ws://192.168.1.20:8090/ws.
func NewWatcher(url string, handler UpdateHandler, opts ...Option) *Watcher {
	w := &Watcher{
		url:            url,
		handler:        handler,
		logger:         zerolog.Nop(),
		dialer:         websocket.DefaultDialer,
		reconnectDelay: initialReconnectDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// URLFor builds the websocket address of a spectator server.
func URLFor(host string, port int) string {
	return fmt.Sprintf("ws://%s:%d/ws", host, port)
}

// IsConnected returns whether the watcher is connected
func (w *Watcher) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// LastSeq returns the sequence number of the last update handled.
func (w *Watcher) LastSeq() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastSeq
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial := w.reconnectDelay
	for {
		if err := w.connect(ctx); err != nil {
			w.logger.Error().Err(err).Msg("Failed to connect to spectator server")
		} else {
			w.reconnectDelay = initial
			if err := w.listen(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("Error reading spectator stream")
			}
		}

		if ctx.Err() != nil {
			w.disconnect()
			return ctx.Err()
		}
		w.backoff(ctx)
	}
}

func (w *Watcher) connect(ctx context.Context) error {
	w.logger.Info().Str("url", w.url).Msg("Connecting to spectator server")

	headers := http.Header{}
	headers.Set("User-Agent", "lanchess-watch/1.0")

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := w.dialer.DialContext(dialCtx, w.url, headers)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(pongTimeout))
	// The server pings periodically; answering keeps both deadlines fresh.
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	w.logger.Info().Msg("Connected to spectator server")
	return nil
}

func (w *Watcher) listen(ctx context.Context) error {
	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()

	// Closing the connection is the only way to interrupt a blocked read.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return readError(err)
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := w.processMessage(data); err != nil {
			w.logger.Error().Err(err).Msg("Error processing message")
			// Continue processing other messages
		}
	}
}

// readError maps the error that ended a read loop. Orderly closes from the
// server end the stream quietly; anything else, read deadlines included,
// is returned so the reconnect is logged.
func readError(err error) error {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return nil
	}
	return fmt.Errorf("websocket read error: %w", err)
}

func (w *Watcher) processMessage(data []byte) error {
	var u match.Update
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}

	w.mu.Lock()
	if u.MatchID != w.matchID {
		if w.matchID != "" {
			w.logger.Info().Str("match", u.MatchID).Msg("Spectator server switched match")
		}
		w.matchID = u.MatchID
		w.lastSeq = 0
	}
	// A reconnect replays the latest update; skip what was already seen.
	if u.Seq != 0 && u.Seq <= w.lastSeq {
		w.mu.Unlock()
		return nil
	}
	w.lastSeq = u.Seq
	w.mu.Unlock()

	if err := w.handler(u); err != nil {
		return fmt.Errorf("update handler: %w", err)
	}
	return nil
}

func (w *Watcher) disconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

func (w *Watcher) backoff(ctx context.Context) {
	w.disconnect()

	// Get current delay before updating
	delay := w.reconnectDelay

	// Exponential backoff
	w.reconnectDelay = time.Duration(float64(w.reconnectDelay) * reconnectBackoffFactor)
	if w.reconnectDelay > maxReconnectDelay {
		w.reconnectDelay = maxReconnectDelay
	}

	w.logger.Info().Str("delay", delay.String()).Msg("Waiting before reconnect")

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
