package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Host listens for a single opponent. After the first connection is
// accepted the listener is closed and no further peers are admitted.
type Host struct {
	port int
	opts options

	mu       sync.Mutex
	ln       net.Listener
	accepted bool
	closed   bool
}

// NewHost validates port and prepares a host. Nothing is bound until
// Listen or Accept.
func NewHost(port int, opts ...Option) (*Host, error) {
	if err := ValidatePort(port); err != nil {
		return nil, err
	}
	return newHost(port, opts...), nil
}

func newHost(port int, opts ...Option) *Host {
	return &Host{port: port, opts: newOptions(opts)}
}

// Listen binds the port on all interfaces.
func (h *Host) Listen() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.listenLocked()
}

func (h *Host) listenLocked() error {
	if h.closed {
		return ErrClosed
	}
	if h.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", h.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", h.port, err)
	}
	h.ln = ln
	h.opts.logger.Info().Str("addr", ln.Addr().String()).Msg("Waiting for opponent")
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (h *Host) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ln == nil {
		return nil
	}
	return h.ln.Addr()
}

// Accept waits for one peer and returns its session. Cancelling ctx or
// calling Close unblocks it.
func (h *Host) Accept(ctx context.Context) (*Session, error) {
	h.mu.Lock()
	if h.accepted {
		h.mu.Unlock()
		return nil, ErrAlreadyConnected
	}
	if err := h.listenLocked(); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	ln := h.ln
	h.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	conn, err := ln.Accept()

	h.mu.Lock()
	defer h.mu.Unlock()
	// One opponent per game: stop accepting either way.
	ln.Close()
	h.ln = nil

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if h.closed || errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	h.accepted = true
	return newSession(conn, h.opts), nil
}

// Close stops listening. A pending Accept returns ErrClosed.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.ln == nil {
		return nil
	}
	err := h.ln.Close()
	h.ln = nil
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// LocalIPv4s lists the machine's non-loopback IPv4 addresses, which is
// what the joining player needs to type in.
func LocalIPv4s() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, fmt.Errorf("list interface addresses: %w", err)
	}
	var out []string
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			out = append(out, ip4.String())
		}
	}
	return out, nil
}
