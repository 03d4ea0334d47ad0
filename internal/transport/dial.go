package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// DialReason classifies why a connection attempt failed.
type DialReason int

const (
	DialFailed DialReason = iota
	DialTimeout
	DialRefused
	DialUnknownHost
)

func (r DialReason) String() string {
	switch r {
	case DialTimeout:
		return "timed out"
	case DialRefused:
		return "connection refused"
	case DialUnknownHost:
		return "unknown host"
	default:
		return "connection failed"
	}
}

// DialError is returned by Dial when the peer could not be reached.
type DialError struct {
	Addr   string
	Reason DialReason
	Err    error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("connect to %s: %s: %v", e.Addr, e.Reason, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

// Dial connects to a waiting host. The attempt is bounded by the connect
// timeout option.
func Dial(ctx context.Context, host string, port int, opts ...Option) (*Session, error) {
	if err := ValidatePort(port); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	o.logger.Info().Str("addr", addr).Dur("timeout", o.connectTimeout).Msg("Connecting to host")

	d := net.Dialer{Timeout: o.connectTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		derr := &DialError{Addr: addr, Reason: classifyDialError(err), Err: err}
		o.logger.Error().Err(err).Str("reason", derr.Reason.String()).Msg("Failed to connect")
		return nil, derr
	}
	return newSession(conn, o), nil
}

func classifyDialError(err error) DialReason {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return DialUnknownHost
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return DialRefused
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return DialTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return DialTimeout
	}
	return DialFailed
}
