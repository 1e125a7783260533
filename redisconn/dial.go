package redisconn

import (
	"context"
	"io"
	"net"
	"time"
)

// dialFunc is the connect-supervisor's only entry point into the
// network, kept as a variable so tests can substitute an in-memory
// transport without touching a real socket.
var dialFunc = dial

// dial opens the configured transport - TCP or UNIX-domain, chosen by
// whether cfg.Path is set - honoring cfg.DialTimeout.
func dial(ctx context.Context, cfg Config) (net.Conn, error) {
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	return dialer.DialContext(ctx, cfg.network(), cfg.addr())
}

// deadlineIO wraps a net.Conn so every Read/Write call gets a fresh
// per-call deadline, rather than relying on callers to remember to set
// one.
type deadlineIO struct {
	c  net.Conn
	to time.Duration
}

func newDeadlineIO(c net.Conn, to time.Duration) io.ReadWriter {
	if to <= 0 {
		return c
	}
	return &deadlineIO{c: c, to: to}
}

func (d *deadlineIO) Write(b []byte) (int, error) {
	d.c.SetWriteDeadline(time.Now().Add(d.to))
	return d.c.Write(b)
}

func (d *deadlineIO) Read(b []byte) (int, error) {
	d.c.SetReadDeadline(time.Now().Add(d.to))
	return d.c.Read(b)
}
