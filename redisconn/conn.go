package redisconn

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nodeklenzurr/redisq/rediserr"
	"github.com/nodeklenzurr/redisq/redis"
)

// connState is the lifecycle of a Connection's transport.
type connState uint32

const (
	stateIdle connState = iota
	stateConnecting
	stateConnected
	stateDisconnected
	stateClosed
)

// session is one physical socket and the buffered reader/deadline
// writer built on top of it. A Connection cycles through many sessions
// over its lifetime; queues (and the two loop goroutines) persist
// across every reconnect.
type session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer interface {
		Write([]byte) (int, error)
	}
}

// Connection is a single pipelined link to one redis-server. Queries
// submitted through it are written and read back by two dedicated
// goroutines (see writeLoop and readLoop); callers never touch the
// socket directly. A Connection reconnects on its own whenever the
// transport is lost, unless Config.ReconnectPause is negative.
type Connection struct {
	cfg Config

	ctx    context.Context
	cancel context.CancelFunc

	state uint32

	sessMu sync.Mutex
	sess   *session

	queues *queues

	needConnect chan struct{}
	closing     chan struct{}

	firstAttempt     chan struct{}
	firstAttemptOnce sync.Once

	startOnce sync.Once
	closeOnce sync.Once
}

// NewConnection builds a Connection but does not start it - call Start
// (or use Connect) before submitting any queries.
func NewConnection(cfg Config) *Connection {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		cfg:          cfg,
		ctx:          ctx,
		cancel:       cancel,
		queues:       newQueues(),
		needConnect:  make(chan struct{}, 1),
		closing:      make(chan struct{}),
		firstAttempt: make(chan struct{}),
	}
}

// Connect builds a Connection, starts it, and waits for the first
// connect attempt (successful or not) to finish before returning.
func Connect(cfg Config) *Connection {
	c := NewConnection(cfg)
	c.Start()
	<-c.firstAttempt
	return c
}

// Start spawns the write loop, the read loop, the reconnect supervisor
// and the health-check ticker, and kicks off the initial connect
// attempt. Idempotent: calls after the first are no-ops.
func (c *Connection) Start() {
	c.startOnce.Do(func() {
		c.setState(stateConnecting)
		go c.writeLoop()
		go c.readLoop()
		go c.connectSupervisor()
		go c.healthCheck()
		c.triggerConnect()
	})
}

// IsConnected reports whether a session is currently established.
func (c *Connection) IsConnected() bool {
	return c.State() == stateConnected
}

// State exposes the current lifecycle state, mainly for tests.
func (c *Connection) State() connState {
	return connState(atomic.LoadUint32(&c.state))
}

func (c *Connection) setState(s connState) {
	atomic.StoreUint32(&c.state, uint32(s))
}

// Addr is the configured host:port or UNIX path this Connection dials.
func (c *Connection) Addr() string { return c.cfg.addr() }

// String satisfies fmt.Stringer so errors can carry a connection
// identity without importing this package back.
func (c *Connection) String() string { return c.Addr() }

// Close tears the Connection down permanently: the current session (if
// any) is closed, every outstanding submission and sink fails, and no
// further reconnect attempt is made.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.setState(stateClosed)
		close(c.closing)
		c.cancel()

		c.sessMu.Lock()
		sess := c.sess
		c.sess = nil
		c.sessMu.Unlock()
		if sess != nil {
			sess.conn.Close()
		}

		c.queues.failAll(rediserr.WithConnection(rediserr.ClosedType.New("connection closed"), c))
		c.cfg.Logger.Report(LogClosed, c)
	})
}

func (c *Connection) currentSession() *session {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.sess
}

func (c *Connection) setSession(s *session) {
	c.sessMu.Lock()
	c.sess = s
	c.sessMu.Unlock()
}

// sessionFailed tears sess down if it is still the current session. A
// stale sess (already replaced or already torn down by a concurrent
// caller) is a no-op, so writeLoop, readLoop and the health check can
// all call this on the same dead session without double-reporting or
// double-triggering a reconnect.
func (c *Connection) sessionFailed(sess *session, err error) {
	c.sessMu.Lock()
	if c.sess != sess {
		c.sessMu.Unlock()
		return
	}
	c.sess = nil
	c.sessMu.Unlock()

	sess.conn.Close()

	if c.State() == stateClosed {
		return
	}
	c.setState(stateDisconnected)
	c.cfg.Logger.Report(LogDisconnected, c, err)
	c.queues.failAll(rediserr.WithConnection(err, c))
	if c.cfg.ReconnectPause >= 0 {
		c.triggerConnect()
	}
}

func (c *Connection) triggerConnect() {
	select {
	case c.needConnect <- struct{}{}:
	default:
	}
}

// connectSupervisor owns every dial attempt for the life of the
// Connection. It sleeps until triggerConnect wakes it (initially from
// Start, later from sessionFailed) and then retries until a session is
// established or ReconnectPause is negative.
func (c *Connection) connectSupervisor() {
	for {
		select {
		case <-c.needConnect:
		case <-c.closing:
			return
		}
		c.attemptConnectLoop()
	}
}

func (c *Connection) attemptConnectLoop() {
	defer c.firstAttemptOnce.Do(func() { close(c.firstAttempt) })
	for {
		select {
		case <-c.closing:
			return
		default:
		}

		c.setState(stateConnecting)
		c.cfg.Logger.Report(LogConnecting, c)

		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.DialTimeout)
		conn, err := dialFunc(ctx, c.cfg)
		cancel()

		if err != nil {
			c.setState(stateDisconnected)
			dialErr := rediserr.WithConnection(rediserr.DialType.Wrap(err, "dial %s", c.cfg.addr()), c)
			c.cfg.Logger.Report(LogConnectFailed, c, dialErr)
			c.firstAttemptOnce.Do(func() { close(c.firstAttempt) })
			if c.cfg.ReconnectPause < 0 {
				return
			}
			select {
			case <-time.After(c.cfg.ReconnectPause):
			case <-c.closing:
				return
			}
			continue
		}

		rw := newDeadlineIO(conn, c.cfg.IOTimeout)
		sess := &session{
			conn:   conn,
			reader: bufio.NewReaderSize(rw, 64*1024),
			writer: rw,
		}
		c.setSession(sess)
		c.setState(stateConnected)
		c.cfg.Logger.Report(LogConnected, c, conn.LocalAddr().String(), conn.RemoteAddr().String())
		return
	}
}

// healthCheck periodically pings an idle connection so a peer that has
// gone silent (rather than actively refusing) is noticed even without
// any caller traffic to trip over it.
func (c *Connection) healthCheck() {
	ticker := time.NewTicker(defaultHealthPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.closing:
			return
		case <-ticker.C:
		}
		if !c.IsConnected() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DialTimeout+2*c.cfg.IOTimeout)
		_, err := c.GetResultOfQuery(ctx, redis.Command("PING"))
		cancel()
		if err == context.DeadlineExceeded {
			if sess := c.currentSession(); sess != nil {
				c.sessionFailed(sess, rediserr.WithConnection(rediserr.IOType.New("health check ping timed out"), c))
			}
		}
	}
}

func (c *Connection) notConnectedErr() error {
	return rediserr.WithConnection(rediserr.NotConnectedType.New("not connected to %s", c.cfg.addr()), c)
}

func (c *Connection) closedErr() error {
	return rediserr.WithConnection(rediserr.ClosedType.New("connection to %s is closed", c.cfg.addr()), c)
}

func (c *Connection) logQuery(q redis.Query) {
	c.cfg.Logger.Report(LogQuery, c, q)
}

func (c *Connection) logDropped(q redis.Query, err error) {
	c.cfg.Logger.Report(LogDroppedWrite, c, rediserr.WithQuery(err, q))
}

// FireAndForgetQuery submits q without waiting for or exposing any
// reply. A write failure is logged and otherwise silently dropped.
func (c *Connection) FireAndForgetQuery(q redis.Query) {
	c.logQuery(q)
	if c.State() == stateClosed {
		c.logDropped(q, c.closedErr())
		return
	}
	c.queues.submit(fireOneSubmission{query: q})
}

// FireAndForgetQueries submits qs as a single batch with the same
// fire-and-forget semantics as FireAndForgetQuery, one per query: a
// write failure partway through drops the rest of the batch too, and
// like any write failure it tears the session down, failing every other
// submission still outstanding on it.
func (c *Connection) FireAndForgetQueries(qs redis.Queries) {
	for _, q := range qs {
		c.logQuery(q)
	}
	if c.State() == stateClosed {
		err := c.closedErr()
		for _, q := range qs {
			c.logDropped(q, err)
		}
		return
	}
	c.queues.submit(fireManySubmission{queries: qs})
}

// GetResultOfQuery submits q and blocks until its reply arrives, ctx is
// done, or the Connection is closed.
func (c *Connection) GetResultOfQuery(ctx context.Context, q redis.Query) (redis.Reply, error) {
	c.logQuery(q)
	if c.State() == stateClosed {
		return nil, c.closedErr()
	}
	sink := newSingleSink()
	c.queues.submit(askOneSubmission{query: q, sink: sink})
	select {
	case res := <-sink:
		return res.Reply, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closing:
		return nil, c.closedErr()
	}
}

// GetResultsOfQueries submits qs as a single all-or-nothing batch: a
// write failure at any point fails the whole batch, and every query in
// it either has its reply delivered together or none of them do.
func (c *Connection) GetResultsOfQueries(ctx context.Context, qs redis.Queries) (redis.Replies, error) {
	for _, q := range qs {
		c.logQuery(q)
	}
	if c.State() == stateClosed {
		return nil, c.closedErr()
	}
	sink := newBulkSink()
	c.queues.submit(askManySubmission{queries: qs, sink: sink})
	select {
	case res := <-sink:
		return res.Replies, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closing:
		return nil, c.closedErr()
	}
}
