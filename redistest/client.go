package redistest

import (
	"bufio"
	"net"
	"time"

	"github.com/nodeklenzurr/redisq/redis"
	"github.com/nodeklenzurr/redisq/resp"
)

// Conn is a bare synchronous request/response client, one query at a
// time, no pipelining - the opposite of redisconn.Connection. It exists
// so tests can talk to a real server without depending on the very
// package under test.
type Conn struct {
	Addr string
	c    net.Conn
	r    *bufio.Reader
}

// Do sends one command and waits for its reply, reconnecting once if
// the current socket is dead.
func (c *Conn) Do(cmd string, args ...interface{}) (redis.Reply, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if c.c == nil {
			conn, err := net.DialTimeout("tcp", c.Addr, 100*time.Millisecond)
			if err != nil {
				return nil, err
			}
			c.c = conn
			c.r = bufio.NewReader(conn)
		}
		c.c.SetDeadline(time.Now().Add(1 * time.Second))
		req := resp.AppendQuery(nil, redis.Command(cmd, args...))
		if _, err := c.c.Write(req); err != nil {
			c.close()
			continue
		}
		reply := resp.Read(c.r)
		if err := ioFailure(reply); err != nil {
			c.close()
			continue
		}
		return reply, nil
	}
	return nil, errDoFailed
}

func (c *Conn) close() {
	if c.c != nil {
		c.c.Close()
	}
	c.c = nil
	c.r = nil
}

// Close releases the underlying socket, if any.
func (c *Conn) Close() {
	c.close()
}

// Do dials addr fresh, sends one command, and closes the socket.
func Do(addr string, cmd string, args ...interface{}) (redis.Reply, error) {
	conn := &Conn{Addr: addr}
	defer conn.Close()
	return conn.Do(cmd, args...)
}

func ioFailure(reply redis.Reply) error {
	if err, ok := reply.(error); ok && !resp.IsResultError(reply) {
		return err
	}
	return nil
}

var errDoFailed = &doError{}

type doError struct{}

func (*doError) Error() string { return "redistest: command failed after reconnect" }
