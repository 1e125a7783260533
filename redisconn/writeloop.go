package redisconn

import (
	"time"

	"github.com/nodeklenzurr/redisq/rediserr"
	"github.com/nodeklenzurr/redisq/redis"
	"github.com/nodeklenzurr/redisq/resp"
)

// writeLoop is the single goroutine that ever touches the write side of
// the socket. It wakes whenever queues.writeReady is set, drains every
// submission queued so far, and dispatches each in turn. While no
// session is current it holds the submission in hand until the connect
// supervisor establishes one. A submission fails at once with a
// not-connected error only when no session exists and none is coming:
// reconnection is disabled and the connect attempt is over, or the
// Connection is closing.
func (c *Connection) writeLoop() {
	for {
		if !c.queues.writeReady.wait(c.closing) {
			return
		}
		batch := c.queues.drainWrite()
		for _, item := range batch {
			c.dispatchWrite(item)
		}
	}
}

func (c *Connection) dispatchWrite(item submission) {
	sess := c.currentSession()
wait:
	for sess == nil && (c.cfg.ReconnectPause >= 0 || c.State() == stateConnecting) {
		select {
		case <-c.closing:
			break wait
		case <-time.After(5 * time.Millisecond):
		}
		sess = c.currentSession()
	}

	switch s := item.(type) {
	case fireOneSubmission:
		if sess == nil {
			c.logDropped(s.query, c.notConnectedErr())
			return
		}
		if err := c.writeQuery(sess, s.query); err != nil {
			c.logDropped(s.query, err)
			c.sessionFailed(sess, err)
			return
		}
		c.queues.pushAction(actionIgnore, 1)

	case fireManySubmission:
		if sess == nil {
			for _, q := range s.queries {
				c.logDropped(q, c.notConnectedErr())
			}
			return
		}
		written := 0
		for _, q := range s.queries {
			if err := c.writeQuery(sess, q); err != nil {
				c.logDropped(q, err)
				c.sessionFailed(sess, err)
				break
			}
			written++
		}
		c.queues.pushAction(actionIgnore, written)

	case askOneSubmission:
		if sess == nil {
			s.sink.fail(c.notConnectedErr())
			return
		}
		if err := c.writeQuery(sess, s.query); err != nil {
			s.sink.fail(err)
			c.sessionFailed(sess, err)
			return
		}
		c.queues.pushSingleSink(s.sink)
		c.queues.pushAction(actionDeliver, 1)

	case askManySubmission:
		if sess == nil {
			s.sink.fail(c.notConnectedErr())
			return
		}
		var failure error
		for _, q := range s.queries {
			if err := c.writeQuery(sess, q); err != nil {
				failure = err
				break
			}
		}
		if failure != nil {
			s.sink.fail(failure)
			c.sessionFailed(sess, failure)
			return
		}
		c.queues.pushBulkSink(s.sink)
		c.queues.pushAction(actionDeliverBulk, len(s.queries))
	}
}

// writeQuery encodes and writes a single query. A partial write followed
// by an error still leaves the wire desynchronized for every subsequent
// submission, which is exactly why any write error tears the whole
// session down rather than being retried in place.
func (c *Connection) writeQuery(sess *session, q redis.Query) error {
	buf := resp.AppendQuery(nil, q)
	if _, err := sess.writer.Write(buf); err != nil {
		wrapped := rediserr.IOType.Wrap(err, "writing query %s", q.Name())
		return rediserr.WithConnection(rediserr.WithQuery(wrapped, q), c)
	}
	return nil
}
