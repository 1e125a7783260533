package redisconn

import (
	"github.com/nodeklenzurr/redisq/rediserr"
	"github.com/nodeklenzurr/redisq/redis"
	"github.com/nodeklenzurr/redisq/resp"
)

// readLoop is the single goroutine that ever touches the read side of
// the socket. It wakes whenever queues.readReady is set, drains every
// response action recorded so far, and works through them in order.
//
// Any read or decode failure - regardless of whether the action being
// serviced is Ignore, Deliver or DeliverBulk - is treated as fatal to
// the session: the RESP stream cannot be trusted to still be framed
// correctly once one read has failed, so there is no safe way to keep
// consuming it for later actions even if their reply boundaries are
// theoretically known in advance. On any failure the loop fails
// whichever sink it was actively servicing, tears the session down
// (which fails everything else still queued), and discards the rest of
// the batch it had already drained.
func (c *Connection) readLoop() {
	for {
		if !c.queues.readReady.wait(c.closing) {
			return
		}
		batch := c.queues.drainActions()
		c.processActions(batch)
	}
}

func (c *Connection) processActions(batch []responseAction) {
	for _, act := range batch {
		sess := c.currentSession()
		if sess == nil {
			// The session that these actions were recorded against is
			// already gone; sessionFailed already resolved every sink
			// still parked in the queues via failAll. Nothing to do.
			return
		}
		switch act.kind {
		case actionIgnore:
			if !c.discardReplies(sess, act.amount) {
				return
			}
		case actionDeliver:
			if !c.deliverReplies(sess, act.amount) {
				return
			}
		case actionDeliverBulk:
			if !c.deliverBulk(sess, act.amount) {
				return
			}
		}
	}
}

// discardReplies reads and drops amount replies. Returns false if a
// fatal error was hit, in which case the session has already been torn
// down.
func (c *Connection) discardReplies(sess *session, amount int) bool {
	for i := 0; i < amount; i++ {
		reply := resp.Read(sess.reader)
		if err := fatalOf(reply); err != nil {
			c.sessionFailed(sess, err)
			return false
		}
	}
	return true
}

func (c *Connection) deliverReplies(sess *session, amount int) bool {
	for i := 0; i < amount; i++ {
		sink := c.queues.popSingleSink()
		reply := resp.Read(sess.reader)
		if err := fatalOf(reply); err != nil {
			sink.fail(err)
			c.sessionFailed(sess, err)
			return false
		}
		sink.deliver(reply)
	}
	return true
}

func (c *Connection) deliverBulk(sess *session, amount int) bool {
	sink := c.queues.popBulkSink()
	replies := make(redis.Replies, 0, amount)
	for i := 0; i < amount; i++ {
		reply := resp.Read(sess.reader)
		if err := fatalOf(reply); err != nil {
			sink.fail(err)
			c.sessionFailed(sess, err)
			return false
		}
		replies = append(replies, reply)
	}
	sink.deliver(replies)
	return true
}

// fatalOf reports the fatal error carried by reply, if any. A RESP
// error reply (`-ERR ...`) is not fatal - it is a normal Reply value
// handed to the caller like any other.
func fatalOf(reply redis.Reply) error {
	if err, ok := reply.(error); ok && rediserr.IsFatal(err) {
		return err
	}
	return nil
}
