package redisconn

import (
	"sync"

	"github.com/nodeklenzurr/redisq/redis"
)

// submission is the tagged union of work a caller can hand to a
// Connection: exactly one of the four concrete types below crosses into
// the write queue per call to a public Connection method. Go has no sum
// type, so this is the idiomatic encoding: an interface with one
// implementation per variant instead of a struct with nilable fields.
type submission interface {
	isSubmission()
}

type fireOneSubmission struct {
	query redis.Query
}

type fireManySubmission struct {
	queries redis.Queries
}

type askOneSubmission struct {
	query redis.Query
	sink  singleSink
}

type askManySubmission struct {
	queries redis.Queries
	sink    bulkSink
}

func (fireOneSubmission) isSubmission()  {}
func (fireManySubmission) isSubmission() {}
func (askOneSubmission) isSubmission()   {}
func (askManySubmission) isSubmission()  {}

// singleResult is what a singleSink carries: exactly one of Reply/Err is
// meaningful.
type singleResult struct {
	Reply redis.Reply
	Err   error
}

// singleSink is a one-shot channel with a producer handle (redisconn's
// loops) and a consumer handle (the blocking caller). Buffered to 1 so
// the producer never blocks on a caller that has walked away.
type singleSink chan singleResult

func newSingleSink() singleSink { return make(singleSink, 1) }

func (s singleSink) deliver(r redis.Reply) { s <- singleResult{Reply: r} }
func (s singleSink) fail(err error)        { s <- singleResult{Err: err} }

// bulkResult is the batch analogue of singleResult.
type bulkResult struct {
	Replies redis.Replies
	Err     error
}

type bulkSink chan bulkResult

func newBulkSink() bulkSink { return make(bulkSink, 1) }

func (s bulkSink) deliver(r redis.Replies) { s <- bulkResult{Replies: r} }
func (s bulkSink) fail(err error)          { s <- bulkResult{Err: err} }

// actionKind classifies what ReadLoop should do with the next replies
// off the wire.
type actionKind int

const (
	actionIgnore actionKind = iota
	actionDeliver
	actionDeliverBulk
)

// responseAction records that the next `amount` replies on the wire are
// to be handled this way: dropped, delivered one at a time, or
// delivered as a single batch.
type responseAction struct {
	kind   actionKind
	amount int
}

// appendAction pushes a new action onto actions, coalescing with the
// tail entry when kind matches and coalescing is permitted (DeliverBulk
// never coalesces, so its sink boundary always stays visible to
// ReadLoop).
func appendAction(actions []responseAction, kind actionKind, amount int) []responseAction {
	if amount == 0 {
		return actions
	}
	if kind != actionDeliverBulk && len(actions) > 0 {
		last := &actions[len(actions)-1]
		if last.kind == kind {
			last.amount += amount
			return actions
		}
	}
	return append(actions, responseAction{kind: kind, amount: amount})
}

// queues holds the write queue of pending submissions, the FIFO of
// future response actions, and the two FIFOs of outstanding reply
// promises shared between a Connection's WriteLoop and ReadLoop. Two
// independent mutexes guard it because WriteLoop and ReadLoop are
// separate goroutines that run concurrently: pending/writeReady is
// owned by submitters+WriteLoop, and
// actions/singleSinks/bulkSinks/readReady is owned by WriteLoop+ReadLoop.
// Neither lock is ever held across I/O.
type queues struct {
	writeMu    sync.Mutex
	pending    []submission
	writeReady flag

	actionMu    sync.Mutex
	actions     []responseAction
	singleSinks []singleSink
	bulkSinks   []bulkSink
	readReady   flag
}

func newQueues() *queues {
	return &queues{
		writeReady: newFlag(),
		readReady:  newFlag(),
	}
}

// submit enqueues s for WriteLoop and wakes it. Called from any
// goroutine; this is the only synchronization point external
// submitters ever touch.
func (q *queues) submit(s submission) {
	q.writeMu.Lock()
	q.pending = append(q.pending, s)
	q.writeMu.Unlock()
	q.writeReady.set()
}

// drainWrite atomically takes ownership of every submission enqueued so
// far, or reports the queue is empty (in which case it also clears
// writeReady, racing safely with submit because both operate under
// writeMu).
func (q *queues) drainWrite() []submission {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()
	if len(q.pending) == 0 {
		q.writeReady.clear()
		return nil
	}
	batch := q.pending
	q.pending = nil
	return batch
}

// pushAction records that the next `amount` replies on the wire belong
// to `kind`, coalescing per the rule above, and wakes ReadLoop.
func (q *queues) pushAction(kind actionKind, amount int) {
	if amount == 0 {
		return
	}
	q.actionMu.Lock()
	q.actions = appendAction(q.actions, kind, amount)
	q.actionMu.Unlock()
	q.readReady.set()
}

// pushSingleSink appends to ReplyPromiseQueue.
func (q *queues) pushSingleSink(s singleSink) {
	q.actionMu.Lock()
	q.singleSinks = append(q.singleSinks, s)
	q.actionMu.Unlock()
}

// pushBulkSink appends to RepliesPromiseQueue.
func (q *queues) pushBulkSink(s bulkSink) {
	q.actionMu.Lock()
	q.bulkSinks = append(q.bulkSinks, s)
	q.actionMu.Unlock()
}

// drainActions atomically takes ownership of the whole ActionQueue, or
// clears readReady if it is empty.
func (q *queues) drainActions() []responseAction {
	q.actionMu.Lock()
	defer q.actionMu.Unlock()
	if len(q.actions) == 0 {
		q.readReady.clear()
		return nil
	}
	batch := q.actions
	q.actions = nil
	return batch
}

func (q *queues) popSingleSink() singleSink {
	q.actionMu.Lock()
	defer q.actionMu.Unlock()
	s := q.singleSinks[0]
	q.singleSinks = q.singleSinks[1:]
	return s
}

func (q *queues) popBulkSink() bulkSink {
	q.actionMu.Lock()
	defer q.actionMu.Unlock()
	s := q.bulkSinks[0]
	q.bulkSinks = q.bulkSinks[1:]
	return s
}

// failAll completes every submission still queued or in flight with
// err: pending writes, recorded actions, and both promise FIFOs. Called
// each time a session is torn down, and by Close.
func (q *queues) failAll(err error) {
	q.writeMu.Lock()
	pending := q.pending
	q.pending = nil
	q.writeMu.Unlock()

	for _, s := range pending {
		switch sub := s.(type) {
		case askOneSubmission:
			sub.sink.fail(err)
		case askManySubmission:
			sub.sink.fail(err)
		}
	}

	q.actionMu.Lock()
	singles := q.singleSinks
	q.singleSinks = nil
	bulks := q.bulkSinks
	q.bulkSinks = nil
	q.actions = nil
	q.actionMu.Unlock()

	for _, s := range singles {
		s.fail(err)
	}
	for _, s := range bulks {
		s.fail(err)
	}
}

// depth reports two testable invariants of the action queue: the sum of
// Deliver amounts and the count of DeliverBulk entries currently
// recorded, which must track the outstanding single- and bulk-sink
// counts.
func (q *queues) depth() (deliverAmount, bulkCount int) {
	q.actionMu.Lock()
	defer q.actionMu.Unlock()
	for _, a := range q.actions {
		switch a.kind {
		case actionDeliver:
			deliverAmount += a.amount
		case actionDeliverBulk:
			bulkCount++
		}
	}
	return
}
