package redis

import "context"

// Sender is the contract redisconn.Connection implements: fire-and-forget
// and wait-for-reply submission, each singly or batched, and nothing
// else. It exists as an interface, separate from *redisconn.Connection,
// so callers and tests can substitute a fake without importing the
// connection package.
type Sender interface {
	// FireAndForgetQuery enqueues q for the wire; its reply is read and
	// discarded. Returns as soon as q is scheduled.
	FireAndForgetQuery(q Query)
	// FireAndForgetQueries enqueues qs as a single pipelined batch; all
	// replies are discarded. Preserves order with every other submission
	// from the calling goroutine.
	FireAndForgetQueries(qs Queries)
	// GetResultOfQuery enqueues q and blocks until its reply arrives or
	// ctx is done or the connection reports a core error.
	GetResultOfQuery(ctx context.Context, q Query) (Reply, error)
	// GetResultsOfQueries enqueues qs as one pipelined batch and blocks
	// until every reply arrives. On success len(result) == len(qs).
	GetResultsOfQueries(ctx context.Context, qs Queries) (Replies, error)
}

// Sync wraps a Sender with a context.Background()-scoped convenience API
// for callers that never need cancellation.
type Sync struct {
	S Sender
}

// Do builds a Query from cmd/args and blocks for its Reply.
func (s Sync) Do(cmd string, args ...interface{}) (Reply, error) {
	return s.S.GetResultOfQuery(context.Background(), Command(cmd, args...))
}

// DoMany blocks for the Replies of a pipelined batch of Queries.
func (s Sync) DoMany(qs Queries) (Replies, error) {
	return s.S.GetResultsOfQueries(context.Background(), qs)
}
