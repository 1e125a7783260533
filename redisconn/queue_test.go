package redisconn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendActionCoalescesAdjacentSameKind(t *testing.T) {
	var actions []responseAction
	actions = appendAction(actions, actionIgnore, 1)
	actions = appendAction(actions, actionIgnore, 2)
	actions = appendAction(actions, actionDeliver, 1)
	actions = appendAction(actions, actionDeliver, 1)
	require.Equal(t, []responseAction{
		{kind: actionIgnore, amount: 3},
		{kind: actionDeliver, amount: 2},
	}, actions)
}

func TestAppendActionNeverCoalescesDeliverBulk(t *testing.T) {
	var actions []responseAction
	actions = appendAction(actions, actionDeliverBulk, 3)
	actions = appendAction(actions, actionDeliverBulk, 2)
	require.Equal(t, []responseAction{
		{kind: actionDeliverBulk, amount: 3},
		{kind: actionDeliverBulk, amount: 2},
	}, actions)
}

func TestAppendActionSkipsZeroAmount(t *testing.T) {
	var actions []responseAction
	actions = appendAction(actions, actionIgnore, 0)
	require.Nil(t, actions)
}

func TestQueuesDrainWriteEmptiesAndClearsFlag(t *testing.T) {
	q := newQueues()
	q.submit(fireOneSubmission{})
	require.True(t, q.writeReady.wait(nil))
	batch := q.drainWrite()
	require.Len(t, batch, 1)
	require.False(t, q.writeReady.wait(closedChan()))
}

func TestQueuesPushActionCoalescesAcrossCalls(t *testing.T) {
	q := newQueues()
	q.pushAction(actionIgnore, 1)
	q.pushAction(actionIgnore, 1)
	q.pushAction(actionDeliverBulk, 4)
	deliverAmount, bulkCount := q.depth()
	require.Equal(t, 0, deliverAmount)
	require.Equal(t, 1, bulkCount)

	batch := q.drainActions()
	require.Equal(t, []responseAction{
		{kind: actionIgnore, amount: 2},
		{kind: actionDeliverBulk, amount: 4},
	}, batch)
}

func TestQueuesSinkFIFOOrder(t *testing.T) {
	q := newQueues()
	a, b := newSingleSink(), newSingleSink()
	q.pushSingleSink(a)
	q.pushSingleSink(b)
	require.Equal(t, a, q.popSingleSink())
	require.Equal(t, b, q.popSingleSink())
}

func TestQueuesFailAllResolvesEverything(t *testing.T) {
	q := newQueues()
	askSink := newSingleSink()
	bulkSink := newBulkSink()
	q.submit(askOneSubmission{sink: askSink})
	q.submit(askManySubmission{sink: bulkSink})

	parkedSingle := newSingleSink()
	parkedBulk := newBulkSink()
	q.pushSingleSink(parkedSingle)
	q.pushBulkSink(parkedBulk)
	q.pushAction(actionDeliver, 1)

	failure := errors.New("boom")
	q.failAll(failure)

	res := <-askSink
	require.Equal(t, failure, res.Err)
	bres := <-bulkSink
	require.Equal(t, failure, bres.Err)
	pres := <-parkedSingle
	require.Equal(t, failure, pres.Err)
	pbres := <-parkedBulk
	require.Equal(t, failure, pbres.Err)

	deliverAmount, bulkCount := q.depth()
	require.Equal(t, 0, deliverAmount)
	require.Equal(t, 0, bulkCount)
}

func TestActionQueueCoalescingScenario(t *testing.T) {
	q := newQueues()
	q.pushAction(actionIgnore, 1)
	q.pushAction(actionIgnore, 1)
	q.pushAction(actionIgnore, 1)
	q.pushAction(actionDeliver, 1)
	q.pushAction(actionDeliver, 1)

	require.Equal(t, []responseAction{
		{kind: actionIgnore, amount: 3},
		{kind: actionDeliver, amount: 2},
	}, q.drainActions())
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
