package redisconn

// flag is a single-consumer, edge-triggered latch: wait suspends until
// some producer calls set (or returns immediately if already set); the
// consumer calls clear once it has observed whatever condition set
// signaled to be drained. It is not a counting semaphore - multiple
// set calls between two wait/clear cycles collapse into one wakeup.
//
// Correctness of the "did more work arrive while I was clearing"
// question is not this type's job: callers that share a queue between
// producer and consumer must check "is the queue empty" and call clear
// under the same mutex that guards the queue, so an append-then-set from
// a producer can never race a clear into silently swallowing a pending
// wakeup. See queues.drainWrite/drainActions for that pairing.
type flag struct {
	ch chan struct{}
}

func newFlag() flag {
	return flag{ch: make(chan struct{}, 1)}
}

// set marks the flag and wakes a waiter, if any. Idempotent while
// already set.
func (f flag) set() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// wait blocks until set is called, or returns immediately if the flag
// is already set. It returns false without waiting if done fires first.
func (f flag) wait(done <-chan struct{}) bool {
	select {
	case <-f.ch:
		return true
	default:
	}
	select {
	case <-f.ch:
		return true
	case <-done:
		return false
	}
}

// clear resets the flag. Safe to call when already clear.
func (f flag) clear() {
	select {
	case <-f.ch:
	default:
	}
}
