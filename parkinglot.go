// Package-level public parking API: Park, UnparkOne, UnparkAll, and
// UnparkRequeue. These four operations are the entire surface
// synchronization primitives in this module use to block or wake
// goroutines.
package parkinglot

import "time"

// UnparkResult is returned by UnparkOne (and seen by its callback)
// reporting whether a thread was found for the key, and whether any
// other threads queued on that same key remain in the bucket.
type UnparkResult struct {
	UnparkedThread  bool
	HaveMoreThreads bool
}

// RequeueOp is validate's verdict in UnparkRequeue, deciding what to
// do with the threads unlinked from the source key.
type RequeueOp int

const (
	// Abort relinks the unlinked threads back onto the source key,
	// unchanged, and requeues/unparks nothing.
	Abort RequeueOp = iota
	// RequeueOneUnpark unparks the first unlinked thread directly and
	// relinks everyone else back onto the source key, unchanged — the
	// verdict for "wake exactly one, and don't disturb anyone else
	// waiting on the same source key".
	RequeueOneUnpark
	// RequeueOneUnparkRest unparks the first unlinked thread directly
	// and requeues everyone else onto the destination key.
	RequeueOneUnparkRest
	// RequeueAll requeues every unlinked thread onto the destination
	// key without waking any of them.
	RequeueAll
)

// badKey is reserved: callers must never Park or Unpark on key 0, since
// threadData.key == 0 means "not queued" internally.
const badKey = 0

// Park enqueues the calling goroutine on key and blocks until woken or
// timed out. validate runs under the bucket lock and, if it returns
// false, Park returns false immediately
// without enqueuing — this is what closes the race between a
// primitive's fast-path decision and Park actually taking the bucket
// lock. beforeSleep runs with no locks held, after the thread is
// queued but before it blocks; primitives use it to release another
// resource (e.g. a mutex) only once a waiter is guaranteed to observe
// the wake. If deadline is the zero Time, Park blocks without a
// timeout. timedOut, if non-nil, is called (under the bucket lock)
// only on a genuine timeout, never on a race with a concurrent unpark.
func Park(
	key uintptr,
	validate func() bool,
	beforeSleep func(),
	timedOut func(key uintptr, wasLastThread bool),
	deadline time.Time,
) bool {
	if key == badKey {
		panic("parkinglot: Park called with reserved key 0")
	}

	_, b := lockBucket(key)
	if validate != nil && !validate() {
		b.lock.Unlock()
		return false
	}

	var td threadData
	td.key = key
	td.park = parker{c: make(chan struct{}, 1)}
	td.park.prepare()
	b.enqueue(&td)
	b.lock.Unlock()

	liveCount.Add(1)
	maybeGrow()

	if beforeSleep != nil {
		beforeSleep()
	}

	if deadline.IsZero() {
		td.park.park()
		liveCount.Add(-1)
		return true
	}

	if td.park.parkUntil(deadline) {
		liveCount.Add(-1)
		return true
	}

	// Timed out, or raced with a concurrent unpark: re-lock the bucket
	// and see which actually happened.
	_, b2 := lockBucket(key)
	stillQueued := false
	for cur := b2.head; cur != nil; cur = cur.next {
		if cur == &td {
			stillQueued = true
			break
		}
	}
	if stillQueued {
		b2.unlink(findPrev(b2, &td), &td)
		wasLastThread := !b2.hasKey(key)
		if timedOut != nil {
			timedOut(key, wasLastThread)
		}
		b2.lock.Unlock()
		liveCount.Add(-1)
		return false
	}
	b2.lock.Unlock()

	// A concurrent unparker already removed us; the unpark signal is
	// in flight. Wait for it — it will arrive promptly — and report
	// success. timedOut must not be called in this case.
	td.park.park()
	liveCount.Add(-1)
	return true
}

// findPrev returns the predecessor of target in b's chain, or nil if
// target is the head (or not present). Caller holds b.lock.
func findPrev(b *bucket, target *threadData) *threadData {
	var prev *threadData
	for cur := b.head; cur != nil; cur = cur.next {
		if cur == target {
			return prev
		}
		prev = cur
	}
	return nil
}

// UnparkOne dequeues and wakes at most one goroutine parked on key.
// callback runs under the bucket lock with the UnparkResult it is
// about to return, letting a primitive atomically flip its own state
// (e.g. clear a "has parked waiters" bit iff no thread remains for
// this key) in the same critical section as the dequeue.
//
// UnparkOne always takes the bucket lock, even when the nonempty hint
// suggests the bucket is empty: a slow-path locker may have published
// its intent to park (e.g. set a PARKED-equivalent bit on its own
// word) but not yet reached the point where it enqueues under the
// bucket lock. Skipping the lock in that window would skip callback
// too, which for Mutex/RWLock is exactly the step that clears that
// same bit — a lost wakeup. UnparkAll below takes the bucket lock for
// the same kind of reason: a waiter's validate can run before the
// notifier changes its state word while the waiter's enqueue (which is
// what sets the hint) lands only after the notifier has looked.
func UnparkOne(key uintptr, callback func(UnparkResult)) UnparkResult {
	if key == badKey {
		panic("parkinglot: UnparkOne called with reserved key 0")
	}

	_, b := lockBucket(key)
	found := b.removeOne(key)
	result := UnparkResult{
		UnparkedThread:  found != nil,
		HaveMoreThreads: found != nil && b.hasKey(key),
	}
	if callback != nil {
		callback(result)
	}
	b.lock.Unlock()

	if found != nil {
		found.park.unpark()
	}
	return result
}

// UnparkAll dequeues and wakes every goroutine parked on key, in FIFO
// order, with no callback.
func UnparkAll(key uintptr) int {
	if key == badKey {
		panic("parkinglot: UnparkAll called with reserved key 0")
	}

	if currentTable.Load() == nil {
		return 0
	}

	_, b := lockBucket(key)
	found := b.removeAll(key)
	b.lock.Unlock()

	for _, td := range found {
		td.park.unpark()
	}
	return len(found)
}

// UnparkRequeue moves waiters from keyFrom's queue to keyTo's queue
// without waking them (except possibly the first, per validate's
// verdict), used by Condvar's notify-while-holding-the-mutex
// optimization.
func UnparkRequeue(
	keyFrom, keyTo uintptr,
	validate func() RequeueOp,
	callback func(op RequeueOp, count int),
) int {
	if keyFrom == badKey || keyTo == badKey {
		panic("parkinglot: UnparkRequeue called with reserved key 0")
	}

	_, from, to := lockBuckets(keyFrom, keyTo)

	unlinked := from.removeAll(keyFrom)

	op := Abort
	if validate != nil {
		op = validate()
	}

	if op == Abort {
		for _, td := range unlinked {
			from.enqueue(td)
		}
		unlockBuckets(to, from)
		return 0
	}

	var directUnpark *threadData
	rest := unlinked
	if op == RequeueOneUnpark || op == RequeueOneUnparkRest {
		if len(unlinked) > 0 {
			directUnpark = unlinked[0]
			rest = unlinked[1:]
		} else {
			rest = nil
		}
	}

	count := 0
	switch op {
	case RequeueAll, RequeueOneUnparkRest:
		// Move the remainder onto the destination key.
		for _, td := range rest {
			td.key = keyTo
			to.enqueue(td)
			count++
		}
	case RequeueOneUnpark:
		// Only the first record moves (to be unparked directly); any
		// other threads waiting on keyFrom were not this notify's
		// business and go back exactly where they were.
		for _, td := range rest {
			from.enqueue(td)
		}
	}

	if callback != nil {
		callback(op, count)
	}

	unlockBuckets(to, from)

	if directUnpark != nil {
		directUnpark.park.unpark()
	}
	return count
}
