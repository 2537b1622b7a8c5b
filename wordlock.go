package parkinglot

import (
	"sync/atomic"

	"github.com/gopherlocks/parkinglot/internal/opt"
)

// wordLock is the minimal mutex that protects a single bucket. It
// must not itself call into the public parking API — that would be a
// bucket locking itself — so its slow path cannot reuse Park/UnparkOne.
// Instead it spins a bounded number of times and
// then falls back to an embedded FIFO queue of stack-resident nodes,
// each blocking on an opt.Sema: the one blocking point in this module
// outside of a threadData's own parker.
//
// Uncontended Lock is one CAS on locked, matching the bit this
// module's Mutex and RWLock also reserve for "am I held". Unlock is
// not a single store: it always takes qlock to check the queue before
// either clearing locked or handing off to the first queued waiter.
// The queue itself is protected by a second, always-briefly-held lock
// (qlock) rather than a fully lock-free MCS splice: word locks are held
// for O(one bucket FIFO scan), so qlock's own hold time is negligible,
// and this avoids the unsafe-pointer prev-link fixup a strictly
// lock-free MCS queue needs to hand off between enqueue and the wake of
// a still-linking predecessor. qlock is a spliceLock rather than a bare
// CAS spin so that head/tail splices themselves stay FIFO under heavy
// bucket contention, instead of letting a late arrival barge ahead of
// a goroutine that has been spinning on qlock the longest.
type wordLock struct {
	_     noCopy
	state atomic.Uint32 // bit 0: locked
	qlock spliceLock
	head  *wordLockNode
	tail  *wordLockNode
}

const wordLockLockedBit = uint32(1)

// wordLockNode is a queue node for the word lock's contended fallback.
// Callers declare it as a local on their own stack frame.
type wordLockNode struct {
	next  *wordLockNode
	ready opt.Sema
}

// wordLockSpinLimit bounds the pure-spin phase before a contended
// Lock falls back to the queue. Bucket critical sections are tiny, so
// most contention resolves within a handful of spins.
const wordLockSpinLimit = 40

// Lock acquires the word lock.
func (w *wordLock) Lock() {
	if w.state.CompareAndSwap(0, wordLockLockedBit) {
		return
	}
	w.lockSlow()
}

func (w *wordLock) lockSlow() {
	for spins := 0; spins < wordLockSpinLimit; spins++ {
		if w.state.CompareAndSwap(0, wordLockLockedBit) {
			return
		}
		trySpin(&spins)
	}

	var node wordLockNode
	w.qlock.Lock()
	if w.state.CompareAndSwap(0, wordLockLockedBit) {
		// Lock became free while we were acquiring qlock; no need to
		// queue at all.
		w.qlock.Unlock()
		return
	}
	if w.tail == nil {
		w.head = &node
	} else {
		w.tail.next = &node
	}
	w.tail = &node
	w.qlock.Unlock()

	node.ready.Acquire()
}

// Unlock releases the word lock, handing off directly to the next
// queued waiter if one exists (so the lock bit never has to be
// re-acquired by the woken waiter).
func (w *wordLock) Unlock() {
	w.qlock.Lock()
	if w.head == nil {
		// Clear locked while still holding qlock, so a waiter that takes
		// qlock next either sees the lock free or is seen by a later
		// Unlock; never queued behind a lock nobody holds.
		w.state.Store(0)
		w.qlock.Unlock()
		return
	}
	next := w.head
	w.head = next.next
	if w.head == nil {
		w.tail = nil
	}
	w.qlock.Unlock()
	// Lock bit stays set: ownership transfers directly to `next`.
	next.ready.Release()
}
