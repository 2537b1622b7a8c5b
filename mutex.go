package parkinglot

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// Mutex is an atomic-word state machine: its fast path touches only
// its own word; its slow path delegates to this package's parking
// API. Grounded on synx/bit_lock.go's bit-packed locking idiom,
// generalized from "one lock bit" to "a lock bit plus a PARKED bit
// that records whether anyone might be waiting."
//
// The zero Mutex is unlocked, matching sync.Mutex.
type Mutex struct {
	_     noCopy
	state atomic.Uint32
}

const (
	mutexLocked = uint32(1)
	mutexParked = uint32(2)
)

// mutexSpinLimit bounds the pure-spin phase of the slow path, after
// which a contended Lock sets mutexParked (if not already set) and
// calls Park.
const mutexSpinLimit = 4000

// Lock acquires the mutex, blocking until it is available.
func (m *Mutex) Lock() {
	if m.state.CompareAndSwap(0, mutexLocked) {
		return
	}
	m.lockSlow()
}

func (m *Mutex) lockSlow() {
	var spins int
	for {
		s := m.state.Load()
		if s&mutexLocked == 0 {
			if m.state.CompareAndSwap(s, s|mutexLocked) {
				return
			}
			continue
		}
		if spins < mutexSpinLimit && trySpin(&spins) {
			continue
		}

		if s&mutexParked == 0 {
			if !m.state.CompareAndSwap(s, s|mutexParked) {
				continue
			}
		}

		Park(
			m.key(),
			func() bool {
				return m.state.Load() == mutexLocked|mutexParked
			},
			nil,
			nil,
			time.Time{},
		)
		spins = 0
	}
}

// Unlock releases the mutex. It panics if the mutex is not locked,
// matching sync.Mutex.
func (m *Mutex) Unlock() {
	if m.state.CompareAndSwap(mutexLocked, 0) {
		return
	}
	// Either mutexParked is set (go through the slow path so the
	// dequeue decision and the word update happen atomically under
	// the bucket lock) or the mutex was not locked at all.
	if m.state.Load()&mutexLocked == 0 {
		panic("parkinglot: unlock of unlocked Mutex")
	}
	m.unlockSlow()
}

func (m *Mutex) unlockSlow() {
	UnparkOne(m.key(), func(r UnparkResult) {
		if r.HaveMoreThreads {
			m.state.Store(mutexParked)
		} else {
			m.state.Store(0)
		}
	})
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	return m.state.CompareAndSwap(0, mutexLocked)
}

func (m *Mutex) key() uintptr {
	return uintptr(unsafe.Pointer(&m.state))
}

// markParked sets mutexParked, used by Condvar.Signal when it requeues
// a waiter directly onto this mutex's queue: the mutex did not itself
// observe anyone enqueue, so nothing else would otherwise ever clear
// the fast-path Unlock's "I can skip UnparkOne" assumption.
func (m *Mutex) markParked() {
	for {
		s := m.state.Load()
		if s&mutexParked != 0 {
			return
		}
		if m.state.CompareAndSwap(s, s|mutexParked) {
			return
		}
	}
}
