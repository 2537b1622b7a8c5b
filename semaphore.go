package parkinglot

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// Semaphore is a counting semaphore: Acquire blocks until n permits
// are available, Release makes n permits available again. Grounded on
// synx/semaphore.go's permit counter, adapted from its Dijkstra-style
// negative-count-means-waiters bookkeeping to a never-negative counter
// with retry-on-wake: this package's wakeup primitive is UnparkAll, not
// a runtime semaphore that can release an exact waiter count, so every
// waiter instead rechecks the counter itself under Park's validate
// after each Release — the same retry-after-broadcast shape this
// module's WaitGroup uses for its counter.
type Semaphore struct {
	_       noCopy
	permits atomic.Int64
	key     uint8
}

// NewSemaphore returns a Semaphore initialized with n permits.
func NewSemaphore(n int64) *Semaphore {
	s := &Semaphore{}
	s.permits.Store(n)
	return s
}

func (s *Semaphore) waitKey() uintptr {
	return uintptr(unsafe.Pointer(&s.key))
}

// Acquire blocks until n permits are available, then takes them.
func (s *Semaphore) Acquire(n int64) {
	for {
		if s.TryAcquire(n) {
			return
		}
		Park(
			s.waitKey(),
			func() bool { return s.permits.Load() < n },
			nil, nil, time.Time{},
		)
	}
}

// TryAcquire takes n permits without blocking, returning false if
// unavailable.
func (s *Semaphore) TryAcquire(n int64) bool {
	for {
		p := s.permits.Load()
		if p < n {
			return false
		}
		if s.permits.CompareAndSwap(p, p-n) {
			return true
		}
	}
}

// Release makes n permits available, waking every waiter so each can
// recheck whether its own request is now satisfiable.
func (s *Semaphore) Release(n int64) {
	s.permits.Add(n)
	UnparkAll(s.waitKey())
}
