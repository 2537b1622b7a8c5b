package opt

import (
	_ "unsafe" // for go:linkname
)

// Sema is a zero-allocation, OS-backed one-shot blocking primitive. It is
// a thin wrapper around the Go runtime's own semaphore implementation,
// the same primitive sync.Mutex and sync.WaitGroup block on — which
// bottoms out in a futex, a Windows keyed event, or a condvar depending
// on GOOS. It carries no queue of its own; pairing exactly one Acquire
// with exactly one Release is the caller's responsibility.
type Sema uint32

// Acquire blocks until a matching Release has been observed.
func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release wakes one blocked Acquire, or leaves a permit banked for the
// next Acquire if none is currently blocked.
func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
