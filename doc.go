// Package parkinglot implements a process-wide parking lot: a generic
// thread-queuing substrate that synchronization primitives (Mutex,
// RWLock, Condvar, Once, Semaphore, WaitGroup) delegate to whenever they
// must block or wake a goroutine.
//
// The parking lot itself owns a sharded hash table of FIFO wait queues
// keyed by an arbitrary integer (conventionally the address of the
// primitive's own atomic word, reinterpreted as a uintptr). Primitives
// keep their fast paths — a CAS on their own word — entirely private;
// only the slow paths touch this package, via Park, UnparkOne,
// UnparkAll, and UnparkRequeue.
//
// This mirrors the design of Rust's parking_lot crate, translated into
// Go: thread records live on the parking goroutine's own stack (or at
// least, escape to the heap only incidentally — this package never
// allocates them independently of a Park call), and are never shared
// outside of queue membership.
package parkinglot

// noCopy may be embedded in a struct to make `go vet`'s -copylocks
// checker flag accidental copies. It must not itself be embedded in a
// type that is passed by value anywhere in this package's own code.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
