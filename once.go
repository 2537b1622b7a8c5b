package parkinglot

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// Once is a one-shot barrier keyed on its own byte. Grounded on
// synx/latch.go's done-flag-plus-waiters shape, generalized from a
// single release event to "exactly one caller runs f; everyone else,
// including f's own caller set, waits for it to finish."
//
// The zero Once is ready to use.
type Once struct {
	_     noCopy
	state atomic.Uint32
	key   uint8
}

const (
	onceIdle    = uint32(0)
	onceRunning = uint32(1)
	onceDone    = uint32(2)
)

func (o *Once) doneKey() uintptr {
	return uintptr(unsafe.Pointer(&o.key))
}

// Do calls f if and only if this is the first call to Do on o, and
// does not return until that call to f (by this goroutine or another)
// completes. If f panics, Do considers it to have completed: later
// calls return without calling f.
func (o *Once) Do(f func()) {
	if o.state.Load() != onceDone {
		o.doSlow(f)
	}
}

func (o *Once) doSlow(f func()) {
	for {
		switch o.state.Load() {
		case onceDone:
			return
		case onceRunning:
			Park(
				o.doneKey(),
				func() bool { return o.state.Load() == onceRunning },
				nil, nil, time.Time{},
			)
		default:
			if o.state.CompareAndSwap(onceIdle, onceRunning) {
				defer func() {
					o.state.Store(onceDone)
					UnparkAll(o.doneKey())
				}()
				f()
				return
			}
		}
	}
}
