package parkinglot

import (
	"sync/atomic"
	"time"
	"unsafe"
)

// WaitGroup waits for a collection of goroutines to finish. Grounded
// on synx/rally.go's generation-counted arrival barrier, simplified
// from "N parties meet, then all are released together" to the
// one-directional accumulate/drain shape of sync.WaitGroup, with
// UnparkAll standing in for rally.go's per-generation semaphore fan-out.
//
// The zero WaitGroup is ready to use, with a counter of zero.
type WaitGroup struct {
	_       noCopy
	counter atomic.Int64
	key     uint8
}

func (wg *WaitGroup) doneKey() uintptr {
	return uintptr(unsafe.Pointer(&wg.key))
}

// Add adds delta (which may be negative) to the counter. If the
// counter becomes zero, all goroutines blocked in Wait are released.
// It panics if the counter goes negative.
func (wg *WaitGroup) Add(delta int) {
	v := wg.counter.Add(int64(delta))
	if v < 0 {
		panic("parkinglot: negative WaitGroup counter")
	}
	if v == 0 {
		UnparkAll(wg.doneKey())
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait blocks until the counter reaches zero.
func (wg *WaitGroup) Wait() {
	for wg.counter.Load() != 0 {
		Park(
			wg.doneKey(),
			func() bool { return wg.counter.Load() != 0 },
			nil, nil, time.Time{},
		)
	}
}
