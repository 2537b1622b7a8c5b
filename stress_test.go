package parkinglot

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// TestStressMutexRWLockCondvar runs a randomized mixed workload across
// Mutex, RWLock, and Condvar and checks the result against a simple
// reference model: every counted operation must be reflected exactly
// once in its guarding primitive's counter.
func TestStressMutexRWLockCondvar(t *testing.T) {
	var m Mutex
	var total int64

	var rw RWLock
	var shared int64

	var cv Condvar
	var queueLen int

	// Reference model: how many operations of each counted kind the
	// workers performed.
	var wantTotal, wantShared, wantQueued atomic.Int64

	const workers = 40
	const opsPerWorker = 200

	var producers errgroup.Group
	for i := 0; i < workers; i++ {
		seed := int64(i) + 1
		producers.Go(func() error {
			r := rand.New(rand.NewSource(seed))
			for j := 0; j < opsPerWorker; j++ {
				switch r.Intn(3) {
				case 0:
					m.Lock()
					total++
					m.Unlock()
					wantTotal.Add(1)
				case 1:
					if r.Intn(4) == 0 {
						rw.Lock()
						shared++
						rw.Unlock()
						wantShared.Add(1)
					} else {
						rw.RLock()
						_ = shared
						rw.RUnlock()
					}
				case 2:
					m.Lock()
					queueLen++
					cv.Signal()
					m.Unlock()
					wantQueued.Add(1)
				}
			}
			return nil
		})
	}

	var drained int64
	consumerDone := make(chan struct{})
	stopConsumer := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			m.Lock()
			for queueLen == 0 {
				select {
				case <-stopConsumer:
					m.Unlock()
					return
				default:
				}
				if !cv.WaitTimeout(&m, 20*time.Millisecond) && queueLen == 0 {
					select {
					case <-stopConsumer:
						m.Unlock()
						return
					default:
						continue
					}
				}
			}
			queueLen--
			drained++
			m.Unlock()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- producers.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-ctx.Done():
		t.Fatal("producers did not finish in time")
	}

	// Let the consumer drain whatever is left, then stop it.
	time.Sleep(50 * time.Millisecond)
	close(stopConsumer)
	<-consumerDone

	m.Lock()
	remaining := queueLen
	m.Unlock()

	if remaining != 0 {
		t.Fatalf("consumer left %d items undrained", remaining)
	}
	if total == 0 {
		t.Fatal("mutex-guarded total never advanced")
	}
	if total != wantTotal.Load() {
		t.Fatalf("mutex-guarded total = %d, want %d", total, wantTotal.Load())
	}
	if shared != wantShared.Load() {
		t.Fatalf("rwlock-guarded shared = %d, want %d", shared, wantShared.Load())
	}
	if drained != wantQueued.Load() {
		t.Fatalf("consumer drained %d items, want %d", drained, wantQueued.Load())
	}
}
