package parkinglot

import (
	"sync"
	"testing"
)

func TestSpliceLockFIFOMutualExclusion(t *testing.T) {
	var l spliceLock
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	var counter int64
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.Lock()
			counter++
			l.Unlock()
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}
