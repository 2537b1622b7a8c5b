package parkinglot

import (
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/gopherlocks/parkinglot/internal/opt"
)

// bucket is one slot of the parking-lot hash table: a word lock
// guarding a FIFO chain of threadData records queued for any key that
// hashes to this bucket, plus an atomic "nonempty" hint that is written
// only under the lock and tracks whether the chain is empty. The
// unpark functions do not rely on it; they always take the lock.
//
// _pad trails the struct rather than leading it: the word lock and
// hint are the hot fields every Park/Unpark touches, so they should
// start a cache line; the padding only needs to stop bucket N+1's hot
// fields from sharing bucket N's line.
type bucket struct {
	lock     wordLock
	nonEmpty atomic.Bool
	head     *threadData
	tail     *threadData
	_pad     opt.BucketPad_
}

// enqueue appends td to the bucket's FIFO. Caller holds b.lock.
func (b *bucket) enqueue(td *threadData) {
	if b.tail == nil {
		b.head = td
	} else {
		b.tail.next = td
	}
	b.tail = td
	b.nonEmpty.Store(true)
}

// removeOne unlinks the first record in the chain whose key equals
// key, returning it (or nil if none match). Caller holds b.lock.
func (b *bucket) removeOne(key uintptr) *threadData {
	var prev *threadData
	for cur := b.head; cur != nil; cur = cur.next {
		if cur.key == key {
			b.unlink(prev, cur)
			return cur
		}
		prev = cur
	}
	return nil
}

// removeAll unlinks every record in the chain whose key equals key,
// returning them in original FIFO order. Caller holds b.lock.
func (b *bucket) removeAll(key uintptr) []*threadData {
	var out []*threadData
	var prev *threadData
	cur := b.head
	for cur != nil {
		next := cur.next
		if cur.key == key {
			b.unlink(prev, cur)
			out = append(out, cur)
		} else {
			prev = cur
		}
		cur = next
	}
	return out
}

// hasKey reports whether any record in the chain still has key key.
// Caller holds b.lock.
func (b *bucket) hasKey(key uintptr) bool {
	for cur := b.head; cur != nil; cur = cur.next {
		if cur.key == key {
			return true
		}
	}
	return false
}

// unlink removes cur (whose predecessor in the chain is prev, or nil
// if cur is the head) from the bucket's FIFO. Caller holds b.lock.
func (b *bucket) unlink(prev, cur *threadData) {
	if prev == nil {
		b.head = cur.next
	} else {
		prev.next = cur.next
	}
	if cur == b.tail {
		b.tail = prev
	}
	cur.next = nil
	if b.head == nil {
		b.nonEmpty.Store(false)
	}
}

// table is the sharded hash table: a power-of-two array of buckets.
type table struct {
	buckets []bucket
	mask    uintptr
}

func newTable(bucketCount int) *table {
	return &table{
		buckets: make([]bucket, bucketCount),
		mask:    uintptr(bucketCount - 1),
	}
}

func (t *table) bucketFor(key uintptr) *bucket {
	return &t.buckets[hashKey(key)>>(bits.UintSize-bits.Len(uint(t.mask)))]
}

// hashKey mixes all bits of the key into the bucket-index space with a
// Fibonacci-style multiplicative hash; bucketFor takes the index from
// the product's top bits, which depend on every bit of the key.
func hashKey(key uintptr) uintptr {
	const fib64 = 0x9E3779B97F4A7C15
	const fib32 = 0x9E3779B9
	if is64bit {
		return uintptr(uint64(key) * fib64)
	}
	return key * fib32
}

const is64bit = ^uintptr(0)>>32 != 0

const (
	initialBucketCount = 16
	// loadFactorDivisor: a table grows once parked threads exceed
	// bucketCount/loadFactorDivisor, keeping the average bucket chain
	// short enough that a Park/Unpark's FIFO scan stays cheap.
	loadFactorDivisor = 3
)

var (
	currentTable  atomic.Pointer[table]
	bootstrapLock wordLock
	liveCount     atomic.Int64
)

// loadTable returns the current hash table, lazily creating the
// initial one under the bootstrap word lock so no table exists until
// the first Park or Unpark actually needs one. The bootstrap lock is
// itself a wordLock, so this bootstrap step never recurses into the
// public parking API.
func loadTable() *table {
	if t := currentTable.Load(); t != nil {
		return t
	}
	bootstrapLock.Lock()
	defer bootstrapLock.Unlock()
	if t := currentTable.Load(); t != nil {
		return t
	}
	t := newTable(initialBucketCount)
	currentTable.Store(t)
	return t
}

// lockBucket hashes key, locks the bucket that currently owns it, and
// returns both the table and bucket actually locked. If a resize swaps
// the table pointer between the hash computation and the lock
// acquisition, it unlocks, re-reads the table, and retries, so a
// caller never ends up holding a lock on a bucket from a table that's
// already been superseded.
func lockBucket(key uintptr) (*table, *bucket) {
	for {
		t := loadTable()
		b := t.bucketFor(key)
		b.lock.Lock()
		if currentTable.Load() == t {
			return t, b
		}
		b.lock.Unlock()
	}
}

// lockBuckets locks the buckets for two keys in a deterministic order
// (by bucket address) to avoid deadlocking against a concurrent
// requeue targeting the same two buckets in the opposite order.
// Returns the table both buckets were locked against, and the two
// buckets (which may be the same bucket if the keys collide).
func lockBuckets(keyA, keyB uintptr) (t *table, a, b *bucket) {
	for {
		t = loadTable()
		a = t.bucketFor(keyA)
		b = t.bucketFor(keyB)
		if a == b {
			a.lock.Lock()
		} else if uintptrOf(a) < uintptrOf(b) {
			a.lock.Lock()
			b.lock.Lock()
		} else {
			b.lock.Lock()
			a.lock.Lock()
		}
		if currentTable.Load() == t {
			return t, a, b
		}
		a.lock.Unlock()
		if a != b {
			b.lock.Unlock()
		}
	}
}

func unlockBuckets(a, b *bucket) {
	// UnparkRequeue calls this as unlockBuckets(dest, source): releasing
	// the destination bucket first lets a waiter the requeue just moved
	// there start making progress without waiting on the source bucket
	// lock to drop too.
	a.lock.Unlock()
	if a != b {
		b.lock.Unlock()
	}
}

// maybeGrow checks whether the live parked-thread count has outgrown
// the current table's load factor and, if so, grows it. Must be
// called with no bucket locks held, since it acquires every bucket's
// lock while rehashing.
//
// Go has no hook analogous to "a new OS thread registered itself",
// since goroutines have no stable per-thread identity across calls;
// this module instead grows based on concurrent queue depth, which is
// the quantity the load factor actually protects against — long
// bucket chains that turn every Park/Unpark's linear scan slow.
func maybeGrow() {
	t := currentTable.Load()
	if t == nil || int(liveCount.Load()) <= len(t.buckets)/loadFactorDivisor {
		return
	}
	bootstrapLock.Lock()
	defer bootstrapLock.Unlock()

	t = currentTable.Load()
	if t == nil || int(liveCount.Load()) <= len(t.buckets)/loadFactorDivisor {
		return
	}

	newT := newTable(len(t.buckets) * 2)

	// Publish the new table before draining the old one: any racer
	// that already holds (or is about to take) an old bucket's lock
	// will re-check currentTable after locking and retry against
	// newT, so it can never observe a bucket we've already emptied as
	// if it were still authoritative.
	currentTable.Store(newT)

	for i := range t.buckets {
		old := &t.buckets[i]
		old.lock.Lock()
		head := old.head
		old.head, old.tail = nil, nil
		old.nonEmpty.Store(false)
		old.lock.Unlock()

		for cur := head; cur != nil; {
			next := cur.next
			cur.next = nil
			nb := newT.bucketFor(cur.key)
			nb.lock.Lock()
			nb.enqueue(cur)
			nb.lock.Unlock()
			cur = next
		}
	}
}

func uintptrOf(b *bucket) uintptr {
	return uintptr(unsafe.Pointer(b))
}
