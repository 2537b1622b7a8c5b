package parkinglot

// threadData is the per-park-episode thread record. Go has no stable
// thread-local-storage hook tied to an OS thread's lifetime —
// goroutines migrate across OS threads and expose no exit callback to
// a library — so this is not a single long-lived record cached for
// the goroutine's whole life. Instead, Park declares one as a local
// variable for the duration of a single park call. The record cannot
// be reclaimed while queued, because Park does not return (and so the
// local does not go out of scope) until the record has been dequeued
// by either an unparker or the timeout path; it is never shared or
// heap-allocated independently of a Park call.
type threadData struct {
	// key is the key this record is currently queued on. Zero means
	// "not queued" — callers never queue on key 0 (see badKey in
	// parkinglot.go).
	key uintptr

	// next is the intrusive FIFO link to the next record in the same
	// bucket's queue. Owned by whichever goroutine holds that bucket's
	// word lock.
	next *threadData

	// park is this record's one-shot blocking primitive.
	park parker
}
