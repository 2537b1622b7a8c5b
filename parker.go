package parkinglot

import "time"

// parker is a one-shot blocking primitive with timeout support. Go
// exposes no linkname'd futex with timeout support, so the idiomatic
// substitute — the same one the standard library itself reaches for
// in context.WithTimeout and friends — is a capacity-1 channel raced
// against a time.Timer. A fresh parker is built for every Park call,
// so it never actually carries a stale signal across episodes; prepare
// still drains it before publish, the same defensive habit the rest
// of this package applies to any freshly constructed channel-backed
// wait primitive.
type parker struct {
	c chan struct{}
}

// prepare resets the parker to the unsignaled state. Must be called
// before the thread record is published into a bucket, so that a
// signal from a *previous* park episode can never be mistaken for a
// signal belonging to this one.
func (p *parker) prepare() {
	select {
	case <-p.c:
	default:
	}
}

// park blocks until unpark is called. May wake spuriously only in the
// sense that callers must re-check the condition they parked for —
// this implementation itself never wakes without a matching unpark.
func (p *parker) park() {
	<-p.c
}

// parkUntil blocks until unpark is called or the deadline elapses. It
// returns true iff unparked. If a signal and the deadline race, the
// select below gives the Go runtime's own (effectively random) choice
// between two ready cases; Park's caller re-locks the bucket and checks
// real queue membership to resolve the race definitively, rather than
// trusting this boolean alone.
func (p *parker) parkUntil(deadline time.Time) bool {
	d := time.Until(deadline)
	if d <= 0 {
		select {
		case <-p.c:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.c:
		return true
	case <-t.C:
		return false
	}
}

// unpark signals the parker. Safe to call exactly once per
// prepare/park episode, from any goroutine. Non-blocking: a signal
// delivered before the corresponding park call is simply banked.
func (p *parker) unpark() {
	select {
	case p.c <- struct{}{}:
	default:
	}
}
