package ring

import "sync/atomic"

// Ring is a fixed-capacity SPSC event buffer. Capacity must be a power
// of two; head/tail are monotonic counters masked down to a slot
// index, the well-known equivalent of a mod-N scheme that avoids
// wasting a slot to disambiguate full from empty. A single goroutine
// calls TryPush; a single goroutine (the
// logger) calls ConsumeRuns — no further synchronization is needed
// between them beyond the atomics here.
type Ring struct {
	mask    uint64
	slots   []Record
	head    atomic.Uint64 // next slot the producer will write
	tail    atomic.Uint64 // next slot the consumer will read
	ignored atomic.Uint64 // count of records dropped because the ring was full
}

// New allocates a ring of the given capacity, rounded up to the next
// power of two.
func New(capacity int) *Ring {
	n := nextPow2(capacity)
	return &Ring{mask: uint64(n - 1), slots: make([]Record, n)}
}

func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TryPush appends rec without blocking. If the ring is full, rec is
// dropped and the ignored counter is incremented — the producer (an
// application goroutine mid-call) must never stall.
func (r *Ring) TryPush(rec Record) (ok bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head-tail >= uint64(len(r.slots)) {
		r.ignored.Add(1)
		return false
	}
	r.slots[head&r.mask] = rec
	// Publish last: the consumer must never observe an advanced head
	// before the slot it points past is fully written.
	r.head.Store(head + 1)
	return true
}

// Ignored returns the running count of records dropped due to overload.
func (r *Ring) Ignored() uint64 { return r.ignored.Load() }

// Len returns the number of records currently buffered.
func (r *Ring) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

// ConsumeRuns drains every currently-available record, calling fn once
// per contiguous run of slots (i.e. without wrapping past the end of
// the backing array) so the logger can do a single bulk write per run.
// fn must not retain the slice past the call.
func (r *Ring) ConsumeRuns(fn func([]Record)) {
	tail := r.tail.Load()
	head := r.head.Load()
	for tail < head {
		start := tail & r.mask
		runLen := head - tail
		if remaining := uint64(len(r.slots)) - start; runLen > remaining {
			runLen = remaining
		}
		fn(r.slots[start : start+runLen])
		tail += runLen
	}
	r.tail.Store(tail)
}
