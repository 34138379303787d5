package frame

import "sync/atomic"

// Region is one augmented stack frame: previous-frame link, packed
// canary+tag, generation, return address, in that fixed order. Every word is an
// atomic so the monitor goroutine can read a live frame concurrently
// with the owning goroutine publishing into it.
type Region struct {
	prevIdx    atomic.Int64  // -1 marks the outermost frame
	canaryTag  atomic.Uint64 // canary<<32 | tag
	generation atomic.Uint64
	returnPC   atomic.Uint64
}

// snapshot reads all four words. It is not itself a consistency
// guarantee — the caller (monitor) must bracket a whole stack walk
// with a TLS sequence-lock check, not rely on any single Region read
// being atomic as a group.
func (r *Region) snapshot() (prevIdx int64, canary uint32, tag uint32, generation uint64, pc uintptr) {
	prevIdx = r.prevIdx.Load()
	ct := r.canaryTag.Load()
	canary = uint32(ct >> 32)
	tag = uint32(ct)
	generation = r.generation.Load()
	pc = uintptr(r.returnPC.Load())
	return
}

func (r *Region) store(prevIdx int64, canary uint32, tag uint32, generation uint64, pc uintptr) {
	r.prevIdx.Store(prevIdx)
	r.canaryTag.Store(uint64(canary)<<32 | uint64(tag))
	r.generation.Store(generation)
	r.returnPC.Store(uint64(pc))
}

// Arena is the fixed-capacity shadow stack backing one goroutine's
// augmented frames. It is allocated once (NewArena) and never
// reallocated afterward: a *Region obtained from At stays valid for
// the goroutine's whole lifetime, which is the property the
// monitor's lock-free cross-goroutine reads depend on.
type Arena struct {
	regions [MaxCallDepth]Region
}

// NewArena allocates a zeroed arena.
func NewArena() *Arena { return new(Arena) }

// At returns the Region at idx, or nil if idx is out of range. This
// is the narrow, bounds-checked primitive the design notes call for
// in place of raw pointer arithmetic against another thread's stack.
func (a *Arena) At(idx int32) *Region {
	if idx < 0 || int(idx) >= len(a.regions) {
		return nil
	}
	return &a.regions[idx]
}
