package frame

import "sync/atomic"

// TLS is the per-goroutine handshake region: the generation counter,
// the current frame index (the Go-arena analogue of the current fp),
// a canary, and the slot index the owning goroutine was assigned in
// the thread registry. The pair
// (generation, frameIdx) is the sequence lock the monitor uses to
// detect a stack that changed shape mid-walk.
type TLS struct {
	generation atomic.Uint64
	frameIdx   atomic.Int32 // -1 == no live frame
	canary     uint32       // constant once seeded
	slot       atomic.Int32
	arena      *Arena
}

// NewTLS allocates a TLS region with a fresh arena. The slot index is
// unknown until the registry hands one out, so it defaults to -1 and
// is filled in by SetSlot once acquired — the Go-native analogue of
// register_thread_info running after, not during, slot acquisition.
func NewTLS() *TLS {
	t := &TLS{canary: Canary, arena: NewArena()}
	t.frameIdx.Store(-1)
	t.slot.Store(-1)
	return t
}

// Arena returns the goroutine's shadow stack.
func (t *TLS) Arena() *Arena { return t.arena }

// SetSlot records the registry slot this goroutine owns, so the
// goroutine can look itself up in O(1) later.
func (t *TLS) SetSlot(i int32) { t.slot.Store(i) }

// Slot returns the goroutine's registry slot index, or -1 if unset.
func (t *TLS) Slot() int32 { return t.slot.Load() }

// Canary returns the TLS canary word (constant, sentinel-valued once
// seeded).
func (t *TLS) Canary() uint32 { return t.canary }

// Snapshot returns the sequence-lock pair (generation, frameIdx) the
// monitor reads before and after a stack walk.
func (t *TLS) Snapshot() (generation uint64, frameIdx int32) {
	generation = t.generation.Load()
	frameIdx = t.frameIdx.Load()
	return
}

// SeedOutermost installs the thread-start (or main) frame at arena
// index 0: generation 0, canary set, no parent. Main and worker
// goroutines seed their outermost frame identically. Returns the
// matching exit closure.
func (t *TLS) SeedOutermost() (exit func()) {
	r := t.arena.At(0)
	r.store(-1, t.canary, 0, 0, 0)
	t.generation.Store(0)
	t.frameIdx.Store(0)
	return func() { t.frameIdx.Store(-1) }
}

// Enter publishes a new augmented frame as the child of whatever
// frame is currently live, standing in for the asm prologue a
// compiler-assist pass would emit. pc is the caller's return address,
// ordinarily obtained by the instrumentation call site via
// runtime.Caller. Enter degrades to a no-op once MaxCallDepth is
// exceeded rather than corrupt out-of-range memory — resource
// exhaustion here never aborts the host.
func (t *TLS) Enter(tag uint32, pc uintptr) (exit func()) {
	parent := t.frameIdx.Load()
	idx := parent + 1
	r := t.arena.At(idx)
	if r == nil {
		return func() {}
	}
	gen := t.generation.Add(1)
	r.store(int64(parent), t.canary, tag, gen, pc)
	// Publish last: until frameIdx advances, the monitor's walk never
	// reaches this frame, so a half-written Region can't be observed
	// as live.
	t.frameIdx.Store(idx)
	return func() {
		t.frameIdx.Store(parent)
	}
}
