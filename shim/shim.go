// Package shim stands in for libc symbol interposition: instead of
// overriding pthread_create/pthread_mutex_lock via LD_PRELOAD, callers
// wrap goroutine launch and mutex operations through this package's
// explicit API, which is the only portable way to intercept those
// calls in Go.
package shim

import (
	"runtime"
	"sync"
	"time"

	"github.com/ldb-go/ldb/frame"
	"github.com/ldb-go/ldb/internal/gid"
	"github.com/ldb-go/ldb/registry"
	"github.com/ldb-go/ldb/ring"
)

// MutexEventThreshold is the minimum wait or hold duration that causes
// a mutex wait/lock/unlock triple to be recorded.
const MutexEventThreshold = 1000 * time.Nanosecond

// Runtime owns the registry and per-goroutine rings a process uses to
// record events, and is the handle Go/Mutex/Join are called against:
// one Runtime per process, created once at startup.
type Runtime struct {
	reg      *registry.Registry
	ringSize int

	mu       sync.RWMutex
	byGID    map[int64]*goroutineState
}

// NewRuntime builds a Runtime backed by the given registry. ringSize
// is the per-goroutine event ring capacity (rounded to a power of two
// by ring.New).
func NewRuntime(reg *registry.Registry, ringSize int) *Runtime {
	return &Runtime{reg: reg, ringSize: ringSize, byGID: make(map[int64]*goroutineState)}
}

// currentState looks up the tracked state of the calling goroutine, or
// nil if it isn't tracked (it was not launched through Go/GoJoinable,
// e.g. the initial goroutine). A goroutine that found the registry
// exhausted is still tracked here, with idx -1.
func (rt *Runtime) currentState() *goroutineState {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.byGID[gid.Current()]
}

// goroutineState is what a tracked goroutine carries for its whole
// lifetime: its TLS region, registry slot, and private event ring —
// the Go-native analogue of ldb_thread_info_t plus its ebuf.
type goroutineState struct {
	tls *frame.TLS
	rng *ring.Ring
	idx int32
	gid int64
}

// Go launches fn as a new goroutine, tracked the way a
// pthread_create interposition wrapper would: canary/TLS setup,
// registry acquisition, and a guaranteed release + ring teardown once
// fn returns.
func (rt *Runtime) Go(fn func()) {
	go func() {
		st := rt.register()
		defer rt.unregister(st)

		exit := st.tls.SeedOutermost()
		defer exit()

		fn()
	}()
}

// Enter publishes a new augmented frame on the calling goroutine's
// shadow stack, tagged with tag, and returns the closure call sites
// must defer to pop it on return. This is the call an instrumented
// function makes at entry — without it the goroutine never has more
// than its seeded outermost frame, and the monitor can observe only
// one call depth. A goroutine not launched through Go/GoJoinable has
// no tracked state, so Enter degrades to a no-op in that case. A
// goroutine that got no registry slot still publishes frames, but the
// monitor never scans them.
func (rt *Runtime) Enter(tag uint32) (exit func()) {
	st := rt.currentState()
	if st == nil {
		return func() {}
	}
	pc, _, _, _ := runtime.Caller(1)
	return st.tls.Enter(tag, uintptr(pc))
}

func (rt *Runtime) register() *goroutineState {
	st := &goroutineState{
		tls: frame.NewTLS(),
		rng: ring.New(rt.ringSize),
	}
	idx, ok := rt.reg.AcquireSlot(st.tls)
	if !ok {
		// Registry exhausted: the goroutine still runs, just
		// unobserved, a silent best-effort degradation.
		idx = -1
	}
	st.idx = idx

	id := gid.Current()
	rt.mu.Lock()
	rt.byGID[id] = st
	rt.mu.Unlock()
	st.gid = id

	st.rng.TryPush(newRecord(ring.KindThreadCreate, time.Now(), id))
	return st
}

func (rt *Runtime) unregister(st *goroutineState) {
	st.rng.TryPush(newRecord(ring.KindThreadExit, time.Now(), st.gid, st.rng.Ignored()))

	if st.idx >= 0 {
		rt.reg.ReleaseSlot(st.idx)
	}
	rt.mu.Lock()
	delete(rt.byGID, st.gid)
	rt.mu.Unlock()
}

// Handle is returned by Join-tracked launches so the caller can block
// on completion while the wait is itself recorded as a join event.
type Handle struct {
	rt   *Runtime
	done chan struct{}
}

// GoJoinable is Go, but returns a Handle whose Join blocks until fn
// returns, recording a join-wait/join-joined pair around the wait —
// the analogue of pthread_create paired with a later pthread_join.
func (rt *Runtime) GoJoinable(fn func()) *Handle {
	h := &Handle{rt: rt, done: make(chan struct{})}
	rt.Go(func() {
		defer close(h.done)
		fn()
	})
	return h
}

// Join blocks until the goroutine launched by GoJoinable returns,
// recording the wait around the block.
func (h *Handle) Join() {
	h.rt.emitNow(ring.KindJoinWait)
	<-h.done
	h.rt.emitNow(ring.KindJoinJoined)
}

// Rings returns a snapshot of every currently-tracked goroutine's
// event ring, the set the logger drains each cycle.
func (rt *Runtime) Rings() []*ring.Ring {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]*ring.Ring, 0, len(rt.byGID))
	for _, st := range rt.byGID {
		out = append(out, st.rng)
	}
	return out
}
