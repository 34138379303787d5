package shim

import (
	"time"
	"unsafe"

	"github.com/ldb-go/ldb/ring"
)

// newRecord builds a ring.Record stamped with t, the Go analogue of
// event_record's struct timespec capture.
func newRecord(kind ring.Kind, t time.Time, tid int64, args ...uint64) ring.Record {
	r := ring.Record{
		Kind: kind,
		Sec:  uint32(t.Unix()),
		Nsec: uint32(t.Nanosecond()),
		Tid:  uint32(tid),
	}
	if len(args) > 0 {
		r.Arg1 = args[0]
	}
	if len(args) > 1 {
		r.Arg2 = args[1]
	}
	if len(args) > 2 {
		r.Arg3 = args[2]
	}
	return r
}

// uintptrOf returns the address of m as a plain integer, the closest
// Go analogue of logging a raw pthread_mutex_t*.
func uintptrOf(m *Mutex) uintptr {
	return uintptr(unsafe.Pointer(m))
}

// emitNow appends one immediate event to the calling goroutine's
// ring, for event kinds that don't need a wait/lock/unlock triple
// (join wait/joined, tag mutations). It's a no-op if the calling
// goroutine isn't tracked.
func (rt *Runtime) emitNow(kind ring.Kind, args ...uint64) {
	st := rt.currentState()
	if st == nil {
		return
	}
	st.rng.TryPush(newRecord(kind, time.Now(), st.gid, args...))
}

// EmitTag posts a tag-mutation event for the calling goroutine,
// implementing the emitter interface the tag package depends on.
func (rt *Runtime) EmitTag(kind ring.Kind, t uint64) {
	rt.emitNow(kind, t)
}
