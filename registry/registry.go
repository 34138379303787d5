// Package registry implements the fixed-capacity thread registry: the
// shared slot array the monitor iterates to find every live
// goroutine's TLS region, guarded by a CAS spin lock on acquire/release
// and otherwise lock-free to read.
package registry

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/ldb-go/ldb/frame"
)

// MaxThreads bounds how many goroutines may be registered at once
// (the Go-native analogue of LDB_MAX_NTHREAD).
const MaxThreads = 128

// Slot is one registry entry: the OS thread id the goroutine was
// running on at registration time, and a pointer to its TLS region.
// occupied gates whether the slot is live; it is the field the
// monitor's scan and AcquireSlot/ReleaseSlot race over.
type Slot struct {
	occupied atomic.Bool
	tid      int32
	tls      atomic.Pointer[frame.TLS]
}

// TLS returns the slot's TLS region, or nil if the slot isn't
// currently occupied. Safe to call without holding the spin lock —
// reading the registry is always lock-free.
func (s *Slot) TLS() *frame.TLS {
	if !s.occupied.Load() {
		return nil
	}
	return s.tls.Load()
}

// Tid returns the OS thread id recorded at acquisition time.
func (s *Slot) Tid() int32 { return s.tid }

// Registry is the shared slot array plus bookkeeping the monitor
// iterates every scan cycle.
type Registry struct {
	slots  [MaxThreads]Slot
	lock   atomic.Bool // CAS spin lock guarding Acquire/Release
	maxIdx atomic.Int32
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{}
	r.maxIdx.Store(-1)
	return r
}

func (r *Registry) spinLock() {
	for !r.lock.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (r *Registry) spinUnlock() {
	r.lock.Store(false)
}

// AcquireSlot publishes t into the first free slot and returns its
// index, the Go-native analogue of __ldb_get_tidx: find-or-extend
// under the spin lock, storing the TLS pointer first and setting the
// occupied flag last, so a concurrent monitor scan never observes a
// slot marked occupied before its TLS pointer is valid.
func (r *Registry) AcquireSlot(t *frame.TLS) (idx int32, ok bool) {
	r.spinLock()
	defer r.spinUnlock()

	for i := range r.slots {
		s := &r.slots[i]
		if s.occupied.Load() {
			continue
		}
		s.tid = int32(unix.Gettid())
		s.tls.Store(t)
		s.occupied.Store(true)
		if int32(i) > r.maxIdx.Load() {
			r.maxIdx.Store(int32(i))
		}
		t.SetSlot(int32(i))
		return int32(i), true
	}
	return -1, false
}

// ReleaseSlot clears slot idx, the analogue of __ldb_put_tidx. The
// occupied flag is cleared first, before the TLS pointer — the mirror
// image of AcquireSlot's publish-last discipline, so a concurrent scan
// that observes occupied==false never dereferences a stale pointer.
// If idx is the current high-water index, maxIdx is decremented.
func (r *Registry) ReleaseSlot(idx int32) {
	if idx < 0 || int(idx) >= len(r.slots) {
		return
	}
	r.spinLock()
	defer r.spinUnlock()

	s := &r.slots[idx]
	s.occupied.Store(false)
	s.tls.Store(nil)

	if idx == r.maxIdx.Load() {
		r.maxIdx.Store(idx - 1)
	}
}

// MaxIndex returns the high-water slot index: raised by AcquireSlot,
// lowered by one when ReleaseSlot frees the slot at it, and -1 when
// empty. Slots at or below it may be free. The monitor
// scans [0, MaxIndex()] each cycle rather than the whole fixed array.
func (r *Registry) MaxIndex() int32 { return r.maxIdx.Load() }

// Slot returns slot idx for direct inspection by the monitor scan
// loop. No bounds check is performed beyond the array bound; callers
// iterate [0, MaxIndex()].
func (r *Registry) Slot(idx int32) *Slot { return &r.slots[idx] }
