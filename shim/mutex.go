package shim

import (
	"sync"
	"time"

	"github.com/ldb-go/ldb/ring"
)

// Mutex wraps sync.Mutex, recording wait/lock/unlock timestamps the
// way a pthread_mutex_lock/unlock interposition layer would: a
// wait/lock/unlock triple is only emitted if the wait or hold time
// reached MutexEventThreshold, so uncontended fast-path locking stays
// free of ring traffic.
type Mutex struct {
	rt *Runtime
	mu sync.Mutex

	tsWait time.Time
	tsLock time.Time
}

// NewMutex returns a Mutex instrumented against rt.
func NewMutex(rt *Runtime) *Mutex {
	return &Mutex{rt: rt}
}

// Lock records the wait start, blocks on the underlying mutex, then
// records the lock-acquired timestamp.
func (m *Mutex) Lock() {
	m.tsWait = time.Now()
	m.mu.Lock()
	m.tsLock = time.Now()
}

// Unlock releases the mutex, then emits the wait/lock/unlock triple if
// either phase crossed MutexEventThreshold.
func (m *Mutex) Unlock() {
	now := time.Now()
	m.mu.Unlock()

	waitDur := m.tsLock.Sub(m.tsWait)
	lockDur := now.Sub(m.tsLock)
	if waitDur < MutexEventThreshold && lockDur < MutexEventThreshold {
		return
	}

	st := m.rt.currentState()
	if st == nil {
		return
	}
	addr := uint64(uintptrOf(m))
	st.rng.TryPush(newRecord(ring.KindMutexWait, m.tsWait, st.gid, addr))
	st.rng.TryPush(newRecord(ring.KindMutexLock, m.tsLock, st.gid, addr))
	st.rng.TryPush(newRecord(ring.KindMutexUnlock, now, st.gid, addr))
}
