package monitor

import (
	"time"

	"github.com/ldb-go/ldb/frame"
	"github.com/ldb-go/ldb/ring"
)

// trackedFrame is one frame the monitor remembers seeing on a previous
// scan, accruing latency until it's matched against nothing and
// considered finished. Ordered outermost-first in goroutineTrack.frames.
type trackedFrame struct {
	Index      int32
	Tag        uint32
	Generation uint64
	ReturnPC   uintptr
	Latency    time.Duration
}

// goroutineTrack is the per-goroutine bookkeeping the scan loop
// maintains across cycles: one slice of structs in place of several
// parallel arrays indexed by thread and frame depth.
type goroutineTrack struct {
	frames []trackedFrame
}

// scanOne runs one goroutine's per-cycle scan body: walk its stack,
// validate the walk wasn't torn by a concurrent write, diff against
// remembered frames, emit finished ones,
// and record newly observed ones. It returns nothing: its effects are
// the records passed to push and the updated track.
func scanOne(tls *frame.TLS, track *goroutineTrack, elapsed time.Duration, now time.Time, tid uint32, push func(ring.Record)) {
	gen1, idx1 := tls.Snapshot()
	if idx1 < 0 {
		return
	}

	var observed [frame.MaxCallDepth]frame.Observed
	n := frame.Walk(tls.Arena(), idx1, observed[:])

	gen2, idx2 := tls.Snapshot()
	if gen1 != gen2 || idx1 != idx2 {
		// The stack changed shape mid-walk; discard this scan's
		// result entirely rather than risk a torn read.
		return
	}
	if n == 0 {
		return
	}

	remembered := track.frames
	outermostIdx := observed[n-1].Index

	gidx := 0
	// Remembered frames more outward than anything reached this scan
	// keep accruing latency untouched — they're still live, just
	// beyond what this walk's root captured.
	for gidx < len(remembered) && remembered[gidx].Index < outermostIdx {
		remembered[gidx].Latency += elapsed
		gidx++
	}

	// Match remembered frames against observed ones by generation,
	// working inward from the outermost unconsumed observation.
	lidx := n
	for gidx < len(remembered) && lidx > 0 {
		if remembered[gidx].Generation != observed[lidx-1].Generation {
			break
		}
		remembered[gidx].Latency += elapsed
		gidx++
		lidx--
	}

	// Everything still remembered beyond gidx didn't match this scan:
	// those calls have returned. Emit them as finished stack samples.
	for i := gidx; i < len(remembered); i++ {
		f := remembered[i]
		push(ring.Record{
			Kind: ring.KindStack,
			Sec:  uint32(now.Unix()),
			Nsec: uint32(now.Nanosecond()),
			Tid:  tid,
			Arg1: uint64(f.Latency.Nanoseconds()),
			Arg2: uint64(f.ReturnPC),
			Arg3: f.Generation,
		})
	}

	next := remembered[:gidx]
	// Append newly observed frames (outermost of the unmatched prefix
	// first), extending the remembered stack to match reality.
	for lidx > 0 {
		o := observed[lidx-1]
		next = append(next, trackedFrame{
			Index:      o.Index,
			Tag:        o.Tag,
			Generation: o.Generation,
			ReturnPC:   o.ReturnPC,
		})
		lidx--
	}
	track.frames = next
}
