package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldb-go/ldb/frame"
	"github.com/ldb-go/ldb/ring"
)

func TestScanOneEmitsNothingOnFirstSeenFrame(t *testing.T) {
	tls := frame.NewTLS()
	defer tls.SeedOutermost()()
	exit := tls.Enter(7, 0xabc)
	defer exit()

	track := &goroutineTrack{}
	var pushed []ring.Record
	scanOne(tls, track, 10*time.Millisecond, time.Now(), 1, func(r ring.Record) {
		pushed = append(pushed, r)
	})

	assert.Empty(t, pushed, "nothing has finished yet, so no stack sample should be emitted")
	require.Len(t, track.frames, 2, "outermost + one entered frame should now be tracked")
}

func TestScanOneAccruesLatencyAcrossScans(t *testing.T) {
	tls := frame.NewTLS()
	defer tls.SeedOutermost()()
	exit := tls.Enter(7, 0xabc)
	defer exit()

	track := &goroutineTrack{}
	scanOne(tls, track, 10*time.Millisecond, time.Now(), 1, func(ring.Record) {})
	scanOne(tls, track, 5*time.Millisecond, time.Now(), 1, func(ring.Record) {})

	require.Len(t, track.frames, 2)
	// The first scan only starts tracking the frame at latency 0; the
	// second scan's elapsed interval is what it accrues.
	assert.Equal(t, 5*time.Millisecond, track.frames[1].Latency)
}

func TestScanOneEmitsFinishedFrameOnReturn(t *testing.T) {
	tls := frame.NewTLS()
	defer tls.SeedOutermost()()
	exit := tls.Enter(7, 0xabc)

	track := &goroutineTrack{}
	scanOne(tls, track, 10*time.Millisecond, time.Now(), 1, func(ring.Record) {})
	exit() // the inner call returns

	var pushed []ring.Record
	scanOne(tls, track, 5*time.Millisecond, time.Now(), 1, func(r ring.Record) {
		pushed = append(pushed, r)
	})

	require.Len(t, pushed, 1, "the returned frame should be emitted as a finished stack sample")
	assert.Equal(t, ring.KindStack, pushed[0].Kind)
	// The frame was seen live on one scan only, where it started at
	// latency 0, so it returns with nothing accrued.
	assert.Equal(t, uint64(0), pushed[0].Arg1)
	require.Len(t, track.frames, 1, "only the outermost frame remains live")
}

func TestScanOneDiscardsWhenNoLiveFrame(t *testing.T) {
	tls := frame.NewTLS()
	defer tls.SeedOutermost()()

	// A torn walk (the stack changing between the two snapshots) can't
	// be provoked without hooks into scanOne, so this covers the other
	// discard path: a TLS that was never seeded has no live frame, and
	// scanOne must emit nothing and track nothing for it.
	tls2 := frame.NewTLS()
	track := &goroutineTrack{}
	var pushed []ring.Record
	scanOne(tls2, track, time.Millisecond, time.Now(), 1, func(r ring.Record) {
		pushed = append(pushed, r)
	})
	assert.Empty(t, pushed)
	assert.Empty(t, track.frames)
}
