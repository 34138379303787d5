package ring

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 200; i++ {
		var want Record
		f.Fuzz(&want)

		buf, err := want.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, buf, RecordSize)

		var got Record
		require.NoError(t, got.UnmarshalBinary(buf))
		assert.Equal(t, want, got)
	}
}

func TestUnmarshalShortBuffer(t *testing.T) {
	var r Record
	err := r.UnmarshalBinary(make([]byte, RecordSize-1))
	assert.Error(t, err)
}

func TestTryPushAndConsume(t *testing.T) {
	r := New(4)
	for i := 0; i < 4; i++ {
		ok := r.TryPush(Record{Kind: KindStack, Tid: uint32(i)})
		require.True(t, ok)
	}

	var got []Record
	r.ConsumeRuns(func(batch []Record) {
		got = append(got, batch...)
	})
	require.Len(t, got, 4)
	for i, rec := range got {
		assert.Equal(t, uint32(i), rec.Tid)
	}
	assert.Equal(t, 0, r.Len())
}

// TestOverloadDropsAndCounts exercises property P5: under sustained
// overload, the number of records never delivered equals Ignored(),
// and the producer never blocks (TryPush always returns promptly).
func TestOverloadDropsAndCounts(t *testing.T) {
	r := New(8)
	const produced = 100

	delivered := 0
	for i := 0; i < produced; i++ {
		if r.TryPush(Record{Kind: KindStack, Tid: uint32(i)}) {
			delivered++
		}
	}
	var drained int
	r.ConsumeRuns(func(batch []Record) { drained += len(batch) })

	assert.Equal(t, delivered, drained)
	assert.Equal(t, uint64(produced-delivered), r.Ignored())
}

// TestConsumeRunsAcrossWrap verifies a drain that wraps past the end
// of the backing array is split into two contiguous runs rather than
// silently truncated or corrupted.
func TestConsumeRunsAcrossWrap(t *testing.T) {
	r := New(4)
	for i := 0; i < 3; i++ {
		require.True(t, r.TryPush(Record{Tid: uint32(i)}))
	}
	var firstBatch []Record
	r.ConsumeRuns(func(batch []Record) { firstBatch = append(firstBatch, batch...) })
	require.Len(t, firstBatch, 3)

	// head/tail are now both at 3; pushing 3 more wraps around index 0.
	for i := 3; i < 6; i++ {
		require.True(t, r.TryPush(Record{Tid: uint32(i)}))
	}
	var runs int
	var got []Record
	r.ConsumeRuns(func(batch []Record) {
		runs++
		got = append(got, batch...)
	})
	assert.Equal(t, 2, runs, "wrapped drain should split into two contiguous runs")
	require.Len(t, got, 3)
	for i, rec := range got {
		assert.Equal(t, uint32(3+i), rec.Tid)
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32}
	for in, want := range cases {
		assert.Equal(t, want, nextPow2(in))
	}
}
