package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldb-go/ldb/frame"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	r := New()
	assert.Equal(t, int32(-1), r.MaxIndex())

	tls := frame.NewTLS()
	idx, ok := r.AcquireSlot(tls)
	require.True(t, ok)
	assert.Equal(t, int32(0), idx)
	assert.Equal(t, int32(0), r.MaxIndex())
	assert.Equal(t, idx, tls.Slot())

	s := r.Slot(idx)
	assert.Same(t, tls, s.TLS())
	assert.NotZero(t, s.Tid())

	r.ReleaseSlot(idx)
	assert.Nil(t, s.TLS())
}

func TestAcquireFillsFirstFreeSlot(t *testing.T) {
	r := New()
	var tlses []*frame.TLS
	for i := 0; i < 3; i++ {
		tls := frame.NewTLS()
		idx, ok := r.AcquireSlot(tls)
		require.True(t, ok)
		require.Equal(t, int32(i), idx)
		tlses = append(tlses, tls)
	}

	r.ReleaseSlot(1)

	next := frame.NewTLS()
	idx, ok := r.AcquireSlot(next)
	require.True(t, ok)
	assert.Equal(t, int32(1), idx, "released slot should be reused before extending")
	assert.Equal(t, int32(2), r.MaxIndex(), "releasing a non-high-water slot leaves max index unchanged")

	assert.Same(t, tlses[0], r.Slot(0).TLS())
	assert.Same(t, next, r.Slot(1).TLS())
	assert.Same(t, tlses[2], r.Slot(2).TLS())
}

func TestReleaseHighWaterSlotDecrementsMaxIndex(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		_, ok := r.AcquireSlot(frame.NewTLS())
		require.True(t, ok)
	}
	require.Equal(t, int32(2), r.MaxIndex())

	r.ReleaseSlot(2)
	assert.Equal(t, int32(1), r.MaxIndex(), "releasing the high-water slot must decrement max index")

	r.ReleaseSlot(1)
	assert.Equal(t, int32(0), r.MaxIndex())

	r.ReleaseSlot(0)
	assert.Equal(t, int32(-1), r.MaxIndex())
}

func TestAcquireExhaustion(t *testing.T) {
	r := New()
	for i := 0; i < MaxThreads; i++ {
		_, ok := r.AcquireSlot(frame.NewTLS())
		require.True(t, ok)
	}
	_, ok := r.AcquireSlot(frame.NewTLS())
	assert.False(t, ok, "registry must report failure once MaxThreads slots are occupied")
}

func TestReleaseOutOfRangeIsNoop(t *testing.T) {
	r := New()
	assert.NotPanics(t, func() {
		r.ReleaseSlot(-1)
		r.ReleaseSlot(MaxThreads)
	})
}
