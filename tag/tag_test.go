package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldb-go/ldb/ring"
)

type recordingEmitter struct {
	kinds []ring.Kind
	args  []uint64
}

func (r *recordingEmitter) EmitTag(kind ring.Kind, t uint64) {
	r.kinds = append(r.kinds, kind)
	r.args = append(r.args, t)
}

func TestSetUnsetClear(t *testing.T) {
	e := &recordingEmitter{}
	a := New(e)

	a.Set(10)
	a.Unset(10)
	a.Clear()

	require.Len(t, e.kinds, 3)
	assert.Equal(t, []ring.Kind{ring.KindTagSet, ring.KindTagUnset, ring.KindTagClear}, e.kinds)
	assert.Equal(t, uint64(10), e.args[0])
}

func TestBlockIsRecordedButDoesNotSuppressSet(t *testing.T) {
	e := &recordingEmitter{}
	a := New(e)

	a.Block(99)
	a.Set(99)

	require.Len(t, e.kinds, 2, "Block and Set each post one event; Block must not suppress Set")
	assert.Equal(t, []ring.Kind{ring.KindTagBlock, ring.KindTagSet}, e.kinds)
	assert.True(t, a.Blocked(99), "Blocked still reflects control-surface state")
	assert.Contains(t, a.BlockedTags(), uint64(99))
}

func TestSetUnaffectedByUnrelatedBlock(t *testing.T) {
	e := &recordingEmitter{}
	a := New(e)

	a.Block(1)
	a.Set(2)

	require.Len(t, e.kinds, 2)
	assert.Equal(t, ring.KindTagSet, e.kinds[1])
}
