// Package tag implements the user-facing tag API: Set/Unset/Clear/
// Block, each posting a single event into the calling goroutine's
// ring.
package tag

import (
	mapset "github.com/ucwong/golang-set"

	"github.com/ldb-go/ldb/ring"
)

// emitter is the subset of shim.Runtime the tag API needs.
type emitter interface {
	EmitTag(kind ring.Kind, tag uint64)
}

// API is the handle application code calls to annotate the current
// call with a tag: event-recording calls that post through the
// emitter, plus the set of blocked tags. It keeps no per-goroutine
// current-tag state.
type API struct {
	rt      emitter
	blocked mapset.Set
}

// New returns a tag API posting events through rt and tracking blocked
// tags in a live set a control surface can introspect.
func New(rt emitter) *API {
	return &API{rt: rt, blocked: mapset.NewSet()}
}

// Set records that the current call now carries tag.
func (a *API) Set(t uint64) {
	a.rt.EmitTag(ring.KindTagSet, t)
}

// Unset records that the current call no longer carries tag.
func (a *API) Unset(t uint64) {
	a.rt.EmitTag(ring.KindTagUnset, t)
}

// Clear records that every tag on the current call is removed.
func (a *API) Clear() {
	a.rt.EmitTag(ring.KindTagClear, 0)
}

// Block adds tag to the blocked set, recording a block event. Block is
// just another recorded event like Set/Unset/Clear — it has no effect
// on subsequent Set calls; Blocked/BlockedTags exist purely for
// control-surface introspection of which tags an operator has marked.
func (a *API) Block(t uint64) {
	a.blocked.Add(t)
	a.rt.EmitTag(ring.KindTagBlock, t)
}

// Blocked reports whether tag is currently blocked.
func (a *API) Blocked(t uint64) bool {
	return a.blocked.Contains(t)
}

// BlockedTags returns every currently blocked tag, for control-surface
// introspection via the /stats endpoint.
func (a *API) BlockedTags() []uint64 {
	out := make([]uint64, 0, a.blocked.Cardinality())
	for v := range a.blocked.Iter() {
		out = append(out, v.(uint64))
	}
	return out
}
