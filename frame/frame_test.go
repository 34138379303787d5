package frame

import "testing"

func TestSeedOutermostGenerationZero(t *testing.T) {
	tls := NewTLS()
	exit := tls.SeedOutermost()
	defer exit()

	gen, idx := tls.Snapshot()
	if gen != 0 || idx != 0 {
		t.Fatalf("got gen=%d idx=%d, want gen=0 idx=0", gen, idx)
	}

	var out [4]Observed
	n := Walk(tls.Arena(), idx, out[:])
	if n != 1 {
		t.Fatalf("want 1 observed frame, got %d", n)
	}
	if out[0].Generation != 0 {
		t.Fatalf("outermost generation = %d, want 0", out[0].Generation)
	}
}

func TestEnterNestedIncreasesGeneration(t *testing.T) {
	tls := NewTLS()
	exitOuter := tls.SeedOutermost()
	defer exitOuter()

	var generations []uint64
	exit1 := tls.Enter(1, 0x1000)
	exit2 := tls.Enter(2, 0x2000)
	exit3 := tls.Enter(3, 0x3000)

	_, idx := tls.Snapshot()
	var out [8]Observed
	n := Walk(tls.Arena(), idx, out[:])
	if n != 4 {
		t.Fatalf("want 4 live frames, got %d", n)
	}
	for i := 0; i < n; i++ {
		generations = append(generations, out[i].Generation)
	}
	// innermost first; generations strictly decrease toward the root.
	for i := 1; i < len(generations); i++ {
		if generations[i] >= generations[i-1] {
			t.Fatalf("generations not strictly decreasing: %v", generations)
		}
	}

	exit3()
	exit2()
	exit1()

	_, idx = tls.Snapshot()
	if idx != 0 {
		t.Fatalf("after unwinding, frameIdx = %d, want 0", idx)
	}
}

func TestEnterRejectsBeyondMaxCallDepth(t *testing.T) {
	tls := NewTLS()
	defer tls.SeedOutermost()()

	var exits []func()
	for i := 0; i < MaxCallDepth+10; i++ {
		exits = append(exits, tls.Enter(0, 0))
	}
	// Degraded entries beyond capacity must not corrupt the arena;
	// the frame index never exceeds the arena's last valid slot.
	_, idx := tls.Snapshot()
	if idx >= MaxCallDepth {
		t.Fatalf("frameIdx = %d, want < %d", idx, MaxCallDepth)
	}
	for i := len(exits) - 1; i >= 0; i-- {
		exits[i]()
	}
}

func TestWalkStopsAtCanaryMismatch(t *testing.T) {
	tls := NewTLS()
	defer tls.SeedOutermost()()

	tls.Enter(0, 0)
	exit2 := tls.Enter(0, 0)
	defer exit2()

	// Corrupt the innermost frame's canary, simulating a read racing
	// a non-instrumented or half-written frame.
	_, idx := tls.Snapshot()
	r := tls.Arena().At(idx)
	r.canaryTag.Store(0) // zero canary, invalid

	var out [8]Observed
	n := Walk(tls.Arena(), idx, out[:])
	if n != 0 {
		t.Fatalf("want 0 observed frames after canary corruption, got %d", n)
	}
}
