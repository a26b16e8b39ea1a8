package ensemble

import "testing"

func TestStreamBases_Disjoint(t *testing.T) {
	if boostStream == forestStream {
		t.Fatal("boosting and forest must not share a PCG stream base")
	}
	// Per-round and per-tree offsets are added on top of the base, so the
	// gap between bases must dwarf any realistic round or tree count.
	b, f := boostStream, forestStream
	gap := f - b
	if b > f {
		gap = b - f
	}
	if gap < 1<<20 {
		t.Errorf("stream bases too close: gap %d", gap)
	}
	if boostStream == 0 || forestStream == 0 {
		t.Error("a zero base collapses onto the raw seed stream")
	}
}
