package invalidation

import (
	"testing"

	"spool/internal/timeline"
)

func rng(t *testing.T, in, out int64) timeline.TimeRange {
	t.Helper()
	r, err := timeline.NewRange(timeline.FromInt(in), timeline.FromInt(out))
	if err != nil {
		t.Fatalf("new range [%d, %d): %v", in, out, err)
	}
	return r
}

type recordingObserver struct {
	invalidated []timeline.TimeRange
	validated   []timeline.TimeRange
	shifts      int
	lengths     int
}

func (r *recordingObserver) Invalidated(rg timeline.TimeRange) {
	r.invalidated = append(r.invalidated, rg)
}

func (r *recordingObserver) Validated(rg timeline.TimeRange) {
	r.validated = append(r.validated, rg)
}

func (r *recordingObserver) Shifted(from, to timeline.Rational) { r.shifts++ }

func (r *recordingObserver) LengthChanged(oldLength, newLength timeline.Rational) { r.lengths++ }

func TestInvalidateValidateRoundTrip(t *testing.T) {
	tracker := NewTracker()
	obs := &recordingObserver{}
	tracker.AddObserver(obs)

	r := rng(t, 2, 8)
	tracker.Invalidate(r)
	if tracker.IsFullyValid() {
		t.Fatal("tracker should not be fully valid after invalidate")
	}
	tracker.Validate(r)
	if !tracker.IsFullyValid() {
		t.Fatalf("validate of the same range should restore full validity, invalid=%v", tracker.Invalid())
	}
	if len(obs.invalidated) != 1 || len(obs.validated) != 1 {
		t.Fatalf("expected 1 invalidated + 1 validated notification, got %d + %d",
			len(obs.invalidated), len(obs.validated))
	}
}

func TestInvalidateMergesAndStillNotifies(t *testing.T) {
	tracker := NewTracker()
	obs := &recordingObserver{}
	tracker.AddObserver(obs)

	tracker.Invalidate(rng(t, 0, 5))
	tracker.Invalidate(rng(t, 3, 4)) // already invalid
	if got := tracker.Invalid(); len(got) != 1 || !got[0].Equal(rng(t, 0, 5)) {
		t.Fatalf("invalid set = %v, want [[0,5)]", got)
	}
	if len(obs.invalidated) != 2 {
		t.Fatalf("re-invalidation must still notify, got %d notifications", len(obs.invalidated))
	}
}

func TestZeroLengthRangesAreNoops(t *testing.T) {
	tracker := NewTracker()
	obs := &recordingObserver{}
	tracker.AddObserver(obs)

	at := timeline.RangeAt(timeline.FromInt(4))
	tracker.Invalidate(at)
	tracker.Validate(at)
	if !tracker.IsFullyValid() || len(obs.invalidated) != 0 || len(obs.validated) != 0 {
		t.Fatal("zero-length ranges must not mutate or notify")
	}
}

func TestSetLengthGrowInvalidatesTail(t *testing.T) {
	tracker := NewTracker()
	if err := tracker.SetLength(timeline.FromInt(100)); err != nil {
		t.Fatalf("set length: %v", err)
	}
	got := tracker.Invalid()
	if len(got) != 1 || !got[0].Equal(rng(t, 0, 100)) {
		t.Fatalf("grow to 100 should invalidate [0,100), got %v", got)
	}

	tracker.Validate(rng(t, 0, 100))
	if !tracker.IsFullyValid() {
		t.Fatal("validating the full tail should restore validity")
	}
}

func TestSetLengthShrinkDropsOutOfBounds(t *testing.T) {
	tracker := NewTracker()
	if err := tracker.SetLength(timeline.FromInt(100)); err != nil {
		t.Fatalf("set length: %v", err)
	}
	tracker.Validate(rng(t, 0, 40))
	if err := tracker.SetLength(timeline.FromInt(50)); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	got := tracker.Invalid()
	if len(got) != 1 || !got[0].Equal(rng(t, 40, 50)) {
		t.Fatalf("after shrink invalid = %v, want [[40,50)]", got)
	}
}

func TestSetLengthEqualIsNoop(t *testing.T) {
	tracker := NewTracker()
	obs := &recordingObserver{}
	tracker.AddObserver(obs)
	if err := tracker.SetLength(timeline.FromInt(0)); err != nil {
		t.Fatalf("set length: %v", err)
	}
	if obs.lengths != 0 {
		t.Fatal("equal length must not notify")
	}
}

func TestSetLengthRejectsNegative(t *testing.T) {
	tracker := NewTracker()
	neg := timeline.FromInt(0).Sub(timeline.FromInt(1))
	if err := tracker.SetLength(neg); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestShiftForwardCarriesRangesAndOpensGap(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 10, 20))

	// Insert 5 units at t=10.
	tracker.Shift(timeline.FromInt(10), timeline.FromInt(15))

	got := tracker.Invalid()
	if len(got) != 1 || !got[0].Equal(rng(t, 10, 25)) {
		t.Fatalf("after forward shift invalid = %v, want [[10,25)]", got)
	}
}

func TestShiftBackwardSplices(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 20, 30))

	// Splice out [10, 20).
	tracker.Shift(timeline.FromInt(20), timeline.FromInt(10))

	got := tracker.Invalid()
	if len(got) != 1 || !got[0].Equal(rng(t, 10, 20)) {
		t.Fatalf("after backward shift invalid = %v, want [[10,20)]", got)
	}
}

func TestShiftSelfInverseUnderQuiescence(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 30, 40))
	before := tracker.Invalid()

	tracker.Shift(timeline.FromInt(10), timeline.FromInt(15))
	// The forward shift invalidated the gap [10,15); the reverse splices it
	// back out and returns the carried range to its original position.
	tracker.Shift(timeline.FromInt(15), timeline.FromInt(10))

	after := tracker.Invalid()
	if len(after) != len(before) {
		t.Fatalf("shift round-trip changed range count: %v vs %v", before, after)
	}
	for i := range after {
		if !after[i].Equal(before[i]) {
			t.Fatalf("shift round-trip changed ranges: %v vs %v", before, after)
		}
	}
}

func TestShiftPreservesHeadBeforeEditPoint(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 0, 4))
	tracker.Invalidate(rng(t, 8, 12))

	tracker.Shift(timeline.FromInt(6), timeline.FromInt(10))

	got := tracker.Invalid()
	if len(got) != 3 {
		t.Fatalf("expected head, gap and shifted tail, got %v", got)
	}
	if !got[0].Equal(rng(t, 0, 4)) {
		t.Fatalf("head range disturbed: %v", got)
	}
	if !got[1].Equal(rng(t, 6, 10)) {
		t.Fatalf("gap = %s, want [6,10)", got[1])
	}
	if !got[2].Equal(rng(t, 12, 16)) {
		t.Fatalf("shifted tail = %s, want [12,16)", got[2])
	}
}

func TestIntersectsSnapshot(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 0, 10))

	hits := tracker.Intersects(rng(t, 5, 20))
	if len(hits) != 1 || !hits[0].Equal(rng(t, 5, 10)) {
		t.Fatalf("intersects = %v, want [[5,10)]", hits)
	}

	// Snapshot must survive later edits.
	tracker.Validate(rng(t, 0, 10))
	if len(hits) != 1 || !hits[0].Equal(rng(t, 5, 10)) {
		t.Fatalf("snapshot mutated by later edit: %v", hits)
	}
}

func TestIsValidAt(t *testing.T) {
	tracker := NewTracker()
	tracker.Invalidate(rng(t, 2, 4))
	if tracker.IsValidAt(timeline.FromInt(3)) {
		t.Fatal("t=3 lies in an invalid range")
	}
	if !tracker.IsValidAt(timeline.FromInt(4)) {
		t.Fatal("t=4 is the exclusive end and should be valid")
	}
}
