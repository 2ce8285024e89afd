package timeline

import "testing"

func r(num, den int64) Rational {
	v, err := NewRational(num, den)
	if err != nil {
		panic(err)
	}
	return v
}

func rng(t *testing.T, in, out int64) TimeRange {
	t.Helper()
	v, err := NewRange(FromInt(in), FromInt(out))
	if err != nil {
		t.Fatalf("new range [%d, %d): %v", in, out, err)
	}
	return v
}

func TestRationalNormalization(t *testing.T) {
	if got := r(2, 4); !got.Equal(r(1, 2)) {
		t.Fatalf("2/4 != 1/2: %s", got)
	}
	if got := r(1, -2); !got.Equal(r(-1, 2)) {
		t.Fatalf("1/-2 != -1/2: %s", got)
	}
	if got := r(0, -7); got.Den() != 1 || !got.IsZero() {
		t.Fatalf("0/-7 not normalized to 0/1: %s", got)
	}
	if _, err := NewRational(1, 0); err == nil {
		t.Fatal("expected error for zero denominator")
	}
}

func TestRationalArithmetic(t *testing.T) {
	sum := r(1, 3).Add(r(1, 6))
	if !sum.Equal(r(1, 2)) {
		t.Fatalf("1/3 + 1/6 = %s, want 1/2", sum)
	}
	diff := r(1, 2).Sub(r(3, 4))
	if !diff.Equal(r(-1, 4)) {
		t.Fatalf("1/2 - 3/4 = %s, want -1/4", diff)
	}
	if !r(1, 30).Less(r(1, 24)) {
		t.Fatal("1/30 should be less than 1/24")
	}
	if r(100, 200).Cmp(r(1, 2)) != 0 {
		t.Fatal("100/200 should equal 1/2")
	}
}

func TestNewRangeRejectsInvertedBounds(t *testing.T) {
	if _, err := NewRange(FromInt(5), FromInt(3)); err == nil {
		t.Fatal("expected error for in > out")
	}
}

func TestRangeOverlapAndTouch(t *testing.T) {
	a := rng(t, 0, 5)
	b := rng(t, 5, 10)
	c := rng(t, 6, 8)

	if a.Overlaps(b) {
		t.Fatal("[0,5) must not overlap [5,10)")
	}
	if !a.Touches(b) {
		t.Fatal("[0,5) must touch [5,10)")
	}
	if a.Touches(c) {
		t.Fatal("[0,5) must not touch [6,8)")
	}
	if !b.Overlaps(c) {
		t.Fatal("[5,10) must overlap [6,8)")
	}

	clipped, ok := b.Intersect(rng(t, 0, 7))
	if !ok || !clipped.Equal(rng(t, 5, 7)) {
		t.Fatalf("intersect = %s (%v), want [5,7)", clipped, ok)
	}
}

func TestRangeTranslate(t *testing.T) {
	moved := rng(t, 2, 4).Translate(FromInt(-2))
	if !moved.Equal(rng(t, 0, 2)) {
		t.Fatalf("translate = %s, want [0,2)", moved)
	}
}

func TestListInsertMergesTouching(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 0, 5))
	list.Insert(rng(t, 5, 10))
	if list.Len() != 1 {
		t.Fatalf("adjacent inserts should merge, got %d ranges", list.Len())
	}
	if got := list.Ranges()[0]; !got.Equal(rng(t, 0, 10)) {
		t.Fatalf("merged range = %s, want [0,10)", got)
	}
}

func TestListInsertBridgesTransitively(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 0, 2))
	list.Insert(rng(t, 8, 10))
	// Bridge both existing entries in one insert.
	list.Insert(rng(t, 2, 8))
	if list.Len() != 1 {
		t.Fatalf("bridge insert should collapse to one range, got %d", list.Len())
	}
	if got := list.Ranges()[0]; !got.Equal(rng(t, 0, 10)) {
		t.Fatalf("bridged range = %s, want [0,10)", got)
	}
}

func TestListInsertEmptyIsNoop(t *testing.T) {
	var list TimeRangeList
	list.Insert(RangeAt(FromInt(3)))
	if !list.IsEmpty() {
		t.Fatal("zero-length insert must not create a range")
	}
}

func TestListRemoveSplits(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 0, 10))
	list.Remove(rng(t, 4, 6))

	got := list.Ranges()
	if len(got) != 2 {
		t.Fatalf("expected split into 2 ranges, got %d", len(got))
	}
	if !got[0].Equal(rng(t, 0, 4)) || !got[1].Equal(rng(t, 6, 10)) {
		t.Fatalf("split = %s, %s; want [0,4), [6,10)", got[0], got[1])
	}
}

func TestListRemoveRoundTrip(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 3, 9))
	list.Remove(rng(t, 3, 9))
	if !list.IsEmpty() {
		t.Fatalf("remove of exact range should empty the list: %v", list.Ranges())
	}
}

func TestListTailOperations(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 0, 4))
	list.Insert(rng(t, 6, 12))

	tail := list.IntersectsFrom(FromInt(8))
	if len(tail) != 1 || !tail[0].Equal(rng(t, 8, 12)) {
		t.Fatalf("tail from 8 = %v, want [[8,12)]", tail)
	}

	list.RemoveFrom(FromInt(3))
	got := list.Ranges()
	if len(got) != 1 || !got[0].Equal(rng(t, 0, 3)) {
		t.Fatalf("after RemoveFrom(3) = %v, want [[0,3)]", got)
	}
}

func TestListIntersectsClips(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 0, 4))
	list.Insert(rng(t, 6, 10))

	hits := list.Intersects(rng(t, 2, 7))
	if len(hits) != 2 {
		t.Fatalf("expected 2 clipped hits, got %d", len(hits))
	}
	if !hits[0].Equal(rng(t, 2, 4)) || !hits[1].Equal(rng(t, 6, 7)) {
		t.Fatalf("clipped = %s, %s; want [2,4), [6,7)", hits[0], hits[1])
	}
}

func TestListContainsTime(t *testing.T) {
	var list TimeRangeList
	list.Insert(rng(t, 1, 3))
	if !list.ContainsTime(r(3, 2)) {
		t.Fatal("3/2 should be inside [1,3)")
	}
	if list.ContainsTime(FromInt(3)) {
		t.Fatal("out endpoint is exclusive")
	}
}
