package invalidation

import (
	"fmt"
	"sync"

	"spool/internal/timeline"
)

// Observer receives change notifications from a tracker. Callbacks run on the
// goroutine performing the mutation, after the tracker's own state has been
// updated and its lock released.
type Observer interface {
	Invalidated(r timeline.TimeRange)
	Validated(r timeline.TimeRange)
	Shifted(from, to timeline.Rational)
	LengthChanged(oldLength, newLength timeline.Rational)
}

// Tracker maintains the invalid-range set for one timeline. Mutations are
// serialized through an internal mutex; queries return copied snapshots so
// render workers never observe a half-applied edit.
type Tracker struct {
	mu        sync.Mutex
	invalid   timeline.TimeRangeList
	length    timeline.Rational
	observers []Observer
}

// NewTracker returns an empty, fully valid tracker of zero length.
func NewTracker() *Tracker {
	return &Tracker{}
}

// AddObserver registers an observer for subsequent mutations.
func (t *Tracker) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	t.mu.Lock()
	t.observers = append(t.observers, obs)
	t.mu.Unlock()
}

func (t *Tracker) snapshotObservers() []Observer {
	obs := make([]Observer, len(t.observers))
	copy(obs, t.observers)
	return obs
}

// Invalidate merges r into the invalid set. Invalidating an already-invalid
// range changes nothing but still notifies, so observers can re-trigger
// rendering. Zero-length ranges are complete no-ops.
func (t *Tracker) Invalidate(r timeline.TimeRange) {
	if r.IsEmpty() {
		return
	}
	t.mu.Lock()
	t.invalid.Insert(r)
	obs := t.snapshotObservers()
	t.mu.Unlock()

	for _, o := range obs {
		o.Invalidated(r)
	}
}

// InvalidateAll marks the whole known timeline [0, length) invalid.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	length := t.length
	t.mu.Unlock()

	r, err := timeline.NewRange(timeline.FromInt(0), length)
	if err != nil {
		// length is never negative, so this cannot happen.
		return
	}
	t.Invalidate(r)
}

// Validate removes r from the invalid set, splitting partially covered
// entries. Zero-length ranges are complete no-ops.
func (t *Tracker) Validate(r timeline.TimeRange) {
	if r.IsEmpty() {
		return
	}
	t.mu.Lock()
	t.invalid.Remove(r)
	obs := t.snapshotObservers()
	t.mu.Unlock()

	for _, o := range obs {
		o.Validated(r)
	}
}

// SetLength resizes the timeline. Growing marks the new tail
// [oldLength, newLength) invalid; shrinking discards invalid ranges beyond
// the new end. Equal length is a no-op. Negative lengths are caller errors.
func (t *Tracker) SetLength(newLength timeline.Rational) error {
	if newLength.Less(timeline.FromInt(0)) {
		return fmt.Errorf("invalidation: negative timeline length %s", newLength)
	}

	t.mu.Lock()
	old := t.length
	if old.Equal(newLength) {
		t.mu.Unlock()
		return nil
	}

	var grown timeline.TimeRange
	if old.Less(newLength) {
		grown, _ = timeline.NewRange(old, newLength)
		t.invalid.Insert(grown)
	} else {
		t.invalid.RemoveFrom(newLength)
	}
	t.length = newLength
	obs := t.snapshotObservers()
	t.mu.Unlock()

	for _, o := range obs {
		o.LengthChanged(old, newLength)
		if !grown.IsEmpty() {
			o.Invalidated(grown)
		}
	}
	return nil
}

// Shift models an edit that moves everything at or after from by (to - from).
// Invalid ranges in the moved region travel with the edit instead of being
// lost. A forward insertion additionally invalidates the opened gap
// [from, to), since that region is new undefined space.
func (t *Tracker) Shift(from, to timeline.Rational) {
	diff := to.Sub(from)

	t.mu.Lock()
	moved := t.invalid.IntersectsFrom(from)
	t.invalid.RemoveFrom(timeline.MinRational(from, to))
	for _, r := range moved {
		t.invalid.Insert(r.Translate(diff))
	}

	var gap timeline.TimeRange
	if from.Less(to) {
		gap, _ = timeline.NewRange(from, to)
		t.invalid.Insert(gap)
	}
	obs := t.snapshotObservers()
	t.mu.Unlock()

	for _, o := range obs {
		o.Shifted(from, to)
		if !gap.IsEmpty() {
			o.Invalidated(gap)
		}
	}
}

// IsFullyValid reports whether no invalid ranges remain.
func (t *Tracker) IsFullyValid() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invalid.IsEmpty()
}

// IsValidAt reports whether the instant v is outside every invalid range.
func (t *Tracker) IsValidAt(v timeline.Rational) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.invalid.ContainsTime(v)
}

// Intersects returns the invalid ranges overlapping r, clipped to r. The
// result is a snapshot; later edits do not affect it.
func (t *Tracker) Intersects(r timeline.TimeRange) []timeline.TimeRange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invalid.Intersects(r)
}

// Invalid returns a snapshot of the current invalid ranges in order.
func (t *Tracker) Invalid() []timeline.TimeRange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invalid.Ranges()
}

// Length returns the current timeline length.
func (t *Tracker) Length() timeline.Rational {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.length
}
