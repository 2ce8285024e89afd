package timeline

import "sort"

// TimeRangeList is an ordered set of disjoint, non-adjacent ranges sorted by
// In. Inserting a range that overlaps or touches existing entries merges them
// all into one, so no two stored ranges ever touch. The list is not
// goroutine-safe; each invalidation tracker owns exactly one and serializes
// access itself.
type TimeRangeList struct {
	ranges []TimeRange
}

// Insert merges r into the set. Empty ranges are no-ops. Merging is
// transitive: a range bridging two stored entries collapses all three.
func (l *TimeRangeList) Insert(r TimeRange) {
	if r.IsEmpty() {
		return
	}

	merged := r
	kept := l.ranges[:0]
	for _, existing := range l.ranges {
		if existing.Touches(merged) {
			merged = merged.Combine(existing)
		} else {
			kept = append(kept, existing)
		}
	}
	l.ranges = append(kept, merged)
	sort.Slice(l.ranges, func(i, j int) bool {
		return l.ranges[i].In().Less(l.ranges[j].In())
	})
}

// Remove deletes r from the set. A stored range partially covered by r is
// trimmed; one fully containing r is split in two. Empty ranges are no-ops.
func (l *TimeRangeList) Remove(r TimeRange) {
	if r.IsEmpty() {
		return
	}

	next := make([]TimeRange, 0, len(l.ranges)+1)
	for _, existing := range l.ranges {
		if !existing.Overlaps(r) {
			next = append(next, existing)
			continue
		}
		if existing.In().Less(r.In()) {
			next = append(next, TimeRange{in: existing.In(), out: r.In()})
		}
		if r.Out().Less(existing.Out()) {
			next = append(next, TimeRange{in: r.Out(), out: existing.Out()})
		}
	}
	l.ranges = next
}

// RemoveFrom deletes everything at or after t, i.e. the unbounded tail
// [t, +inf).
func (l *TimeRangeList) RemoveFrom(t Rational) {
	next := l.ranges[:0]
	for _, existing := range l.ranges {
		switch {
		case existing.Out().LessEq(t):
			next = append(next, existing)
		case existing.In().Less(t):
			next = append(next, TimeRange{in: existing.In(), out: t})
		}
	}
	l.ranges = next
}

// Intersects returns the stored ranges overlapping r, each clipped to r.
func (l *TimeRangeList) Intersects(r TimeRange) []TimeRange {
	var out []TimeRange
	for _, existing := range l.ranges {
		if clipped, ok := existing.Intersect(r); ok {
			out = append(out, clipped)
		}
	}
	return out
}

// IntersectsFrom returns the stored ranges overlapping the unbounded tail
// [t, +inf), each clipped to start no earlier than t.
func (l *TimeRangeList) IntersectsFrom(t Rational) []TimeRange {
	var out []TimeRange
	for _, existing := range l.ranges {
		if existing.Out().LessEq(t) {
			continue
		}
		clipped := existing
		if clipped.In().Less(t) {
			clipped = TimeRange{in: t, out: clipped.Out()}
		}
		out = append(out, clipped)
	}
	return out
}

// ContainsTime reports whether instant t falls inside any stored range.
func (l *TimeRangeList) ContainsTime(t Rational) bool {
	for _, existing := range l.ranges {
		if existing.Contains(t) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set holds no time at all.
func (l *TimeRangeList) IsEmpty() bool {
	return len(l.ranges) == 0
}

// Len returns the number of disjoint stored ranges.
func (l *TimeRangeList) Len() int {
	return len(l.ranges)
}

// Ranges returns a copy of the stored ranges in In order. Callers get a
// snapshot; mutating it never affects the list.
func (l *TimeRangeList) Ranges() []TimeRange {
	out := make([]TimeRange, len(l.ranges))
	copy(out, l.ranges)
	return out
}
