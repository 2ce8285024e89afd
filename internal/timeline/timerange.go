package timeline

import "fmt"

// TimeRange is a half-open interval [In, Out) over rational time.
// Invariant: In <= Out. Build ranges through NewRange so the invariant is
// checked at the boundary instead of silently normalized.
type TimeRange struct {
	in  Rational
	out Rational
}

// NewRange builds a range and rejects in > out as a caller error. Silent
// swapping would mask scheduling bugs upstream, so it is never done.
func NewRange(in, out Rational) (TimeRange, error) {
	if out.Less(in) {
		return TimeRange{}, fmt.Errorf("timeline: invalid range [%s, %s)", in, out)
	}
	return TimeRange{in: in, out: out}, nil
}

// RangeAt returns the zero-length range [t, t).
func RangeAt(t Rational) TimeRange {
	return TimeRange{in: t, out: t}
}

// In returns the inclusive start of the range.
func (t TimeRange) In() Rational {
	return t.in
}

// Out returns the exclusive end of the range.
func (t TimeRange) Out() Rational {
	return t.out
}

// Duration returns Out - In.
func (t TimeRange) Duration() Rational {
	return t.out.Sub(t.in)
}

// IsEmpty reports whether the range covers no time at all.
func (t TimeRange) IsEmpty() bool {
	return t.in.Equal(t.out)
}

// Contains reports whether instant v falls inside [In, Out).
func (t TimeRange) Contains(v Rational) bool {
	return t.in.LessEq(v) && v.Less(t.out)
}

// Overlaps reports whether the two ranges share any instant.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.in.Less(other.out) && other.in.Less(t.out)
}

// Touches reports whether the ranges overlap or are exactly adjacent, i.e.
// whether their union is a single contiguous range.
func (t TimeRange) Touches(other TimeRange) bool {
	return t.in.LessEq(other.out) && other.in.LessEq(t.out)
}

// Intersect clips t to other. The second return is false when the ranges do
// not overlap.
func (t TimeRange) Intersect(other TimeRange) (TimeRange, bool) {
	if !t.Overlaps(other) {
		return TimeRange{}, false
	}
	return TimeRange{
		in:  MaxRational(t.in, other.in),
		out: MinRational(t.out, other.out),
	}, true
}

// Combine returns the union of two touching ranges. Callers must check
// Touches first; combining disjoint ranges would invent time neither covers.
func (t TimeRange) Combine(other TimeRange) TimeRange {
	return TimeRange{
		in:  MinRational(t.in, other.in),
		out: MaxRational(t.out, other.out),
	}
}

// Translate shifts the whole range by a signed offset.
func (t TimeRange) Translate(offset Rational) TimeRange {
	return TimeRange{in: t.in.Add(offset), out: t.out.Add(offset)}
}

// Equal reports exact equality of both endpoints.
func (t TimeRange) Equal(other TimeRange) bool {
	return t.in.Equal(other.in) && t.out.Equal(other.out)
}

// String renders the range as "[in, out)".
func (t TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", t.in, t.out)
}
