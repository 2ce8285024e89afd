package timeline

import (
	"fmt"
	"strconv"
)

// Rational is an exact fractional timecode. The zero value is 0/1.
// All arithmetic keeps values normalized (positive denominator, reduced by
// gcd) so equal times always compare equal regardless of how they were built.
type Rational struct {
	num int64
	den int64
}

// NewRational builds a normalized rational from a numerator and denominator.
// A zero denominator is a caller error.
func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("timeline: zero denominator for %d/0", num)
	}
	return reduce(num, den), nil
}

// FromInt returns the rational representing whole seconds (or frames,
// depending on the caller's unit).
func FromInt(v int64) Rational {
	return Rational{num: v, den: 1}
}

// FromFrame returns the rational time of frame n at the given timebase
// (frames per second).
func FromFrame(n int64, fps int64) (Rational, error) {
	return NewRational(n, fps)
}

func reduce(num, den int64) Rational {
	if den < 0 {
		num = -num
		den = -den
	}
	if num == 0 {
		return Rational{num: 0, den: 1}
	}
	g := gcd(abs64(num), den)
	return Rational{num: num / g, den: den / g}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Num returns the normalized numerator.
func (r Rational) Num() int64 {
	return r.num
}

// Den returns the normalized denominator. Always positive; 1 for the zero
// value.
func (r Rational) Den() int64 {
	if r.den == 0 {
		return 1
	}
	return r.den
}

// IsZero reports whether the rational equals 0.
func (r Rational) IsZero() bool {
	return r.num == 0
}

// Add returns r + other.
func (r Rational) Add(other Rational) Rational {
	return reduce(r.num*other.Den()+other.num*r.Den(), r.Den()*other.Den())
}

// Sub returns r - other.
func (r Rational) Sub(other Rational) Rational {
	return reduce(r.num*other.Den()-other.num*r.Den(), r.Den()*other.Den())
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	return Rational{num: -r.num, den: r.Den()}
}

// Cmp compares r against other: -1 when r < other, 0 when equal, 1 when
// greater.
func (r Rational) Cmp(other Rational) int {
	lhs := r.num * other.Den()
	rhs := other.num * r.Den()
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Less reports r < other.
func (r Rational) Less(other Rational) bool {
	return r.Cmp(other) < 0
}

// LessEq reports r <= other.
func (r Rational) LessEq(other Rational) bool {
	return r.Cmp(other) <= 0
}

// Equal reports r == other.
func (r Rational) Equal(other Rational) bool {
	return r.Cmp(other) == 0
}

// Float64 returns the closest floating approximation; intended for display
// only, never for cache decisions.
func (r Rational) Float64() float64 {
	return float64(r.num) / float64(r.Den())
}

// String renders the rational as "num/den".
func (r Rational) String() string {
	return strconv.FormatInt(r.num, 10) + "/" + strconv.FormatInt(r.Den(), 10)
}

// MinRational returns the smaller of a and b.
func MinRational(a, b Rational) Rational {
	if a.Less(b) {
		return a
	}
	return b
}

// MaxRational returns the larger of a and b.
func MaxRational(a, b Rational) Rational {
	if a.Less(b) {
		return b
	}
	return a
}
