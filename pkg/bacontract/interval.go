// Package bacontract implements a branch-and-contract constraint satisfaction
// and global optimization engine over interval arithmetic: a contractor
// algebra, a bisector algebra, a cell frontier, and the solver/optimizer
// loops that drive them.
package bacontract

import (
	"fmt"
	"math"
)

// Interval is a closed, connected subset of the extended reals, possibly
// empty, possibly unbounded. Arithmetic rounds outward: every operation
// returns a result guaranteed to contain the true mathematical range, never
// a tighter one.
//
// The zero value is the degenerate interval [0, 0]; use EmptyInterval or
// NewInterval for anything else.
type Interval struct {
	lo, hi float64
	empty  bool
}

// AllReals is the interval (-inf, +inf).
var AllReals = Interval{lo: math.Inf(-1), hi: math.Inf(1)}

// EmptyInterval returns the empty interval.
func EmptyInterval() Interval {
	return Interval{empty: true}
}

// NewInterval builds the interval [lo, hi]. If hi < lo the result is empty.
func NewInterval(lo, hi float64) Interval {
	if hi < lo || math.IsNaN(lo) || math.IsNaN(hi) {
		return EmptyInterval()
	}
	return Interval{lo: lo, hi: hi}
}

// Degenerate returns the single-point interval [x, x].
func Degenerate(x float64) Interval {
	return Interval{lo: x, hi: x}
}

// IsEmpty reports whether the interval has no points.
func (x Interval) IsEmpty() bool { return x.empty }

// Lb returns the lower bound. Undefined (returns +inf) on an empty interval.
func (x Interval) Lb() float64 {
	if x.empty {
		return math.Inf(1)
	}
	return x.lo
}

// Ub returns the upper bound. Undefined (returns -inf) on an empty interval.
func (x Interval) Ub() float64 {
	if x.empty {
		return math.Inf(-1)
	}
	return x.hi
}

// Mid returns the midpoint. For a half-unbounded interval this clamps to
// the finite bound nudged by one; for AllReals it returns 0.
func (x Interval) Mid() float64 {
	if x.empty {
		return math.NaN()
	}
	lo, hi := x.lo, x.hi
	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return 0
	case math.IsInf(lo, -1):
		return hi - 1
	case math.IsInf(hi, 1):
		return lo + 1
	default:
		return lo + 0.5*(hi-lo)
	}
}

// Diam returns the diameter (width) of the interval.
func (x Interval) Diam() float64 {
	if x.empty {
		return 0
	}
	return x.hi - x.lo
}

// Mag returns max(|lo|, |hi|), the magnitude.
func (x Interval) Mag() float64 {
	if x.empty {
		return 0
	}
	return math.Max(math.Abs(x.lo), math.Abs(x.hi))
}

// Mig returns the mignitude: min |v| for v in the interval, i.e. 0 if the
// interval straddles zero, else the bound closest to zero.
func (x Interval) Mig() float64 {
	if x.empty {
		return 0
	}
	if x.lo > 0 {
		return x.lo
	}
	if x.hi < 0 {
		return -x.hi
	}
	return 0
}

// IsBisectable reports whether the interval has room to split: false once
// the upper bound is the float successor of the lower bound.
func (x Interval) IsBisectable() bool {
	if x.empty {
		return false
	}
	return x.hi > nextFloat(x.lo)
}

// nextFloat returns the next representable float64 above x (±inf pass
// through unchanged), used as the discretization guard for strict
// inequalities and unbisectability, per the "next_float/previous_float"
// guards spec.md calls for.
func nextFloat(x float64) float64 {
	return math.Nextafter(x, math.Inf(1))
}

// previousFloat returns the next representable float64 below x.
func previousFloat(x float64) float64 {
	return math.Nextafter(x, math.Inf(-1))
}

// Contains reports whether the interval contains the point x.
func (x Interval) Contains(v float64) bool {
	if x.empty {
		return false
	}
	return v >= x.lo && v <= x.hi
}

// ContainsInterval reports whether x contains all of y (y is a subset of x).
func (x Interval) ContainsInterval(y Interval) bool {
	if y.empty {
		return true
	}
	if x.empty {
		return false
	}
	return x.lo <= y.lo && y.hi <= x.hi
}

// Inter returns the intersection of x and y, empty if they are disjoint.
func (x Interval) Inter(y Interval) Interval {
	if x.empty || y.empty {
		return EmptyInterval()
	}
	lo := math.Max(x.lo, y.lo)
	hi := math.Min(x.hi, y.hi)
	return NewInterval(lo, hi)
}

// Hull returns the interval hull (convex union) of x and y.
func (x Interval) Hull(y Interval) Interval {
	if x.empty {
		return y
	}
	if y.empty {
		return x
	}
	return Interval{lo: math.Min(x.lo, y.lo), hi: math.Max(x.hi, y.hi)}
}

// complement returns the (up to two pieces) complement of x within the
// reals, following the decomposition original_source/ibex_IntervalVector.cpp
// uses: a strictly-left piece and a strictly-right piece.
func (x Interval) complement() (Interval, Interval) {
	if x.empty {
		return AllReals, EmptyInterval()
	}
	var c1, c2 Interval
	if x.lo > math.Inf(-1) {
		c1 = NewInterval(math.Inf(-1), x.lo)
		if x.hi < math.Inf(1) {
			c2 = NewInterval(x.hi, math.Inf(1))
		} else {
			c2 = EmptyInterval()
		}
	} else if x.hi < math.Inf(1) {
		c1 = NewInterval(x.hi, math.Inf(1))
		c2 = EmptyInterval()
	} else {
		c1, c2 = EmptyInterval(), EmptyInterval()
	}
	return c1, c2
}

// Diff returns the set difference x \ y as up to two disjoint intervals.
// Degenerate (single-point) results are dropped, matching the teacher's
// preference for working sets that never carry measure-zero slivers.
func (x Interval) Diff(y Interval) []Interval {
	if x.empty {
		return nil
	}
	c1, c2 := y.complement()
	out := make([]Interval, 0, 2)
	for _, c := range [2]Interval{c1, c2} {
		piece := x.Inter(c)
		if piece.empty || piece.lo == piece.hi {
			continue
		}
		out = append(out, piece)
	}
	return out
}

// Add returns x + y with outward-rounded bounds.
func (x Interval) Add(y Interval) Interval {
	if x.empty || y.empty {
		return EmptyInterval()
	}
	return NewInterval(previousFloat(x.lo+y.lo), nextFloat(x.hi+y.hi))
}

// Sub returns x - y with outward-rounded bounds.
func (x Interval) Sub(y Interval) Interval {
	if x.empty || y.empty {
		return EmptyInterval()
	}
	return NewInterval(previousFloat(x.lo-y.hi), nextFloat(x.hi-y.lo))
}

// Neg returns -x.
func (x Interval) Neg() Interval {
	if x.empty {
		return EmptyInterval()
	}
	return Interval{lo: -x.hi, hi: -x.lo}
}

// Mul returns x * y with outward-rounded bounds.
func (x Interval) Mul(y Interval) Interval {
	if x.empty || y.empty {
		return EmptyInterval()
	}
	candidates := [4]float64{x.lo * y.lo, x.lo * y.hi, x.hi * y.lo, x.hi * y.hi}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return NewInterval(previousFloat(lo), nextFloat(hi))
}

// Div returns x / y with outward-rounded bounds. If y straddles zero the
// result is AllReals (a sound but coarse enclosure), matching how the
// teacher's Domain operations fall back to a conservative answer rather
// than guess.
func (x Interval) Div(y Interval) Interval {
	if x.empty || y.empty {
		return EmptyInterval()
	}
	if y.lo <= 0 && y.hi >= 0 {
		if y.lo == 0 && y.hi == 0 {
			return EmptyInterval()
		}
		return AllReals
	}
	candidates := [4]float64{x.lo / y.lo, x.lo / y.hi, x.hi / y.lo, x.hi / y.hi}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return NewInterval(previousFloat(lo), nextFloat(hi))
}

// Sqr returns x^2 with outward-rounded bounds.
func (x Interval) Sqr() Interval {
	if x.empty {
		return EmptyInterval()
	}
	mig, mag := x.Mig(), x.Mag()
	return NewInterval(previousFloat(mig*mig), nextFloat(mag*mag))
}

// Sqrt returns sqrt(x), intersected with the non-negative reals first since
// sqrt is undefined below zero.
func (x Interval) Sqrt() Interval {
	nonneg := x.Inter(NewInterval(0, math.Inf(1)))
	if nonneg.empty {
		return EmptyInterval()
	}
	return NewInterval(previousFloat(math.Sqrt(nonneg.lo)), nextFloat(math.Sqrt(nonneg.hi)))
}

// Sign returns the interval enclosure of the sign function: -1, 0, 1, or a
// hull of adjacent values when x straddles a discontinuity.
func (x Interval) Sign() Interval {
	if x.empty {
		return EmptyInterval()
	}
	lo, hi := -1.0, 1.0
	if x.hi < 0 {
		hi = -1
	} else if x.hi == 0 {
		hi = 0
	}
	if x.lo > 0 {
		lo = 1
	} else if x.lo == 0 {
		lo = 0
	}
	return NewInterval(lo, hi)
}

// Equal reports bitwise-exact bound equality (both empty, or same lo/hi).
func (x Interval) Equal(y Interval) bool {
	if x.empty || y.empty {
		return x.empty == y.empty
	}
	return x.lo == y.lo && x.hi == y.hi
}

// IsSubset reports whether x is a subset of y.
func (x Interval) IsSubset(y Interval) bool {
	return y.ContainsInterval(x)
}

// IsStrictSubset reports x is a subset of y and not equal to it.
func (x Interval) IsStrictSubset(y Interval) bool {
	return x.IsSubset(y) && !x.Equal(y)
}

// String renders the interval for diagnostics.
func (x Interval) String() string {
	if x.empty {
		return "()"
	}
	return fmt.Sprintf("[%g, %g]", x.lo, x.hi)
}
