package bacontract

import "math"

// AffineForm is an enclosure x ∈ c + Σ αᵢ·[-1,1] + err·[-1,1]: a center, a
// sparse set of noise-symbol coefficients (keyed by symbol index, one per
// input variable plus any symbols introduced by nonlinear operations), and
// an accumulated rounding-error radius. Multiple parameterizations exist in
// the literature (fAF1, fAF2, iAF); this one is the simplest ("No-op"
// style) that still satisfies the single interface the core depends on,
// EvalAffine2 — per spec.md §3, "the core never depends on which is in
// use."
type AffineForm struct {
	center float64
	coeff  map[int]float64
	err    float64
}

// NewAffineSymbol builds the affine form for the i-th independent variable
// ranging over interval x: center = mid(x), one fresh noise symbol with
// coefficient = radius(x).
func NewAffineSymbol(symbol int, x Interval) AffineForm {
	if x.IsEmpty() {
		return AffineForm{center: math.NaN(), err: math.Inf(1)}
	}
	mid := x.Mid()
	rad := 0.5 * x.Diam()
	if math.IsInf(rad, 0) || math.IsNaN(rad) {
		// Unbounded input: the affine form degrades to carrying the
		// whole range as rounding error, which ToInterval reproduces
		// exactly for unbounded intervals.
		return AffineForm{center: 0, err: math.Inf(1)}
	}
	return AffineForm{center: mid, coeff: map[int]float64{symbol: rad}}
}

// Constant returns the affine form for a fixed real value.
func Constant(v float64) AffineForm {
	return AffineForm{center: v}
}

// ToInterval collapses the affine form back to an interval enclosure: the
// center plus the sum of absolute noise coefficients plus the error term,
// rounded outward.
func (a AffineForm) ToInterval() Interval {
	if math.IsInf(a.err, 1) {
		return AllReals
	}
	radius := a.err
	for _, c := range a.coeff {
		radius += math.Abs(c)
	}
	return NewInterval(previousFloat(a.center-radius), nextFloat(a.center+radius))
}

// Add returns a + b, unioning their noise-symbol sets.
func (a AffineForm) Add(b AffineForm) AffineForm {
	out := AffineForm{center: a.center + b.center, err: a.err + b.err, coeff: mergeCoeffs(a.coeff, b.coeff, 1, 1)}
	return out
}

// Sub returns a - b.
func (a AffineForm) Sub(b AffineForm) AffineForm {
	out := AffineForm{center: a.center - b.center, err: a.err + b.err, coeff: mergeCoeffs(a.coeff, b.coeff, 1, -1)}
	return out
}

// Neg returns -a.
func (a AffineForm) Neg() AffineForm {
	out := AffineForm{center: -a.center, err: a.err, coeff: mergeCoeffs(a.coeff, nil, -1, 1)}
	return out
}

// Scale returns k*a, k a real constant.
func (a AffineForm) Scale(k float64) AffineForm {
	out := AffineForm{center: k * a.center, err: math.Abs(k) * a.err, coeff: mergeCoeffs(a.coeff, nil, k, 1)}
	return out
}

// Mul returns a conservative enclosure of a*b: the result keeps only the
// product of the centers and folds every other term, linear noise terms
// included, into the error radius, so it carries no noise symbols (the
// "No-op" affine policy spec.md's Glossary allows, since the core never
// inspects which parameterization is in use).
func (a AffineForm) Mul(b AffineForm) AffineForm {
	center := a.center * b.center
	radA, radB := a.radius(), b.radius()
	// |a*b - center| <= |a.center|*radB + |b.center|*radA + radA*radB
	crossErr := math.Abs(a.center)*radB + math.Abs(b.center)*radA + radA*radB + a.err*b.radius() + b.err*a.radius()
	return AffineForm{center: center, err: crossErr}
}

// coeffOf returns the noise coefficient for the given symbol, 0 if the
// form carries none (used by the linear-relaxation contractor to read
// off the j-th variable's coefficient when that symbol is exactly
// variable j, as it is immediately after NewAffineSymbol).
func (a AffineForm) coeffOf(symbol int) float64 {
	return a.coeff[symbol]
}

func (a AffineForm) radius() float64 {
	r := a.err
	for _, c := range a.coeff {
		r += math.Abs(c)
	}
	return r
}

func mergeCoeffs(a, b map[int]float64, ka, kb float64) map[int]float64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[int]float64, len(a)+len(b))
	for k, v := range a {
		out[k] += ka * v
	}
	for k, v := range b {
		out[k] += kb * v
	}
	return out
}
