package bacontract

import "math"

// Bisector splits a cell's box into two children whose hull reconstructs
// the original box and whose overlap is degenerate in exactly the
// dimension chosen for the split.
type Bisector interface {
	Bisect(c *Cell) (*Cell, *Cell, error)
}

func bisectAt(c *Cell, dim int, ratio float64) (*Cell, *Cell, error) {
	left, right, err := c.Box.Bisect(dim, ratio)
	if err != nil {
		return nil, nil, err
	}
	lc, rc := c.Clone(left), c.Clone(right)
	lc.LastVar, rc.LastVar = dim, dim
	return lc, rc, nil
}

// widestDim returns the dimension of maximal diameter among those whose
// diameter exceeds eps, or (sentinel, false) if none qualifies.
func widestDim(box *IntervalVector, eps []float64) (int, bool) {
	best, bestDiam := sentinel, -1.0
	for i := 0; i < box.Size(); i++ {
		d := box.At(i).Diam()
		if d > eps[i] && d > bestDiam {
			best, bestDiam = i, d
		}
	}
	return best, best != sentinel
}

// uniformEps builds a per-dimension epsilon slice from a single scalar,
// the common case for all of this file's constructors.
func uniformEps(n int, eps float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = eps
	}
	return out
}

// RoundRobin cycles through dimensions wider than eps, remembering
// the cell's LastVar between calls so consecutive bisections of the same
// lineage advance through dimensions rather than always splitting the
// same one.
type RoundRobin struct {
	eps   []float64
	ratio float64
}

// NewRoundRobin builds a RoundRobin bisector with a uniform eps.
func NewRoundRobin(eps, ratio float64) *RoundRobin {
	return &RoundRobin{ratio: ratio, eps: []float64{eps}}
}

func (b *RoundRobin) epsFor(n int) []float64 {
	if len(b.eps) == n {
		return b.eps
	}
	return uniformEps(n, b.eps[0])
}

func (b *RoundRobin) Bisect(c *Cell) (*Cell, *Cell, error) {
	n := c.Box.Size()
	eps := b.epsFor(n)
	start := c.LastVar + 1
	for k := 0; k < n; k++ {
		dim := (start + k) % n
		if c.Box.At(dim).Diam() > eps[dim] {
			return bisectAt(c, dim, b.ratio)
		}
	}
	return nil, nil, ErrNoBisectableVariable
}

// LargestFirst always picks the widest dimension above eps.
type LargestFirst struct {
	eps   []float64
	ratio float64
}

// NewLargestFirst builds a LargestFirst bisector with a uniform eps.
func NewLargestFirst(eps, ratio float64) *LargestFirst {
	return &LargestFirst{ratio: ratio, eps: []float64{eps}}
}

func (b *LargestFirst) Bisect(c *Cell) (*Cell, *Cell, error) {
	n := c.Box.Size()
	eps := b.eps
	if len(eps) != n {
		eps = uniformEps(n, b.eps[0])
	}
	dim, ok := widestDim(c.Box, eps)
	if !ok {
		return nil, nil, ErrNoBisectableVariable
	}
	return bisectAt(c, dim, b.ratio)
}

// SmearKind selects among the four smear-impact scoring variants.
type SmearKind int

const (
	SmearMax SmearKind = iota
	SmearSum
	SmearMaxRelative
	SmearSumRelative
)

// SmearFunction picks the variable maximizing a Jacobian-weighted impact
// score among those wider than eps. When no variable is wider than eps it
// returns ErrNoBisectableVariable; it falls back to RoundRobin only when
// no wide variable gets a score above -inf (e.g. every score is NaN).
type SmearFunction struct {
	f        *Function
	kind     SmearKind
	eps      float64
	ratio    float64
	fallback *RoundRobin
}

// NewSmearFunction builds a smear bisector over f's Jacobian.
func NewSmearFunction(f *Function, kind SmearKind, eps, ratio float64) *SmearFunction {
	return &SmearFunction{f: f, kind: kind, eps: eps, ratio: ratio, fallback: NewRoundRobin(eps, ratio)}
}

func (b *SmearFunction) Bisect(c *Cell) (*Cell, *Cell, error) {
	n := c.Box.Size()
	eps := uniformEps(n, b.eps)
	if _, ok := widestDim(c.Box, eps); !ok {
		return nil, nil, ErrNoBisectableVariable
	}

	jac := b.f.Jacobian(c.Box)
	scores := make([]float64, n)
	for j := 0; j < n; j++ {
		if c.Box.At(j).Diam() <= eps[j] {
			scores[j] = math.Inf(-1)
			continue
		}
		scores[j] = b.score(jac, j, c.Box)
	}

	best, bestScore := sentinel, math.Inf(-1)
	for j, s := range scores {
		if s > bestScore {
			best, bestScore = j, s
		}
	}
	if best == sentinel || math.IsInf(bestScore, -1) {
		return b.fallback.Bisect(c)
	}
	return bisectAt(c, best, b.ratio)
}

func (b *SmearFunction) score(jac *IntervalMatrix, j int, box *IntervalVector) float64 {
	diamJ := box.At(j).Diam()
	rows := jac.Rows()
	switch b.kind {
	case SmearMax:
		best := 0.0
		for i := 0; i < rows; i++ {
			v := jac.At(i, j).Mag() * diamJ
			if v > best {
				best = v
			}
		}
		return best
	case SmearSum:
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += jac.At(i, j).Mag() * diamJ
		}
		return sum
	case SmearMaxRelative:
		best := 0.0
		for i := 0; i < rows; i++ {
			norm := rowNorm(jac, i, box)
			if norm == 0 {
				continue
			}
			v := jac.At(i, j).Mag() * diamJ / norm
			if v > best {
				best = v
			}
		}
		return best
	case SmearSumRelative:
		sum := 0.0
		for i := 0; i < rows; i++ {
			norm := rowNorm(jac, i, box)
			if norm == 0 {
				continue
			}
			sum += jac.At(i, j).Mag() * diamJ / norm
		}
		return sum
	default:
		return 0
	}
}

func rowNorm(jac *IntervalMatrix, row int, box *IntervalVector) float64 {
	sum := 0.0
	for k := 0; k < jac.Cols(); k++ {
		sum += jac.At(row, k).Mag() * box.At(k).Diam()
	}
	return sum
}
