package bacontract

import (
	"context"
	"sort"
	"sync"

	"github.com/gitrdm/bacontract/internal/parallel"
)

// DefaultMaxDiamBox is the diameter above which CtcLinearRelaxation
// refuses to linearize a box at all (the Taylor linearization becomes
// too loose to be worth an LP call).
const DefaultMaxDiamBox = 1e6

// Linearizer builds an outer linear approximation of a constraint system
// at a box and installs it into bridge via AddConstraint. Two concrete
// strategies are provided: corner-point Taylor linearization ("X-Newton"
// in the literature) and an affine-form derivation ("ART"); both satisfy
// this same interface so CtcLinearRelaxation is agnostic to which is
// used.
type Linearizer interface {
	Linearize(constraints []*NumConstraint, box *IntervalVector, bridge *LPBridge)
}

// TaylorLinearizer linearizes each constraint f(x) op 0 at a corner of
// box via f(x) ≈ f(corner) + ∇f(corner)·(x - corner), using interval
// gradients so the resulting half-space is a sound outer approximation.
type TaylorLinearizer struct{}

func (TaylorLinearizer) Linearize(constraints []*NumConstraint, box *IntervalVector, bridge *LPBridge) {
	n := box.Size()
	corner := box.Mid()
	for _, c := range constraints {
		grad := c.F.Gradient(box)
		coeffs := make([]float64, n)
		rhs := 0.0
		for j := 0; j < n; j++ {
			g := grad.At(j).Ub() // sound outward bound on the slope
			coeffs[j] = g
			rhs += g * corner[j]
		}
		fCorner := c.F.Eval(pointBox(corner)).Ub()
		rhs -= fCorner
		if c.Op == OpEq {
			bridge.AddConstraint(coeffs, OpLe, rhs)
			bridge.AddConstraint(coeffs, OpGe, rhs)
			continue
		}
		bridge.AddConstraint(coeffs, taylorOp(c.Op), rhs)
	}
}

func taylorOp(op CompareOp) CompareOp {
	switch op {
	case OpLe, OpLt:
		return OpLe
	case OpGe, OpGt:
		return OpGe
	default:
		return OpLe
	}
}

// AffineLinearizer derives the outer linearization from each
// constraint's affine-form enclosure instead of a point gradient,
// typically tighter when the box is still wide.
type AffineLinearizer struct{}

func (AffineLinearizer) Linearize(constraints []*NumConstraint, box *IntervalVector, bridge *LPBridge) {
	n := box.Size()
	for _, c := range constraints {
		af := evalAffineForm(c.F.components[0], box)
		coeffs := make([]float64, n)
		op := taylorOp(c.Op)
		rhs := af.err - af.center
		if op == OpGe {
			rhs = -af.err - af.center
		}
		// Symbol j stands for (x_j - mid_j)/rad_j, so its coefficient is
		// rescaled to x_j and the midpoint term moves into rhs.
		for j := 0; j < n; j++ {
			if rad := box.At(j).Diam() / 2; rad > 0 {
				coeffs[j] = af.coeffOf(j) / rad
				rhs += coeffs[j] * box.At(j).Mid()
			}
		}
		bridge.AddConstraint(coeffs, op, rhs)
	}
}

// CtcLinearRelaxation builds an LP outer approximation and, in a single
// pass over the 2n variable faces, tightens each bound with a rigorously
// post-processed LP solve.
type CtcLinearRelaxation struct {
	constraints []*NumConstraint
	nbVar       int
	linearize   Linearizer
	maxDiamBox  float64

	// Pool, if set, fans the per-face LP solves (the 2*nbVar independent
	// optimizations that share only the read-only linearized bridge) out
	// across its workers; each face gets its own bridge clone so no
	// mutable state is shared across goroutines. Left nil, faces solve
	// sequentially.
	Pool *parallel.WorkerPool
}

// NewCtcLinearRelaxation builds the contractor over constraints sharing
// nbVar variables.
func NewCtcLinearRelaxation(constraints []*NumConstraint, nbVar int, linearize Linearizer) *CtcLinearRelaxation {
	if linearize == nil {
		linearize = TaylorLinearizer{}
	}
	return &CtcLinearRelaxation{constraints: constraints, nbVar: nbVar, linearize: linearize, maxDiamBox: DefaultMaxDiamBox}
}

func (l *CtcLinearRelaxation) NbVar() int { return l.nbVar }

// WithParallelFaces opts this contractor into solving its 2*nbVar faces
// across n workers instead of sequentially. The reference loop (spec.md
// §5) stays single-threaded by default; this is strictly an opt-in that
// changes wall-clock only, never the result, since post-processing (which
// mutates box) always applies sequentially afterward.
func (l *CtcLinearRelaxation) WithParallelFaces(n int) *CtcLinearRelaxation {
	l.Pool = parallel.NewWorkerPool(n)
	return l
}

func (l *CtcLinearRelaxation) Contract(box *IntervalVector) error {
	if diam, _ := box.MaxDiam(); diam > l.maxDiamBox {
		return nil
	}

	bridge := NewLPBridge(l.nbVar, len(l.constraints))
	for i := 0; i < l.nbVar; i++ {
		bridge.SetBoundVar(i, box.At(i))
	}
	l.linearize.Linearize(l.constraints, box, bridge)

	faces := achterbergOrder(box, bridge.Primal())
	solved := l.solveFaces(bridge, faces)

	// Applying the rigorous post-processing must stay sequential and in
	// Achterberg order: each face tightens box in place, and later faces
	// read that narrowed box.
	for i, face := range faces {
		r := solved[i]
		if r.err != nil {
			continue // LPBridge FAIL degrades to UNKNOWN for this face
		}
		sign := 1.0
		if !face.min {
			sign = -1.0
		}
		switch r.status {
		case StatusOptimal:
			if err := l.postProcessOptimal(r.bridge, box, face, sign); err != nil {
				return err
			}
		case StatusInfeasible:
			if err := l.certifyInfeasible(r.bridge, box); err != nil {
				return err
			}
		}
	}
	return nil
}

type faceSolveResult struct {
	bridge *LPBridge
	status LPStatus
	err    error
}

// solveFaces solves every face's LP independently (each against its own
// bridge clone of the shared linearization, differing only in which
// variable's objective row is set) either across l.Pool's workers or, with
// no pool configured, sequentially in the caller's goroutine.
func (l *CtcLinearRelaxation) solveFaces(bridge *LPBridge, faces []faceSpec) []faceSolveResult {
	results := make([]faceSolveResult, len(faces))
	solveOne := func(i int) {
		fb := bridge.Clone()
		sign := 1.0
		if !faces[i].min {
			sign = -1.0
		}
		fb.SetVarObj(faces[i].dim, sign)
		status, err := fb.Solve()
		results[i] = faceSolveResult{bridge: fb, status: status, err: err}
	}

	if l.Pool == nil {
		for i := range faces {
			solveOne(i)
		}
		return results
	}

	var wg sync.WaitGroup
	ctx := context.Background()
	for i := range faces {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			solveOne(i)
		}
		if err := l.Pool.Submit(ctx, task); err != nil {
			// Pool rejected the task (shut down mid-use): fall back to
			// running it inline rather than losing the face.
			wg.Done()
			solveOne(i)
		}
	}
	wg.Wait()
	return results
}

type faceSpec struct {
	dim int
	min bool // true = minimize (tighten lower bound), false = maximize
}

// achterbergOrder picks face exploration order by distance of a
// reference point (the previous primal optimum, or box's midpoint if
// none yet) from each bound: faces closest to already being tight are
// tried first, since they are cheapest to confirm or improve.
func achterbergOrder(box *IntervalVector, primal []float64) []faceSpec {
	n := box.Size()
	ref := primal
	if ref == nil {
		ref = box.Mid()
	}
	type scored struct {
		f faceSpec
		d float64
	}
	all := make([]scored, 0, 2*n)
	for i := 0; i < n; i++ {
		x := ref[i]
		lo, hi := box.At(i).Lb(), box.At(i).Ub()
		all = append(all, scored{faceSpec{i, true}, x - lo})
		all = append(all, scored{faceSpec{i, false}, hi - x})
	}
	sort.Slice(all, func(a, b int) bool { return all[a].d < all[b].d })
	out := make([]faceSpec, len(all))
	for i, s := range all {
		out[i] = s.f
	}
	return out
}

// postProcessOptimal applies Neumaier-Shcherbina rigor: recompute obj =
// λᵀb − (Aᵀλ − c)ᵀx with interval arithmetic so the bound is valid even
// if the simplex solution itself was inexact, then tighten box[face.dim]
// if that rigorous bound improves on the current one.
func (l *CtcLinearRelaxation) postProcessOptimal(bridge *LPBridge, box *IntervalVector, face faceSpec, sign float64) error {
	rows := bridge.Rows()
	dual := bridge.Dual()
	m := len(rows)
	n := l.nbVar

	bEnc := make([]Interval, m)
	for i, r := range rows {
		bEnc[i] = Degenerate(r.rhs)
	}
	lambda := make([]Interval, m)
	for i := 0; i < m; i++ {
		d := dual[i]
		if i < len(dual) {
			lambda[i] = Degenerate(clampFinite(d))
		} else {
			lambda[i] = Degenerate(0)
		}
	}

	objBound := Degenerate(0)
	for i := 0; i < m; i++ {
		objBound = objBound.Add(lambda[i].Mul(bEnc[i]))
	}
	for j := 0; j < n; j++ {
		atjCol := Degenerate(0)
		for i := 0; i < m; i++ {
			atjCol = atjCol.Add(lambda[i].Mul(Degenerate(rows[i].coeffs[j])))
		}
		cj := Degenerate(0)
		if j == face.dim {
			cj = Degenerate(sign)
		}
		residual := atjCol.Sub(cj)
		objBound = objBound.Sub(residual.Mul(box.At(j)))
	}

	if sign > 0 {
		if objBound.Lb() > box.At(face.dim).Lb() {
			box.Set(face.dim, NewInterval(objBound.Lb(), box.At(face.dim).Ub()))
		}
	} else {
		ub := -objBound.Lb()
		if ub < box.At(face.dim).Ub() {
			box.Set(face.dim, NewInterval(box.At(face.dim).Lb(), ub))
		}
	}
	if box.At(face.dim).IsEmpty() || box.At(face.dim).Lb() > box.At(face.dim).Ub() {
		box.SetEmpty()
		return ErrEmptyBox
	}
	return nil
}

// certifyInfeasible applies the Farkas-dual infeasibility certificate:
// if 0 is not in (Aᵀλ)·box − λᵀb, the infeasibility is certified and the
// whole box is emptied; otherwise the INFEASIBLE result is ignored (no
// emptiness can be inferred from it alone).
func (l *CtcLinearRelaxation) certifyInfeasible(bridge *LPBridge, box *IntervalVector) error {
	dual := bridge.Dual()
	if dual == nil {
		return nil
	}
	rows := bridge.Rows()
	n := l.nbVar
	acc := Degenerate(0)
	for j := 0; j < n; j++ {
		col := Degenerate(0)
		for i, r := range rows {
			d := 0.0
			if i < len(dual) {
				d = clampFinite(dual[i])
			}
			col = col.Add(Degenerate(d).Mul(Degenerate(r.coeffs[j])))
		}
		acc = acc.Add(col.Mul(box.At(j)))
	}
	rhsTerm := Degenerate(0)
	for i, r := range rows {
		d := 0.0
		if i < len(dual) {
			d = clampFinite(dual[i])
		}
		rhsTerm = rhsTerm.Add(Degenerate(d).Mul(Degenerate(r.rhs)))
	}
	cert := acc.Sub(rhsTerm)
	if !cert.Contains(0) {
		box.SetEmpty()
		return ErrEmptyBox
	}
	return nil
}

// clampFinite zeroes a NaN dual entry, to keep the rigor computation
// well-defined; every other value, infinities included, passes through.
func clampFinite(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	return v
}
