package bacontract

import (
	"context"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// Optimizer runs the branch-and-bound global-minimization loop (spec
// §4.8) over an extended system (goal folded into a constraint on a
// fresh variable y), maintaining loup/uplo bookkeeping across a
// DoubleHeap frontier.
type Optimizer struct {
	Ext    *System // the extended system; build via System.Extended()
	CtcIn  Contractor
	CtcOut ActiveContractor
	Bisect Bisector

	RelPrec float64 // relative precision on the objective
	AbsPrec float64
	Prec    float64 // box-diameter termination precision

	Timeout time.Duration
	Monitor *SearchMonitor

	rng *rand.Rand

	loup      float64
	loupPoint []float64
	uplo      float64
	uploEps   float64
}

// NewOptimizer builds an optimizer over ext (see System.Extended), using
// ctcIn to prove infeasible-region emptiness and ctcOut to prove
// feasibility, with seed fixing the local-search and sampling
// randomness for reproducible runs (spec §5).
func NewOptimizer(ext *System, ctcIn Contractor, ctcOut ActiveContractor, bis Bisector, seed int64) *Optimizer {
	return &Optimizer{
		Ext:     ext,
		CtcIn:   ctcIn,
		CtcOut:  ctcOut,
		Bisect:  bis,
		RelPrec: 1e-8,
		AbsPrec: 1e-8,
		Prec:    1e-8,
		Monitor: NewSearchMonitor(),
		rng:     rand.New(rand.NewSource(seed)),
		loup:    math.Inf(1),
		uplo:    math.Inf(-1),
		uploEps: math.Inf(1),
	}
}

// yIndex is the fresh objective variable's index, always last.
func (o *Optimizer) yIndex() int { return o.Ext.NbVar() - 1 }

// SeedLoup installs an a-priori upper bound (e.g. from a known feasible
// point), letting the search start pruning immediately.
func (o *Optimizer) SeedLoup(value float64, point []float64) {
	o.loup = value
	o.loupPoint = append([]float64(nil), point...)
}

// Optimize runs branch-and-bound to completion, timeout, or context
// cancellation, returning the certified (uplo, loup) bracket and a point
// achieving loup.
func (o *Optimizer) Optimize(ctx context.Context) (uplo, loup float64, loupPoint []float64, err error) {
	defer o.Monitor.Finish()
	start := time.Now()

	heap := NewDoubleHeap(DefaultCriterion)
	root := NewCell(o.Ext.InitialBox.Clone())
	root.Loup = o.loup
	heap.Push(root)

	for !heap.Empty() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.result()
		}
		if o.Timeout > 0 && time.Since(start) > o.Timeout {
			return o.result()
		}

		c := heap.Pop()
		o.Monitor.RecordCell()
		if o.processCell(c, heap) {
			if lb, ok := heap.MinLb(); ok {
				o.recomputeUplo(lb)
			}
		}
	}
	o.recomputeUplo(math.Inf(1))
	return o.result()
}

func (o *Optimizer) result() (float64, float64, []float64, error) {
	return o.uplo, o.loup, o.loupPoint, nil
}

// processCell applies one iteration of the per-cell algorithm in spec
// §4.8. It returns true if the cell was discarded (so the caller should
// refresh uplo from the heap + epsbox floor).
func (o *Optimizer) processCell(c *Cell, heap *DoubleHeap) bool {
	goal := o.Ext.Objective
	pf := goal.Eval(c.Box).Inter(goal.EvalAffine2(c.Box))
	c.Pf = pf
	if pf.IsEmpty() {
		o.Monitor.RecordDiscard()
		return true
	}

	ymax := o.loup - math.Max(o.RelPrec*math.Abs(o.loup), o.AbsPrec)
	yBound := NewInterval(math.Inf(-1), ymax)
	narrowedY := pf.Inter(yBound)
	if narrowedY.IsEmpty() {
		o.Monitor.RecordDiscard()
		return true
	}
	c.Box.Set(o.yIndex(), narrowedY)
	goalConstraint := o.Ext.Constraints[len(o.Ext.Constraints)-1]
	if err := goalConstraint.F.Backward(goalConstraint.Feasible(), c.Box); err != nil {
		o.Monitor.RecordDiscard()
		return true
	}
	c.Pf = c.Box.At(o.yIndex())
	if c.Pf.IsEmpty() {
		o.Monitor.RecordDiscard()
		return true
	}

	active := make([]bool, 1)
	if err := o.CtcOut.ContractActive(c.Box, active); err != nil {
		o.Monitor.RecordDiscard()
		return true
	}
	if active[0] {
		c.Pu = true
	}

	inBox := c.Box.Clone()
	inErr := o.CtcIn.Contract(inBox)
	var feasibleSubBoxes []*IntervalVector
	if inErr != nil {
		c.Pu = true
	} else {
		feasibleSubBoxes = c.Box.Diff(inBox)
	}

	o.improveLoup(c, feasibleSubBoxes)
	if o.loup < ymax {
		heap.ContractByYmax(o.loup - math.Max(o.RelPrec*math.Abs(o.loup), o.AbsPrec))
	}

	if c.Pu {
		o.monotonicityPrune(c)
	}

	if diam, _ := c.Box.MaxDiam(); diam <= o.Prec || !c.Box.IsBisectable() {
		if c.Pf.Lb() < o.uploEps {
			o.uploEps = c.Pf.Lb()
		}
		o.Monitor.RecordDiscard()
		return true
	}

	left, right, err := o.Bisect.Bisect(c)
	if err != nil {
		if c.Pf.Lb() < o.uploEps {
			o.uploEps = c.Pf.Lb()
		}
		o.Monitor.RecordDiscard()
		return true
	}
	left.Pf, right.Pf = c.Pf, c.Pf
	left.Pu, right.Pu = c.Pu, c.Pu
	left.Loup, right.Loup = o.loup, o.loup
	heap.Push(left)
	heap.Push(right)
	return false
}

// improveLoup tries to lower the incumbent loup using a local search from the
// cell when it is proven feasible, or by sampling + re-checking
// feasibility otherwise, and also tries every feasible sub-box CtcIn's
// set-difference produced.
func (o *Optimizer) improveLoup(c *Cell, feasibleSubBoxes []*IntervalVector) {
	if c.Pu {
		o.tryLocalSearch(c.Box)
	} else {
		point := c.Box.Random(o.rng)
		o.tryPoint(point)
	}
	for _, fb := range feasibleSubBoxes {
		o.tryLocalSearch(fb)
	}
}

// tryLocalSearch runs an unconstrained local solver (gonum/optimize,
// Nelder-Mead — derivative-free, tolerant of the non-smooth chi/sign
// primitives the expression DAG supports) from a random interior point
// of box, restricted to the original (non-extended) variables.
func (o *Optimizer) tryLocalSearch(box *IntervalVector) {
	n := o.Ext.NbVar() - 1
	x0 := box.Random(o.rng)[:n]

	baseGoal := o.baseObjective()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return baseGoal.Eval(pointBox(x)).Mid()
		},
	}
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{MajorIterations: 50}, &optimize.NelderMead{})
	if err != nil || result == nil {
		return
	}
	if !boxContainsPoint(box, result.X) {
		return
	}
	o.tryPoint(result.X)
}

// baseObjective strips the extended system's y-variable wrapper, giving
// back the original goal(x) function for local search, which only makes
// sense over the real variables.
func (o *Optimizer) baseObjective() *Function {
	// lastConstraint.F is the DAG for goal(x) - y; its left child is
	// goal(x) itself.
	lastConstraint := o.Ext.Constraints[len(o.Ext.Constraints)-1]
	return &Function{nbVar: o.Ext.NbVar() - 1, components: []*node{lastConstraint.F.components[0].children[0]}}
}

func boxContainsPoint(box *IntervalVector, x []float64) bool {
	return box.Contains(x)
}

// tryPoint checks whether x (a point in the ORIGINAL variable space) is
// feasible by evaluating every real constraint there, and if so updates
// loup/loupPoint when it improves on the incumbent.
func (o *Optimizer) tryPoint(x []float64) {
	n := o.Ext.NbVar() - 1
	if len(x) < n {
		return
	}
	pt := pointBox(x[:n])
	for _, c := range o.Ext.Constraints[:len(o.Ext.Constraints)-1] {
		img := c.F.Eval(pt)
		if !c.Feasible().ContainsInterval(img) {
			return
		}
	}
	value := o.baseObjective().Eval(pt).Mid()
	if value < o.loup {
		o.loup = value
		o.loupPoint = append([]float64(nil), x[:n]...)
		o.Monitor.RecordLoupUpdate()
	}
}

// monotonicityPrune computes the interval gradient of the base objective
// over box and fixes any variable whose partial derivative has a
// constant sign at its corresponding bound — the classic global-
// optimization monotonicity test.
func (o *Optimizer) monotonicityPrune(c *Cell) {
	n := o.Ext.NbVar() - 1
	grad := o.baseObjective().Gradient(c.Box)
	for j := 0; j < n; j++ {
		g := grad.At(j)
		if g.Lb() >= 0 {
			c.Box.Set(j, Degenerate(c.Box.At(j).Lb()))
		} else if g.Ub() <= 0 {
			c.Box.Set(j, Degenerate(c.Box.At(j).Ub()))
		}
	}
}

// recomputeUplo refreshes the certified global lower bound: the minimum
// of the heap's own pf.lb() floor and the ε-box floor accumulated from
// discarded cells.
func (o *Optimizer) recomputeUplo(heapFloor float64) {
	o.uplo = math.Min(heapFloor, o.uploEps)
}
