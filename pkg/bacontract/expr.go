package bacontract

import (
	"fmt"
	"math"
)

// nodeKind tags the variant of an expression DAG node.
type nodeKind int

const (
	nodeConst nodeKind = iota
	nodeVar
	nodeNeg
	nodeAdd
	nodeSub
	nodeMul
	nodeDiv
	nodePow // integer power, exponent held in aux
	nodeSqr
	nodeSqrt
	nodeSign
	nodeSin
	nodeCos
	nodeTan
	nodeChi // chi(cond, a, b): cond's sign selects a (cond<=0) or b
)

// node is one immutable expression DAG node. The DAG is shared read-only
// across every constraint and the objective that reference it, per
// spec.md §9's "Expression DAG sharing" design note; evaluation never
// mutates a node, only per-call caches and the box being narrowed.
type node struct {
	kind     nodeKind
	children []*node
	value    float64 // for nodeConst
	varIndex int     // for nodeVar
	aux      int     // for nodePow: integer exponent
}

// Const builds a constant node.
func Const(v float64) *node { return &node{kind: nodeConst, value: v} }

// VarRef builds a reference to variable i (0-indexed) in the owning
// Function's variable list.
func VarRef(i int) *node { return &node{kind: nodeVar, varIndex: i} }

func bin(kind nodeKind, a, b *node) *node { return &node{kind: kind, children: []*node{a, b}} }
func un(kind nodeKind, a *node) *node     { return &node{kind: kind, children: []*node{a}} }

// Add, Sub, Mul, Div, Neg, Sqr, Sqrt, Sign, Sin, Cos, Tan, Pow, Chi are the
// expression-building combinators the system-file lowering pass (§2.3 of
// SPEC_FULL.md) and hand-built example systems both use to assemble a DAG.
func Add(a, b *node) *node  { return bin(nodeAdd, a, b) }
func Sub(a, b *node) *node  { return bin(nodeSub, a, b) }
func Mul(a, b *node) *node  { return bin(nodeMul, a, b) }
func Div(a, b *node) *node  { return bin(nodeDiv, a, b) }
func Neg(a *node) *node     { return un(nodeNeg, a) }
func Sqr(a *node) *node     { return un(nodeSqr, a) }
func Sqrt(a *node) *node    { return un(nodeSqrt, a) }
func Sign(a *node) *node    { return un(nodeSign, a) }
func Sin(a *node) *node     { return un(nodeSin, a) }
func Cos(a *node) *node     { return un(nodeCos, a) }
func Tan(a *node) *node     { return un(nodeTan, a) }
func Pow(a *node, k int) *node {
	return &node{kind: nodePow, children: []*node{a}, aux: k}
}

// Chi is the conditional primitive from spec.md §6: chi(cond, a, b)
// evaluates to a when cond <= 0, else b (a smooth-enough selector used by
// piecewise system definitions).
func Chi(cond, a, b *node) *node { return &node{kind: nodeChi, children: []*node{cond, a, b}} }

// evalInterval evaluates the DAG forward at a box, returning a sound
// interval enclosure (component B's `eval`).
func evalInterval(n *node, box *IntervalVector) Interval {
	switch n.kind {
	case nodeConst:
		return Degenerate(n.value)
	case nodeVar:
		return box.At(n.varIndex)
	case nodeNeg:
		return evalInterval(n.children[0], box).Neg()
	case nodeAdd:
		return evalInterval(n.children[0], box).Add(evalInterval(n.children[1], box))
	case nodeSub:
		return evalInterval(n.children[0], box).Sub(evalInterval(n.children[1], box))
	case nodeMul:
		return evalInterval(n.children[0], box).Mul(evalInterval(n.children[1], box))
	case nodeDiv:
		return evalInterval(n.children[0], box).Div(evalInterval(n.children[1], box))
	case nodePow:
		return intPow(evalInterval(n.children[0], box), n.aux)
	case nodeSqr:
		return evalInterval(n.children[0], box).Sqr()
	case nodeSqrt:
		return evalInterval(n.children[0], box).Sqrt()
	case nodeSign:
		return evalInterval(n.children[0], box).Sign()
	case nodeSin, nodeCos, nodeTan:
		return evalTrig(n.kind, evalInterval(n.children[0], box))
	case nodeChi:
		cond := evalInterval(n.children[0], box)
		a := evalInterval(n.children[1], box)
		b := evalInterval(n.children[2], box)
		switch {
		case cond.Ub() <= 0:
			return a
		case cond.Lb() > 0:
			return b
		default:
			return a.Hull(b)
		}
	default:
		return EmptyInterval()
	}
}

func intPow(x Interval, k int) Interval {
	if k == 0 {
		return Degenerate(1)
	}
	if k < 0 {
		return Degenerate(1).Div(intPow(x, -k))
	}
	out := Degenerate(1)
	for i := 0; i < k; i++ {
		out = out.Mul(x)
	}
	return out
}

// evalTrig gives a correct but coarse enclosure for sin/cos/tan: full
// range [-1,1] (or AllReals for tan across an asymptote) whenever the
// input interval is wide enough to plausibly cross an extremum, and the
// exact sampled range on the monotone branches otherwise. This mirrors
// the level of rigor spec.md expects from the external evaluator (a
// correct outer enclosure, not necessarily tight) while keeping the
// implementation self-contained.
func evalTrig(kind nodeKind, x Interval) Interval {
	if x.IsEmpty() {
		return EmptyInterval()
	}
	if x.Diam() >= 2*math.Pi {
		if kind == nodeTan {
			return AllReals
		}
		return NewInterval(-1, 1)
	}
	samples := []float64{x.lo, x.hi, x.Mid()}
	// Include critical points that may fall inside [lo, hi].
	for k := math.Floor(x.lo / (math.Pi / 2)); k*(math.Pi/2) <= x.hi; k++ {
		if kind == nodeTan && math.Mod(k, 2) != 0 && k*(math.Pi/2) >= x.lo {
			// An odd multiple of pi/2 is a tan asymptote.
			return AllReals
		}
		samples = append(samples, k*(math.Pi/2))
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		if s < x.lo || s > x.hi {
			continue
		}
		var v float64
		switch kind {
		case nodeSin:
			v = math.Sin(s)
		case nodeCos:
			v = math.Cos(s)
		case nodeTan:
			v = math.Tan(s)
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsInf(lo, 1) {
		return AllReals
	}
	return NewInterval(previousFloat(lo), nextFloat(hi))
}

func nbVars(n *node, seen map[int]bool) {
	if n == nil {
		return
	}
	if n.kind == nodeVar {
		seen[n.varIndex] = true
	}
	for _, c := range n.children {
		nbVars(c, seen)
	}
}

// partial returns the symbolic partial derivative of n with respect to
// variable i, built as a fresh expression DAG so the gradient can itself
// be interval-evaluated (used by Jacobian and by monotonicity pruning).
func partial(n *node, i int) *node {
	switch n.kind {
	case nodeConst:
		return Const(0)
	case nodeVar:
		if n.varIndex == i {
			return Const(1)
		}
		return Const(0)
	case nodeNeg:
		return Neg(partial(n.children[0], i))
	case nodeAdd:
		return Add(partial(n.children[0], i), partial(n.children[1], i))
	case nodeSub:
		return Sub(partial(n.children[0], i), partial(n.children[1], i))
	case nodeMul:
		a, b := n.children[0], n.children[1]
		return Add(Mul(partial(a, i), b), Mul(a, partial(b, i)))
	case nodeDiv:
		a, b := n.children[0], n.children[1]
		// (a'b - ab') / b^2
		num := Sub(Mul(partial(a, i), b), Mul(a, partial(b, i)))
		return Div(num, Mul(b, b))
	case nodePow:
		a := n.children[0]
		return Mul(Mul(Const(float64(n.aux)), Pow(a, n.aux-1)), partial(a, i))
	case nodeSqr:
		a := n.children[0]
		return Mul(Mul(Const(2), a), partial(a, i))
	case nodeSqrt:
		a := n.children[0]
		return Div(partial(a, i), Mul(Const(2), Sqrt(a)))
	case nodeSign:
		return Const(0)
	case nodeSin:
		return Mul(Cos(n.children[0]), partial(n.children[0], i))
	case nodeCos:
		return Neg(Mul(Sin(n.children[0]), partial(n.children[0], i)))
	case nodeTan:
		a := n.children[0]
		return Mul(Add(Const(1), Mul(Tan(a), Tan(a))), partial(a, i))
	case nodeChi:
		// Non-smooth; the derivative is chosen by the same condition:
		// one branch's derivative when its sign is known, the hull of
		// both branch derivatives otherwise.
		return Chi(n.children[0], partial(n.children[1], i), partial(n.children[2], i))
	default:
		return Const(0)
	}
}

// backwardRevise narrows box in place so that n(box) is consistent with
// image, via HC4Revise: a forward evaluation pass caching each
// sub-expression's enclosure, followed by a backward pass that intersects
// each operator's inverse image against the cached forward value. Returns
// ErrEmptyBox if the box becomes infeasible.
func backwardRevise(n *node, image Interval, box *IntervalVector) error {
	cache := map[*node]Interval{}
	cacheForward(n, box, cache)
	root := cache[n]
	narrowed := root.Inter(image)
	if narrowed.IsEmpty() {
		box.SetEmpty()
		return ErrEmptyBox
	}
	cache[n] = narrowed
	return propagateBackward(n, box, cache)
}

func cacheForward(n *node, box *IntervalVector, cache map[*node]Interval) Interval {
	if v, ok := cache[n]; ok {
		return v
	}
	for _, c := range n.children {
		cacheForward(c, box, cache)
	}
	v := evalInterval(n, box)
	cache[n] = v
	return v
}

// propagateBackward projects the (already-narrowed) image for n back onto
// its children's cached forward values, then recurses. Unary/binary
// operator inverses are the textbook interval-arithmetic ones; each
// projection intersects rather than replaces, so the result can only
// shrink the child's range.
func propagateBackward(n *node, box *IntervalVector, cache map[*node]Interval) error {
	img := cache[n]
	switch n.kind {
	case nodeConst:
		return nil
	case nodeVar:
		narrowed := box.At(n.varIndex).Inter(img)
		if narrowed.IsEmpty() {
			box.SetEmpty()
			return ErrEmptyBox
		}
		box.Set(n.varIndex, narrowed)
		return nil
	case nodeNeg:
		return narrowChild(n, 0, img.Neg(), box, cache)
	case nodeAdd:
		a, b := cache[n.children[0]], cache[n.children[1]]
		if err := narrowChild(n, 0, img.Sub(b), box, cache); err != nil {
			return err
		}
		return narrowChild(n, 1, img.Sub(a), box, cache)
	case nodeSub:
		a, b := cache[n.children[0]], cache[n.children[1]]
		if err := narrowChild(n, 0, img.Add(b), box, cache); err != nil {
			return err
		}
		return narrowChild(n, 1, a.Sub(img), box, cache)
	case nodeMul:
		a, b := cache[n.children[0]], cache[n.children[1]]
		if err := narrowChild(n, 0, safeDiv(img, b), box, cache); err != nil {
			return err
		}
		return narrowChild(n, 1, safeDiv(img, a), box, cache)
	case nodeDiv:
		a, b := cache[n.children[0]], cache[n.children[1]]
		if err := narrowChild(n, 0, img.Mul(b), box, cache); err != nil {
			return err
		}
		return narrowChild(n, 1, safeDiv(a, img), box, cache)
	case nodeSqr:
		a := cache[n.children[0]]
		pos := img.Inter(NewInterval(0, math.Inf(1)))
		root := pos.Sqrt()
		candidate := root.Hull(root.Neg()).Inter(a)
		return narrowChild(n, 0, candidate, box, cache)
	case nodeSqrt:
		return narrowChild(n, 0, img.Sqr(), box, cache)
	case nodePow, nodeSign, nodeSin, nodeCos, nodeTan:
		// Sound but inexact: no inverse projection, children keep
		// their forward-evaluated range.
		for i, c := range n.children {
			if err := narrowChild(n, i, cache[c], box, cache); err != nil {
				return err
			}
		}
		return nil
	case nodeChi:
		// The selector's own range narrows nothing further here;
		// both branches were already evaluated at the current box.
		for i := 1; i <= 2; i++ {
			if err := narrowChild(n, i, cache[n.children[i]], box, cache); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func narrowChild(n *node, i int, image Interval, box *IntervalVector, cache map[*node]Interval) error {
	child := n.children[i]
	narrowed := cache[child].Inter(image)
	if narrowed.IsEmpty() {
		box.SetEmpty()
		return ErrEmptyBox
	}
	cache[child] = narrowed
	return propagateBackward(child, box, cache)
}

// safeDiv divides intervals for backward projection without raising an
// error on a zero divisor: dividing by an interval containing only 0
// yields no information (AllReals); the forward Div instead returns the
// empty interval for that divisor.
func safeDiv(a, b Interval) Interval {
	if b.lo == 0 && b.hi == 0 {
		return AllReals
	}
	return a.Div(b)
}

// String renders a node for diagnostics (not used on the hot path).
func (n *node) String() string {
	switch n.kind {
	case nodeConst:
		return fmt.Sprintf("%g", n.value)
	case nodeVar:
		return fmt.Sprintf("x%d", n.varIndex)
	default:
		return fmt.Sprintf("op%d(...)", n.kind)
	}
}
