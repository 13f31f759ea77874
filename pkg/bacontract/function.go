package bacontract

// Evaluator is the contract the core consumes from the (out-of-scope, per
// spec.md §1/§6) expression evaluator: forward evaluation, backward
// projection, gradient/Jacobian, and an affine-form evaluation that the
// core treats as interchangeable with any other affine parameterization.
type Evaluator interface {
	NbVar() int
	Eval(box *IntervalVector) Interval
	EvalVector(box *IntervalVector) *IntervalVector
	EvalAffine2(box *IntervalVector) Interval
	Gradient(box *IntervalVector) *IntervalVector
	Jacobian(box *IntervalVector) *IntervalMatrix
	Backward(image Interval, box *IntervalVector) error
}

// Function owns one or more expression-DAG components over a shared set of
// n variables (component B). It is the concrete Evaluator the rest of the
// engine is built and tested against.
type Function struct {
	nbVar      int
	components []*node // one per image dimension; len==1 for scalar functions
}

// NewFunction builds a scalar function from a single expression.
func NewFunction(nbVar int, expr *node) *Function {
	return &Function{nbVar: nbVar, components: []*node{expr}}
}

// NewVectorFunction builds a vector-valued function (the `Return(e1,...)`
// system-file form) from several expressions sharing the same variables.
func NewVectorFunction(nbVar int, exprs []*node) *Function {
	return &Function{nbVar: nbVar, components: append([]*node(nil), exprs...)}
}

// NbVar returns the number of input variables.
func (f *Function) NbVar() int { return f.nbVar }

// ImageDim returns the number of output components.
func (f *Function) ImageDim() int { return len(f.components) }

// Eval evaluates the first (or only) component.
func (f *Function) Eval(box *IntervalVector) Interval {
	return evalInterval(f.components[0], box)
}

// EvalVector evaluates every component, returning an IntervalVector of
// image_dim() entries.
func (f *Function) EvalVector(box *IntervalVector) *IntervalVector {
	out := make([]Interval, len(f.components))
	for i, c := range f.components {
		out[i] = evalInterval(c, box)
	}
	return NewIntervalVector(out)
}

// EvalAffine2 evaluates the first component through the affine-form
// arithmetic of affine.go, then collapses to an interval. Kept separate
// from Eval (plain interval arithmetic) so callers — e.g. the optimizer's
// `pf` computation — can intersect both enclosures, since each is tight on
// different input shapes.
func (f *Function) EvalAffine2(box *IntervalVector) Interval {
	return evalAffine(f.components[0], box)
}

func evalAffine(n *node, box *IntervalVector) Interval {
	return evalAffineForm(n, box).ToInterval()
}

func evalAffineForm(n *node, box *IntervalVector) AffineForm {
	switch n.kind {
	case nodeConst:
		return Constant(n.value)
	case nodeVar:
		return NewAffineSymbol(n.varIndex, box.At(n.varIndex))
	case nodeNeg:
		return evalAffineForm(n.children[0], box).Neg()
	case nodeAdd:
		return evalAffineForm(n.children[0], box).Add(evalAffineForm(n.children[1], box))
	case nodeSub:
		return evalAffineForm(n.children[0], box).Sub(evalAffineForm(n.children[1], box))
	case nodeMul:
		return evalAffineForm(n.children[0], box).Mul(evalAffineForm(n.children[1], box))
	default:
		// Operations without a cheap affine rule (div, sqrt, trig,
		// chi, integer pow) fall back to the plain interval
		// enclosure lifted to a degenerate affine form: still sound,
		// just no narrower than Eval for that sub-expression.
		return Constant(0).Add(AffineForm{center: evalInterval(n, box).Mid(), err: 0.5 * evalInterval(n, box).Diam()})
	}
}

// Gradient returns the interval enclosure of ∇f(box) for the (scalar)
// first component.
func (f *Function) Gradient(box *IntervalVector) *IntervalVector {
	out := make([]Interval, f.nbVar)
	for i := 0; i < f.nbVar; i++ {
		out[i] = evalInterval(partial(f.components[0], i), box)
	}
	return NewIntervalVector(out)
}

// Jacobian returns the interval enclosure of the Jacobian matrix across
// every component.
func (f *Function) Jacobian(box *IntervalVector) *IntervalMatrix {
	m := NewIntervalMatrix(len(f.components), f.nbVar)
	for r, c := range f.components {
		for j := 0; j < f.nbVar; j++ {
			m.Set(r, j, evalInterval(partial(c, j), box))
		}
	}
	return m
}

// Backward performs HC4Revise on the first component: narrows box so
// every point still in it satisfies component(x) ∈ image.
func (f *Function) Backward(image Interval, box *IntervalVector) error {
	return backwardRevise(f.components[0], image, box)
}
