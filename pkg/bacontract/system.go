package bacontract

import (
	"fmt"
	"math"

	"github.com/gitrdm/bacontract/pkg/bacontract/grammar"
)

// CompareOp is the relational operator of a NumConstraint.
type CompareOp int

const (
	OpLt CompareOp = iota
	OpLe
	OpEq
	OpGe
	OpGt
)

// String renders the operator.
func (op CompareOp) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "="
	case OpGe:
		return ">="
	case OpGt:
		return ">"
	default:
		return "?"
	}
}

// NumConstraint is (f, op, rhs=0): satisfied at x iff f(x) op 0 in real
// arithmetic, per spec.md §3.
type NumConstraint struct {
	F  *Function
	Op CompareOp
}

// NewNumConstraint builds a constraint from an already-built function.
func NewNumConstraint(f *Function, op CompareOp) *NumConstraint {
	return &NumConstraint{F: f, Op: op}
}

// Forbidden returns the half-line (possibly guarded by next/previous
// float for strict operators) that a point must land in to be *forbidden*
// by this constraint: the negation of "f(x) op 0", used by Sweep
// (spec.md §4.3); the contractors use Feasible instead.
func (c *NumConstraint) Forbidden() Interval {
	switch c.Op {
	case OpLt: // feasible: f<0 ; forbidden: f>=0
		return NewInterval(0, infPos)
	case OpLe: // feasible: f<=0 ; forbidden: f>0
		return NewInterval(nextFloat(0), infPos)
	case OpEq: // feasible: f=0 ; forbidden: f!=0, i.e. two rays
		return AllReals // hull of the two rays, so it also contains 0
	case OpGe: // feasible: f>=0 ; forbidden: f<0
		return NewInterval(infNeg, previousFloat(0))
	case OpGt: // feasible: f>0 ; forbidden f<=0
		return NewInterval(infNeg, 0)
	default:
		return EmptyInterval()
	}
}

// Feasible returns the image interval a point's f(x) must land in to
// satisfy this constraint: used directly as the `image` argument to
// Function.Backward (HC4Revise).
func (c *NumConstraint) Feasible() Interval {
	switch c.Op {
	case OpLt:
		return NewInterval(infNeg, previousFloat(0))
	case OpLe:
		return NewInterval(infNeg, 0)
	case OpEq:
		return Degenerate(0)
	case OpGe:
		return NewInterval(0, infPos)
	case OpGt:
		return NewInterval(nextFloat(0), infPos)
	default:
		return EmptyInterval()
	}
}

var infPos = math.Inf(1)
var infNeg = math.Inf(-1)

// System is a tuple (variables, initial_box, constraints, optional
// objective), per spec.md §3.
type System struct {
	VarNames    []string
	InitialBox  *IntervalVector
	Constraints []*NumConstraint
	Objective   *Function // nil if this is a pure feasibility system
}

// NbVar returns the number of variables (excluding the extended-system's
// y, if any).
func (s *System) NbVar() int { return len(s.VarNames) }

// Extended returns the extended system used by the optimizer: a fresh
// variable y appended to the box, and the constraint goal(x) - y = 0
// appended to the constraint list, so minimizing y over the feasible
// (x,y) region is equivalent to minimizing the original objective. Panics
// if s.Objective is nil — callers must check first.
func (s *System) Extended() *System {
	if s.Objective == nil {
		panic("bacontract: System.Extended called on a system with no objective")
	}
	n := s.NbVar()
	yIndex := n
	goalMinusY := Sub(s.Objective.components[0], VarRef(yIndex))
	extConstraint := NewNumConstraint(NewFunction(n+1, goalMinusY), OpEq)

	box := s.InitialBox.Clone()
	extBox := NewIntervalVector(append(append([]Interval{}, boxSlice(box)...), AllReals))

	return &System{
		VarNames:    append(append([]string{}, s.VarNames...), "y"),
		InitialBox:  extBox,
		Constraints: append(append([]*NumConstraint{}, s.Constraints...), extConstraint),
		Objective:   NewFunction(n+1, VarRef(yIndex)),
	}
}

func boxSlice(b *IntervalVector) []Interval {
	out := make([]Interval, b.Size())
	for i := 0; i < b.Size(); i++ {
		out[i] = b.At(i)
	}
	return out
}

// LoadSystemFile parses a system file (spec.md §6's grammar) and lowers
// it to a System. Any parse failure is surfaced to the caller unchanged
// (wrapped in ErrSyntaxError) per spec.md §7 rule 4.
func LoadSystemFile(path string) (*System, error) {
	prog, err := grammar.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntaxError, err)
	}
	return lower(prog)
}

// LoadSystemString parses in-memory system-file source.
func LoadSystemString(name, source string) (*System, error) {
	prog, err := grammar.ParseString(name, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntaxError, err)
	}
	return lower(prog)
}

// lower walks the parsed grammar.Program and builds a System, resolving
// identifiers to variable indices.
func lower(prog *grammar.Program) (*System, error) {
	names := make([]string, len(prog.Vars))
	index := make(map[string]int, len(prog.Vars))
	for i, v := range prog.Vars {
		names[i] = v.Name
		index[v.Name] = i
	}
	n := len(names)

	comps := make([]Interval, n)
	for i, v := range prog.Vars {
		lo, err := lowerConstExpr(v.Lo, index)
		if err != nil {
			return nil, err
		}
		hi, err := lowerConstExpr(v.Hi, index)
		if err != nil {
			return nil, err
		}
		comps[i] = NewInterval(lo, hi)
	}
	box := NewIntervalVector(comps)

	var objective *Function
	if prog.Obj != nil {
		goalNode, err := lowerExpr(prog.Obj.Goal, index)
		if err != nil {
			return nil, err
		}
		objective = NewFunction(n, goalNode)
	}

	constraints := make([]*NumConstraint, 0, len(prog.Constrs))
	for _, c := range prog.Constrs {
		left, err := lowerExpr(c.Left, index)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(c.Right, index)
		if err != nil {
			return nil, err
		}
		op, err := lowerOp(c.Op)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, NewNumConstraint(NewFunction(n, Sub(left, right)), op))
	}

	return &System{VarNames: names, InitialBox: box, Constraints: constraints, Objective: objective}, nil
}

func lowerOp(s string) (CompareOp, error) {
	switch s {
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case "=", "==":
		return OpEq, nil
	case ">=":
		return OpGe, nil
	case ">":
		return OpGt, nil
	default:
		return 0, fmt.Errorf("%w: unknown relational operator %q", ErrSyntaxError, s)
	}
}

// lowerConstExpr lowers an expression that must not reference any
// variable (a box bound) and evaluates it to a float64 via plain interval
// arithmetic on an empty box.
func lowerConstExpr(e *grammar.Expr, index map[string]int) (float64, error) {
	n, err := lowerExpr(e, index)
	if err != nil {
		return 0, err
	}
	seen := map[int]bool{}
	nbVars(n, seen)
	if len(seen) > 0 {
		return 0, fmt.Errorf("%w: variable bound expression must be constant", ErrSyntaxError)
	}
	return evalInterval(n, NewIntervalVector(nil)).Mid(), nil
}

func lowerExpr(e *grammar.Expr, index map[string]int) (*node, error) {
	left, err := lowerTerm(e.Left, index)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Right {
		rhs, err := lowerTerm(r.Right, index)
		if err != nil {
			return nil, err
		}
		if r.Op == "+" {
			left = Add(left, rhs)
		} else {
			left = Sub(left, rhs)
		}
	}
	return left, nil
}

func lowerTerm(t *grammar.Term, index map[string]int) (*node, error) {
	left, err := lowerFactor(t.Left, index)
	if err != nil {
		return nil, err
	}
	for _, r := range t.Right {
		rhs, err := lowerFactor(r.Right, index)
		if err != nil {
			return nil, err
		}
		if r.Op == "*" {
			left = Mul(left, rhs)
		} else {
			left = Div(left, rhs)
		}
	}
	return left, nil
}

func lowerFactor(f *grammar.Factor, index map[string]int) (*node, error) {
	left, err := lowerUnary(f.Left, index)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Right {
		rhs, err := lowerUnary(r.Right, index)
		if err != nil {
			return nil, err
		}
		k, ok := constIntExponent(rhs)
		if !ok {
			return nil, fmt.Errorf("%w: only integer-literal exponents are supported", ErrSyntaxError)
		}
		left = Pow(left, k)
	}
	return left, nil
}

func constIntExponent(n *node) (int, bool) {
	if n.kind != nodeConst {
		return 0, false
	}
	k := int(n.value)
	if float64(k) != n.value {
		return 0, false
	}
	return k, true
}

func lowerUnary(u *grammar.Unary, index map[string]int) (*node, error) {
	p, err := lowerPrimary(u.Primary, index)
	if err != nil {
		return nil, err
	}
	if u.Negate {
		return Neg(p), nil
	}
	return p, nil
}

func lowerPrimary(p *grammar.Primary, index map[string]int) (*node, error) {
	switch {
	case p.Number != nil:
		return Const(*p.Number), nil
	case p.Call != nil:
		return lowerCall(p.Call, index)
	case p.Ident != nil:
		i, ok := index[*p.Ident]
		if !ok {
			return nil, fmt.Errorf("%w: unknown identifier %q", ErrSyntaxError, *p.Ident)
		}
		return VarRef(i), nil
	case p.SubExpr != nil:
		return lowerExpr(p.SubExpr, index)
	default:
		return nil, fmt.Errorf("%w: empty expression", ErrSyntaxError)
	}
}

func lowerCall(c *grammar.Call, index map[string]int) (*node, error) {
	args := make([]*node, len(c.Args))
	for i, a := range c.Args {
		n, err := lowerExpr(a, index)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	switch c.Name {
	case "sqrt":
		return callArity(args, 1, func(a []*node) *node { return Sqrt(a[0]) })
	case "sqr":
		return callArity(args, 1, func(a []*node) *node { return Sqr(a[0]) })
	case "sign":
		return callArity(args, 1, func(a []*node) *node { return Sign(a[0]) })
	case "sin":
		return callArity(args, 1, func(a []*node) *node { return Sin(a[0]) })
	case "cos":
		return callArity(args, 1, func(a []*node) *node { return Cos(a[0]) })
	case "tan":
		return callArity(args, 1, func(a []*node) *node { return Tan(a[0]) })
	case "chi":
		return callArity(args, 3, func(a []*node) *node { return Chi(a[0], a[1], a[2]) })
	case "Return":
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: Return() needs at least one argument", ErrSyntaxError)
		}
		// Return() lowers to its first component; the remaining
		// arguments are dropped, since lowering builds scalar nodes only.
		return args[0], nil
	default:
		return nil, fmt.Errorf("%w: unknown function %q", ErrSyntaxError, c.Name)
	}
}

func callArity(args []*node, n int, build func([]*node) *node) (*node, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d argument(s), got %d", ErrSyntaxError, n, len(args))
	}
	return build(args), nil
}
