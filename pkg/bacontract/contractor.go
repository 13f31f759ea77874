package bacontract

// Contractor narrows box in place, possibly down to empty (signaled via
// ErrEmptyBox). Every contractor must be sound: no feasible point is ever
// excluded. A contractor that cannot certify emptiness returns the box
// unchanged rather than guess a tightening (spec §7 rule).
type Contractor interface {
	NbVar() int
	Contract(box *IntervalVector) error
}

// ActiveContractor is the extended form that also reports, via out, which
// handled constraints are proven INACTIVE — already satisfied everywhere
// in the input box.
type ActiveContractor interface {
	Contractor
	ContractActive(box *IntervalVector, out []bool) error
}

// FwdBwd is the atomic building block of HC4: one backward pass through
// a single constraint's expression DAG.
type FwdBwd struct {
	c *NumConstraint
}

// NewFwdBwd wraps a single constraint as a contractor.
func NewFwdBwd(c *NumConstraint) *FwdBwd { return &FwdBwd{c: c} }

func (f *FwdBwd) NbVar() int { return f.c.F.NbVar() }

func (f *FwdBwd) Contract(box *IntervalVector) error {
	return f.c.F.Backward(f.c.Feasible(), box)
}

// ContractActive sets out[0]=true (INACTIVE) when the constraint's forward
// image is already a subset of Feasible() everywhere on box (so the
// constraint contributes nothing further).
func (f *FwdBwd) ContractActive(box *IntervalVector, out []bool) error {
	image := f.c.F.Eval(box)
	inactive := f.c.Feasible().ContainsInterval(image)
	if err := f.Contract(box); err != nil {
		return err
	}
	if len(out) > 0 {
		out[0] = inactive
	}
	return nil
}

// HC4 runs FwdBwd over every constraint in the system to fixpoint ratio
// r: repeat the full sweep while the sum of the box's component diameters
// shrank by more than relative ratio r.
type HC4 struct {
	constraints []*NumConstraint
	nbVar       int
	ratio       float64
}

// NewHC4 builds an HC4 contractor over constraints sharing nbVar
// variables, converging at relative ratio r (e.g. 0.01).
func NewHC4(constraints []*NumConstraint, nbVar int, r float64) *HC4 {
	return &HC4{constraints: constraints, nbVar: nbVar, ratio: r}
}

func (h *HC4) NbVar() int { return h.nbVar }

func (h *HC4) Contract(box *IntervalVector) error {
	for {
		before := totalDiam(box)
		for _, c := range h.constraints {
			if err := (&FwdBwd{c: c}).Contract(box); err != nil {
				return err
			}
		}
		after := totalDiam(box)
		if before == 0 || (before-after)/before <= h.ratio {
			return nil
		}
	}
}

func totalDiam(box *IntervalVector) float64 {
	sum := 0.0
	for i := 0; i < box.Size(); i++ {
		sum += box.At(i).Diam()
	}
	return sum
}

// Compo calls each wrapped contractor in turn. It implements only
// Contract: it is not an ActiveContractor and reports no INACTIVE flag.
type Compo struct {
	parts []Contractor
}

// NewCompo sequences contractors.
func NewCompo(parts ...Contractor) *Compo { return &Compo{parts: parts} }

func (c *Compo) NbVar() int {
	if len(c.parts) == 0 {
		return 0
	}
	return c.parts[0].NbVar()
}

func (c *Compo) Contract(box *IntervalVector) error {
	for _, p := range c.parts {
		if err := p.Contract(box); err != nil {
			return err
		}
	}
	return nil
}

// Union takes the hull of {p.Contract(box copy) : p in parts}: box keeps
// every point that at least one component keeps, and is emptied only
// when every component empties its copy.
type Union struct {
	parts []Contractor
}

// NewUnion builds a union contractor.
func NewUnion(parts ...Contractor) *Union { return &Union{parts: parts} }

func (u *Union) NbVar() int {
	if len(u.parts) == 0 {
		return 0
	}
	return u.parts[0].NbVar()
}

func (u *Union) Contract(box *IntervalVector) error {
	var hull *IntervalVector
	allEmpty := true
	for _, p := range u.parts {
		copyBox := box.Clone()
		err := p.Contract(copyBox)
		if err != nil {
			continue
		}
		allEmpty = false
		if hull == nil {
			hull = copyBox
		} else {
			hull = hull.Hull(copyBox)
		}
	}
	if allEmpty {
		return ErrEmptyBox
	}
	for i := 0; i < box.Size(); i++ {
		box.Set(i, hull.At(i))
	}
	return nil
}

// FixPoint repeats c.Contract(box) while the box shrinks by more than
// relative ratio r.
type FixPoint struct {
	c     Contractor
	ratio float64
}

// NewFixPoint wraps c to run to fixpoint.
func NewFixPoint(c Contractor, ratio float64) *FixPoint { return &FixPoint{c: c, ratio: ratio} }

func (f *FixPoint) NbVar() int { return f.c.NbVar() }

func (f *FixPoint) Contract(box *IntervalVector) error {
	for {
		before := totalDiam(box)
		if err := f.c.Contract(box); err != nil {
			return err
		}
		after := totalDiam(box)
		if before == 0 || (before-after)/before <= f.ratio {
			return nil
		}
	}
}

// Precision empties any box whose max diameter is <= eps; used as a
// termination contractor.
type Precision struct {
	nbVar int
	eps   float64
}

// NewPrecision builds a Precision contractor.
func NewPrecision(nbVar int, eps float64) *Precision { return &Precision{nbVar: nbVar, eps: eps} }

func (p *Precision) NbVar() int { return p.nbVar }

func (p *Precision) Contract(box *IntervalVector) error {
	diam, _ := box.MaxDiam()
	if diam <= p.eps {
		box.SetEmpty()
		return ErrEmptyBox
	}
	return nil
}

// Acid performs adaptive shaving in a simplified form: for every variable
// it runs HC4 on a copy of the box and records how much that variable
// shrank, ranks the variables by that gain, and then runs one FwdBwd pass
// over every constraint on the real box for each of the top nbCandVars
// variables. The per-variable pass does not restrict propagation to that
// variable's slice.
type Acid struct {
	inner      *HC4
	nbVar      int
	nbCandVars int
}

// NewAcid wraps inner's constraint set with adaptive shaving, running at
// most nbCandVars shaving passes per call.
func NewAcid(inner *HC4, nbCandVars int) *Acid {
	return &Acid{inner: inner, nbVar: inner.nbVar, nbCandVars: nbCandVars}
}

func (a *Acid) NbVar() int { return a.nbVar }

func (a *Acid) Contract(box *IntervalVector) error {
	gains := make([]float64, box.Size())
	for i := 0; i < box.Size(); i++ {
		gains[i] = a.probe(box, i)
	}
	ranked := rankDescending(gains)
	n := a.nbCandVars
	if n > len(ranked) {
		n = len(ranked)
	}
	for _, i := range ranked[:n] {
		if err := a.shave(box, i); err != nil {
			return err
		}
	}
	return nil
}

// probe measures how much variable i would shrink from an HC4 pass
// without mutating the caller's box.
func (a *Acid) probe(box *IntervalVector, i int) float64 {
	trial := box.Clone()
	before := trial.At(i).Diam()
	if err := a.inner.Contract(trial); err != nil {
		return before // emptied entirely: maximal gain
	}
	return before - trial.At(i).Diam()
}

func (a *Acid) shave(box *IntervalVector, i int) error {
	for _, c := range a.inner.constraints {
		if err := (&FwdBwd{c: c}).Contract(box); err != nil {
			return err
		}
	}
	return nil
}

func rankDescending(gains []float64) []int {
	idx := make([]int, len(gains))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && gains[idx[j-1]] < gains[idx[j]] {
			idx[j-1], idx[j] = idx[j], idx[j-1]
			j--
		}
	}
	return idx
}

// ForAll is the universal-quantifier contractor: it recursively bisects
// the masked parameter subspace down to eps, propagates c through each
// bisected-parameter box, and intersects the resulting variable boxes —
// a variable value must hold for every parameter value to survive.
type ForAll struct {
	c         Contractor
	mask      []bool // true marks a parameter dimension
	paramInit *IntervalVector
	eps       float64
}

// NewForAll builds a ForAll quantifier contractor.
func NewForAll(c Contractor, mask []bool, paramInit *IntervalVector, eps float64) *ForAll {
	return &ForAll{c: c, mask: mask, paramInit: paramInit, eps: eps}
}

func (q *ForAll) NbVar() int { return q.c.NbVar() }

func (q *ForAll) Contract(varBox *IntervalVector) error {
	var result *IntervalVector
	err := q.recurse(varBox, q.paramInit, &result)
	if err != nil {
		return err
	}
	if result == nil {
		return ErrEmptyBox
	}
	for i := 0; i < varBox.Size(); i++ {
		varBox.Set(i, result.At(i))
	}
	return nil
}

func (q *ForAll) recurse(varBox, paramBox *IntervalVector, acc **IntervalVector) error {
	diam, dim := paramBox.MaxDiam()
	if diam <= q.eps {
		trial := varBox.Clone()
		full := mergeMasked(trial, paramBox, q.mask)
		if err := q.c.Contract(full); err != nil {
			return nil // this parameter point contributes nothing (already infeasible)
		}
		narrowed := extractUnmasked(full, q.mask, varBox.Size())
		if *acc == nil {
			*acc = narrowed
		} else {
			inter := (*acc).Inter(narrowed)
			if inter.IsEmpty() {
				return ErrEmptyBox
			}
			*acc = inter
		}
		return nil
	}
	left, right, err := paramBox.Bisect(dim, 0.5)
	if err != nil {
		return err
	}
	if err := q.recurse(varBox, left, acc); err != nil {
		return err
	}
	return q.recurse(varBox, right, acc)
}

// Exist is the existential-quantifier contractor: it bisects the
// parameter box down to eps like ForAll, contracts at the midpoint of
// every parameter box it visits, and takes the hull of the successful
// results. A midpoint success does not stop the bisection of that box.
type Exist struct {
	c         Contractor
	mask      []bool
	paramInit *IntervalVector
	eps       float64
}

// NewExist builds an Exist quantifier contractor.
func NewExist(c Contractor, mask []bool, paramInit *IntervalVector, eps float64) *Exist {
	return &Exist{c: c, mask: mask, paramInit: paramInit, eps: eps}
}

func (q *Exist) NbVar() int { return q.c.NbVar() }

func (q *Exist) Contract(varBox *IntervalVector) error {
	type frame struct{ varB, paramB *IntervalVector }
	stack := []frame{{varBox.Clone(), q.paramInit}}
	var hull *IntervalVector

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		mid := midpointBox(top.paramB)
		full := mergeMasked(top.varB.Clone(), mid, q.mask)
		if err := q.c.Contract(full); err == nil {
			narrowed := extractUnmasked(full, q.mask, varBox.Size())
			hull = hullOrSelf(hull, narrowed)
		}

		diam, dim := top.paramB.MaxDiam()
		if diam <= q.eps {
			continue
		}
		left, right, err := top.paramB.Bisect(dim, 0.5)
		if err != nil {
			continue
		}
		stack = append(stack, frame{top.varB, left}, frame{top.varB, right})
	}

	if hull == nil {
		return ErrEmptyBox
	}
	for i := 0; i < varBox.Size(); i++ {
		varBox.Set(i, hull.At(i))
	}
	return nil
}

func hullOrSelf(h, n *IntervalVector) *IntervalVector {
	if h == nil {
		return n
	}
	return h.Hull(n)
}

func midpointBox(box *IntervalVector) *IntervalVector {
	mid := box.Mid()
	comps := make([]Interval, len(mid))
	for i, v := range mid {
		comps[i] = Degenerate(v)
	}
	return NewIntervalVector(comps)
}

// mergeMasked builds the combined box with one entry per mask dimension:
// masked dimensions take paramBox's components in order, the others take
// varBox's components in order.
func mergeMasked(varBox, paramBox *IntervalVector, mask []bool) *IntervalVector {
	full := make([]Interval, len(mask))
	vi, pi := 0, 0
	for i, isParam := range mask {
		if isParam {
			full[i] = paramBox.At(pi)
			pi++
		} else {
			full[i] = varBox.At(vi)
			vi++
		}
	}
	return NewIntervalVector(full)
}

func extractUnmasked(full *IntervalVector, mask []bool, nbVar int) *IntervalVector {
	out := make([]Interval, 0, nbVar)
	for i, isParam := range mask {
		if !isParam {
			out = append(out, full.At(i))
		}
	}
	return NewIntervalVector(out)
}
