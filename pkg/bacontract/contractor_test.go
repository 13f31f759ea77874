package bacontract

import "testing"

// leConstraint builds x - bound <= 0, i.e. x <= bound.
func leConstraint(varIdx int, bound float64) *NumConstraint {
	f := NewFunction(1, Sub(VarRef(varIdx), Const(bound)))
	return NewNumConstraint(f, OpLe)
}

func TestFwdBwdContractsWithinBounds(t *testing.T) {
	c := leConstraint(0, 3)
	fb := NewFwdBwd(c)
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if err := fb.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Ub() > 3.001 {
		t.Fatalf("expected x narrowed to <= 3, got %v", box.At(0))
	}
}

func TestFwdBwdEmptiesInfeasible(t *testing.T) {
	// x <= 3 with x in [5, 10]: infeasible.
	c := leConstraint(0, 3)
	fb := NewFwdBwd(c)
	box := NewIntervalVector([]Interval{NewInterval(5, 10)})
	if err := fb.Contract(box); err == nil {
		t.Fatal("expected emptiness error")
	}
	if !box.IsEmpty() {
		t.Fatal("expected box to be marked empty")
	}
}

func TestFwdBwdContractActiveReportsInactive(t *testing.T) {
	c := leConstraint(0, 100)
	fb := NewFwdBwd(c)
	box := NewIntervalVector([]Interval{NewInterval(0, 1)})
	out := make([]bool, 1)
	if err := fb.ContractActive(box, out); err != nil {
		t.Fatal(err)
	}
	if !out[0] {
		t.Fatal("expected the constraint to be reported inactive: it holds everywhere on [0,1]")
	}
}

func TestHC4ConvergesOverMultipleConstraints(t *testing.T) {
	// x <= 5, y <= 5, x + y = 5 all together over [0,10]^2
	sumEq := NewNumConstraint(NewFunction(2, Sub(Add(VarRef(0), VarRef(1)), Const(5))), OpEq)
	h := NewHC4([]*NumConstraint{leConstraint(0, 5), leConstraint(1, 5), sumEq}, 2, 0.01)
	box := NewIntervalVector([]Interval{NewInterval(0, 10), NewInterval(0, 10)})
	if err := h.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Ub() > 5.001 || box.At(1).Ub() > 5.001 {
		t.Fatalf("expected both bounds tightened to <= 5, got %v", box)
	}
}

func TestCompoAppliesPartsInOrder(t *testing.T) {
	compo := NewCompo(NewFwdBwd(leConstraint(0, 5)), NewFwdBwd(leConstraint(0, 3)))
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if err := compo.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Ub() > 3.001 {
		t.Fatalf("expected the tighter of the two bounds to win, got %v", box.At(0))
	}
}

func TestUnionTakesHull(t *testing.T) {
	// part A forces x <= 2, part B forces x >= 8; the union should keep
	// the hull of both outcomes rather than intersect them to empty.
	a := NewFwdBwd(leConstraint(0, 2))
	geConstraint := NewNumConstraint(NewFunction(1, Sub(VarRef(0), Const(8))), OpGe)
	b := NewFwdBwd(geConstraint)
	u := NewUnion(a, b)
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if err := u.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Lb() != 0 || box.At(0).Ub() != 10 {
		t.Fatalf("expected the union to preserve the full range since both halves survive, got %v", box.At(0))
	}
}

func TestUnionAllEmptyIsInfeasible(t *testing.T) {
	a := NewFwdBwd(leConstraint(0, -100))
	b := NewFwdBwd(NewNumConstraint(NewFunction(1, Sub(VarRef(0), Const(1000))), OpGe))
	u := NewUnion(a, b)
	box := NewIntervalVector([]Interval{NewInterval(0, 1)})
	if err := u.Contract(box); err == nil {
		t.Fatal("expected an error when every branch empties")
	}
}

func TestFixPointRepeatsUntilStable(t *testing.T) {
	c1 := leConstraint(0, 5)
	fp := NewFixPoint(NewFwdBwd(c1), 0.001)
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if err := fp.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Ub() > 5.001 {
		t.Fatalf("expected tightened bound, got %v", box.At(0))
	}
}

func TestPrecisionEmptiesSmallBoxes(t *testing.T) {
	p := NewPrecision(1, 1e-3)
	box := NewIntervalVector([]Interval{NewInterval(0, 1e-4)})
	if err := p.Contract(box); err == nil {
		t.Fatal("expected a box below eps to be emptied")
	}
}

func TestPrecisionLeavesWideBoxes(t *testing.T) {
	p := NewPrecision(1, 1e-3)
	box := NewIntervalVector([]Interval{NewInterval(0, 1)})
	if err := p.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.IsEmpty() {
		t.Fatal("a box wider than eps should not be emptied")
	}
}

func TestAcidNarrowsLikeHC4(t *testing.T) {
	h := NewHC4([]*NumConstraint{leConstraint(0, 5), leConstraint(1, 7)}, 2, 0.01)
	acid := NewAcid(h, 2)
	box := NewIntervalVector([]Interval{NewInterval(0, 10), NewInterval(0, 10)})
	if err := acid.Contract(box); err != nil {
		t.Fatal(err)
	}
	if box.At(0).Ub() > 5.001 || box.At(1).Ub() > 7.001 {
		t.Fatalf("expected acid to tighten both variables, got %v", box)
	}
}

func TestForAllKeepsSubsetOfOriginal(t *testing.T) {
	// constraint: a*t + b >= 0, over t in [0,1] (the parameter), for
	// a,b in [-1,1] (the variables). ForAll should retain only the subset
	// where the inequality holds for every t, which is never more than the
	// starting box.
	expr := Add(Mul(VarRef(0), VarRef(2)), VarRef(1))
	ge := NewNumConstraint(NewFunction(3, expr), OpGe)
	mask := []bool{false, false, true} // a, b are vars (idx 0,1); t is the parameter (idx 2)
	paramInit := NewIntervalVector([]Interval{NewInterval(0, 1)})
	fa := NewForAll(NewFwdBwd(ge), mask, paramInit, 0.1)

	original := NewIntervalVector([]Interval{NewInterval(-1, 1), NewInterval(-1, 1)})
	varBox := original.Clone()
	if err := fa.Contract(varBox); err != nil {
		t.Fatal(err)
	}
	if !varBox.IsSubset(original) {
		t.Fatalf("expected the universally-feasible set to be a subset of the starting box, got %v", varBox)
	}
	// b = 1, a = 0 satisfies a*t+b>=0 for every t, so the feasible set is
	// non-empty and must retain it.
	if !varBox.Contains([]float64{0, 1}) {
		t.Fatalf("expected (a=0,b=1), universally feasible, to survive, got %v", varBox)
	}
}

func TestExistKeepsHullOfSatisfyingPoints(t *testing.T) {
	expr := Add(Mul(VarRef(0), VarRef(2)), VarRef(1))
	ge := NewNumConstraint(NewFunction(3, expr), OpGe)
	mask := []bool{false, false, true}
	paramInit := NewIntervalVector([]Interval{NewInterval(0, 1)})
	ex := NewExist(NewFwdBwd(ge), mask, paramInit, 0.1)

	original := NewIntervalVector([]Interval{NewInterval(-1, 1), NewInterval(-1, 1)})
	varBox := original.Clone()
	if err := ex.Contract(varBox); err != nil {
		t.Fatal(err)
	}
	if varBox.IsEmpty() {
		t.Fatal("expected a non-empty surviving region: b=1 satisfies the constraint for every t")
	}
	if !varBox.IsSubset(original) {
		t.Fatalf("expected the existentially-feasible set to be a subset of the starting box, got %v", varBox)
	}
}
