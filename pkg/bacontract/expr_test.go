package bacontract

import "testing"

func TestEvalIntervalPolynomial(t *testing.T) {
	// f(x) = x^2 - 1
	f := Sub(Sqr(VarRef(0)), Const(1))
	box := NewIntervalVector([]Interval{NewInterval(2, 3)})
	got := evalInterval(f, box)
	if got.Lb() > 3 || got.Ub() < 8 {
		t.Fatalf("expected enclosure of [3,8], got %v", got)
	}
}

func TestEvalIntervalAddMulNeg(t *testing.T) {
	// f(x, y) = -(x + y) * 2
	f := Mul(Neg(Add(VarRef(0), VarRef(1))), Const(2))
	box := NewIntervalVector([]Interval{Degenerate(1), Degenerate(2)})
	got := evalInterval(f, box)
	if got.Lb() != -6 || got.Ub() != -6 {
		t.Fatalf("expected degenerate [-6,-6], got %v", got)
	}
}

func TestIntPow(t *testing.T) {
	x := NewInterval(2, 3)
	if got := intPow(x, 0); got.Lb() != 1 || got.Ub() != 1 {
		t.Fatalf("x^0: got %v", got)
	}
	if got := intPow(x, 2); got.Lb() != 4 || got.Ub() != 9 {
		t.Fatalf("x^2: got %v", got)
	}
	if got := intPow(x, -1); got.Lb() > 1.0/3.0+1e-9 || got.Ub() < 0.5-1e-9 {
		t.Fatalf("x^-1: got %v", got)
	}
}

func TestEvalIntervalChi(t *testing.T) {
	cond := Const(-1)
	f := Chi(cond, Const(10), Const(20))
	box := NewIntervalVector(nil)
	got := evalInterval(f, box)
	if got.Lb() != 10 || got.Ub() != 10 {
		t.Fatalf("expected branch a selected, got %v", got)
	}
}

func TestEvalIntervalDiv(t *testing.T) {
	f := Div(VarRef(0), VarRef(1))
	box := NewIntervalVector([]Interval{NewInterval(4, 4), NewInterval(2, 2)})
	got := evalInterval(f, box)
	if got.Lb() != 2 || got.Ub() != 2 {
		t.Fatalf("expected [2,2], got %v", got)
	}
}

func TestPartialDerivativeOfSquare(t *testing.T) {
	// f(x) = x^2 via Sqr; df/dx = 2x
	f := Sqr(VarRef(0))
	d := partial(f, 0)
	box := NewIntervalVector([]Interval{Degenerate(3)})
	got := evalInterval(d, box)
	if got.Lb() != 6 || got.Ub() != 6 {
		t.Fatalf("expected d/dx x^2 at x=3 to be 6, got %v", got)
	}
}

func TestBackwardReviseNarrowsVariable(t *testing.T) {
	// x + y = 5, x in [0,10], y in [0,10]; constrain to image [5,5]
	f := Add(VarRef(0), VarRef(1))
	box := NewIntervalVector([]Interval{NewInterval(0, 10), NewInterval(3, 4)})
	if err := backwardRevise(f, Degenerate(5), box); err != nil {
		t.Fatal(err)
	}
	// y in [3,4] forces x in [1,2]
	if box.At(0).Lb() < 0.999 || box.At(0).Ub() > 2.001 {
		t.Fatalf("expected x narrowed to about [1,2], got %v", box.At(0))
	}
}

func TestBackwardReviseEmptiesInfeasibleBox(t *testing.T) {
	f := Add(VarRef(0), VarRef(1))
	box := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(0, 1)})
	err := backwardRevise(f, Degenerate(100), box)
	if err == nil {
		t.Fatal("expected an error narrowing to an unreachable image")
	}
	if !box.IsEmpty() {
		t.Fatal("expected the box to be marked empty")
	}
}
