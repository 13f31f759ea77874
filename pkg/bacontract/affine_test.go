package bacontract

import "testing"

func TestAffineSymbolRoundTripsToInterval(t *testing.T) {
	x := NewInterval(2, 6)
	af := NewAffineSymbol(0, x)
	got := af.ToInterval()
	if got.Lb() > 2 || got.Ub() < 6 {
		t.Fatalf("expected the affine form to enclose [2,6], got %v", got)
	}
}

func TestAffineAddSub(t *testing.T) {
	a := NewAffineSymbol(0, NewInterval(0, 2))
	b := NewAffineSymbol(1, NewInterval(0, 4))

	sum := a.Add(b)
	if got := sum.ToInterval(); got.Lb() > 0 || got.Ub() < 6 {
		t.Fatalf("sum enclosure: got %v, expected to contain [0,6]", got)
	}

	diff := a.Sub(a)
	// x - x should collapse the shared noise symbol exactly, since
	// mergeCoeffs with ka=1,kb=-1 cancels coefficient 0's contribution.
	if got := diff.ToInterval(); !got.Contains(0) {
		t.Fatalf("expected x-x to contain 0, got %v", got)
	}
}

func TestAffineNegAndScale(t *testing.T) {
	a := NewAffineSymbol(0, NewInterval(1, 3))
	neg := a.Neg()
	if got := neg.ToInterval(); got.Lb() > -3 || got.Ub() < -1 {
		t.Fatalf("neg: got %v", got)
	}
	scaled := a.Scale(2)
	if got := scaled.ToInterval(); got.Lb() > 2 || got.Ub() < 6 {
		t.Fatalf("scale: got %v", got)
	}
}

func TestAffineMulConservativeEnclosure(t *testing.T) {
	a := NewAffineSymbol(0, NewInterval(1, 2))
	b := NewAffineSymbol(1, NewInterval(3, 4))
	prod := a.Mul(b)
	got := prod.ToInterval()
	// True product range is [3,8]; the affine Mul must still enclose it.
	if got.Lb() > 3 || got.Ub() < 8 {
		t.Fatalf("expected product enclosure to contain [3,8], got %v", got)
	}
}

func TestAffineCoeffOf(t *testing.T) {
	a := NewAffineSymbol(2, NewInterval(0, 4))
	if got := a.coeffOf(2); got != 2 {
		t.Fatalf("expected coefficient 2 (half the diameter), got %g", got)
	}
	if got := a.coeffOf(99); got != 0 {
		t.Fatalf("expected 0 for a symbol not carried, got %g", got)
	}
}

func TestConstantHasZeroRadius(t *testing.T) {
	c := Constant(5)
	got := c.ToInterval()
	if got.Lb() != 5 || got.Ub() != 5 {
		t.Fatalf("expected a degenerate interval at 5, got %v", got)
	}
}

func TestAffineSymbolUnboundedDegradesToAllReals(t *testing.T) {
	af := NewAffineSymbol(0, AllReals)
	if !af.ToInterval().Equal(AllReals) {
		t.Fatalf("expected an unbounded input to produce AllReals, got %v", af.ToInterval())
	}
}
