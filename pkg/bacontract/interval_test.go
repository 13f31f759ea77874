package bacontract

import (
	"math"
	"testing"
)

func TestNewIntervalEmptyOnInverted(t *testing.T) {
	if !NewInterval(3, 1).IsEmpty() {
		t.Fatal("expected hi < lo to produce the empty interval")
	}
	if !NewInterval(math.NaN(), 1).IsEmpty() {
		t.Fatal("expected NaN bound to produce the empty interval")
	}
}

func TestIntervalBasics(t *testing.T) {
	x := NewInterval(1, 4)
	if x.Lb() != 1 || x.Ub() != 4 {
		t.Fatalf("bounds: got [%g, %g]", x.Lb(), x.Ub())
	}
	if got := x.Mid(); got != 2.5 {
		t.Fatalf("mid: got %g want 2.5", got)
	}
	if got := x.Diam(); got != 3 {
		t.Fatalf("diam: got %g want 3", got)
	}
}

func TestIntervalMagMig(t *testing.T) {
	x := NewInterval(-3, 2)
	if got := x.Mag(); got != 3 {
		t.Fatalf("mag: got %g want 3", got)
	}
	if got := x.Mig(); got != 0 {
		t.Fatalf("mig: straddling zero should be 0, got %g", got)
	}
	y := NewInterval(2, 5)
	if got := y.Mig(); got != 2 {
		t.Fatalf("mig: got %g want 2", got)
	}
}

func TestIntervalContainsAndSubset(t *testing.T) {
	x := NewInterval(0, 10)
	y := NewInterval(2, 3)
	if !x.Contains(5) {
		t.Fatal("expected 5 in [0,10]")
	}
	if x.Contains(11) {
		t.Fatal("expected 11 not in [0,10]")
	}
	if !x.ContainsInterval(y) {
		t.Fatal("expected [2,3] subset of [0,10]")
	}
	if !y.IsSubset(x) {
		t.Fatal("expected IsSubset symmetric to ContainsInterval")
	}
	if y.IsStrictSubset(y) {
		t.Fatal("an interval is not a strict subset of itself")
	}
	if !y.IsStrictSubset(x) {
		t.Fatal("expected strict subset")
	}
}

func TestIntervalInterAndHull(t *testing.T) {
	a := NewInterval(0, 5)
	b := NewInterval(3, 8)
	inter := a.Inter(b)
	if inter.Lb() != 3 || inter.Ub() != 5 {
		t.Fatalf("inter: got %v", inter)
	}
	hull := a.Hull(b)
	if hull.Lb() != 0 || hull.Ub() != 8 {
		t.Fatalf("hull: got %v", hull)
	}
	disjoint := NewInterval(0, 1).Inter(NewInterval(2, 3))
	if !disjoint.IsEmpty() {
		t.Fatal("expected disjoint intervals to intersect empty")
	}
}

func TestIntervalArithmetic(t *testing.T) {
	a := NewInterval(1, 2)
	b := NewInterval(3, 4)

	if s := a.Add(b); s.Lb() != 4 || s.Ub() != 6 {
		t.Fatalf("add: got %v", s)
	}
	if s := a.Sub(b); s.Lb() != -3 || s.Ub() != -1 {
		t.Fatalf("sub: got %v", s)
	}
	if s := a.Neg(); s.Lb() != -2 || s.Ub() != -1 {
		t.Fatalf("neg: got %v", s)
	}

	mixed := NewInterval(-2, 3)
	if s := mixed.Mul(NewInterval(-1, 2)); s.Lb() != -4 || s.Ub() != 6 {
		t.Fatalf("mul: got %v", s)
	}

	if s := a.Div(b); s.Lb() > 1.0/3.0+1e-9 || s.Ub() < 2.0/3.0-1e-9 {
		t.Fatalf("div: got %v", s)
	}
}

func TestIntervalDivByZeroStraddling(t *testing.T) {
	x := NewInterval(1, 2)
	y := NewInterval(-1, 1)
	got := x.Div(y)
	if !got.Equal(AllReals) {
		t.Fatalf("dividing by a zero-straddling interval should yield AllReals, got %v", got)
	}
	zero := Degenerate(0)
	if !x.Div(zero).IsEmpty() {
		t.Fatal("dividing by the degenerate zero interval should be empty")
	}
}

func TestIntervalSqrAndSqrt(t *testing.T) {
	x := NewInterval(-3, 2)
	sq := x.Sqr()
	if sq.Lb() != 0 || sq.Ub() != 9 {
		t.Fatalf("sqr: got %v", sq)
	}
	neg := NewInterval(-4, -1)
	if !neg.Sqrt().IsEmpty() {
		t.Fatal("sqrt of an all-negative interval should be empty")
	}
	pos := NewInterval(4, 9)
	root := pos.Sqrt()
	if root.Lb() > 2 || root.Ub() < 3 {
		t.Fatalf("sqrt: got %v", root)
	}
}

func TestIntervalSign(t *testing.T) {
	if s := NewInterval(1, 5).Sign(); s.Lb() != 1 || s.Ub() != 1 {
		t.Fatalf("sign of positive: got %v", s)
	}
	if s := NewInterval(-5, -1).Sign(); s.Lb() != -1 || s.Ub() != -1 {
		t.Fatalf("sign of negative: got %v", s)
	}
	if s := NewInterval(-1, 1).Sign(); s.Lb() != -1 || s.Ub() != 1 {
		t.Fatalf("sign straddling zero: got %v", s)
	}
}

func TestIntervalDiff(t *testing.T) {
	x := NewInterval(0, 10)
	y := NewInterval(3, 6)
	pieces := x.Diff(y)
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d: %v", len(pieces), pieces)
	}
	if pieces[0].Lb() != 0 || pieces[0].Ub() != 3 {
		t.Fatalf("left piece: got %v", pieces[0])
	}
	if pieces[1].Lb() != 6 || pieces[1].Ub() != 10 {
		t.Fatalf("right piece: got %v", pieces[1])
	}
}

func TestIntervalIsBisectable(t *testing.T) {
	if EmptyInterval().IsBisectable() {
		t.Fatal("empty interval should not be bisectable")
	}
	if !NewInterval(0, 1).IsBisectable() {
		t.Fatal("a wide interval should be bisectable")
	}
	tiny := Degenerate(1.0)
	if tiny.IsBisectable() {
		t.Fatal("a degenerate interval should not be bisectable")
	}
}

func TestIntervalEqual(t *testing.T) {
	if !NewInterval(1, 2).Equal(NewInterval(1, 2)) {
		t.Fatal("expected equal intervals to compare equal")
	}
	if !EmptyInterval().Equal(EmptyInterval()) {
		t.Fatal("expected two empties to compare equal")
	}
	if NewInterval(1, 2).Equal(EmptyInterval()) {
		t.Fatal("expected non-empty and empty to differ")
	}
}

func TestIntervalString(t *testing.T) {
	if got := NewInterval(1, 2).String(); got != "[1, 2]" {
		t.Fatalf("string: got %q", got)
	}
	if got := EmptyInterval().String(); got != "()" {
		t.Fatalf("string: got %q", got)
	}
}
