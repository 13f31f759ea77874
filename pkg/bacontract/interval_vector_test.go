package bacontract

import (
	"math/rand"
	"testing"
)

func TestIntervalVectorBasics(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(2, 5)})
	if b.Size() != 2 {
		t.Fatalf("size: got %d", b.Size())
	}
	if b.IsEmpty() {
		t.Fatal("expected non-empty box")
	}
	b.Set(0, EmptyInterval())
	if !b.IsEmpty() {
		t.Fatal("expected box to become empty once a component is empty")
	}
}

func TestIntervalVectorCloneIndependence(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 1)})
	c := b.Clone()
	c.Set(0, NewInterval(5, 6))
	if b.At(0).Equal(c.At(0)) {
		t.Fatal("expected clone to be independent of the original")
	}
}

func TestIntervalVectorMaxMinDiam(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(0, 10), NewInterval(3, 4)})
	if d, i := b.MaxDiam(); d != 10 || i != 1 {
		t.Fatalf("maxdiam: got %g at %d", d, i)
	}
	if d, i := b.MinDiam(); d != 1 || (i != 0 && i != 2) {
		t.Fatalf("mindiam: got %g at %d", d, i)
	}
}

func TestIntervalVectorBisect(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 10)})
	left, right, err := b.Bisect(0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if left.At(0).Lb() != 0 || left.At(0).Ub() != 5 {
		t.Fatalf("left: got %v", left.At(0))
	}
	if right.At(0).Lb() != 5 || right.At(0).Ub() != 10 {
		t.Fatalf("right: got %v", right.At(0))
	}
}

func TestIntervalVectorBisectOutOfRange(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if _, _, err := b.Bisect(3, 0.5); err == nil {
		t.Fatal("expected error for out-of-range dimension")
	}
}

func TestIntervalVectorBisectNotBisectable(t *testing.T) {
	b := NewIntervalVector([]Interval{Degenerate(1.0)})
	if _, _, err := b.Bisect(0, 0.5); err == nil {
		t.Fatal("expected error bisecting a degenerate interval")
	}
}

func TestIntervalVectorHullInter(t *testing.T) {
	a := NewIntervalVector([]Interval{NewInterval(0, 5)})
	b := NewIntervalVector([]Interval{NewInterval(3, 8)})
	if h := a.Hull(b); h.At(0).Lb() != 0 || h.At(0).Ub() != 8 {
		t.Fatalf("hull: got %v", h.At(0))
	}
	if i := a.Inter(b); i.At(0).Lb() != 3 || i.At(0).Ub() != 5 {
		t.Fatalf("inter: got %v", i.At(0))
	}
}

func TestIntervalVectorSubset(t *testing.T) {
	inner := NewIntervalVector([]Interval{NewInterval(2, 3)})
	outer := NewIntervalVector([]Interval{NewInterval(0, 10)})
	if !inner.IsSubset(outer) {
		t.Fatal("expected inner to be a subset of outer")
	}
	if !inner.IsStrictSubset(outer) {
		t.Fatal("expected strict subset")
	}
	if outer.IsStrictSubset(outer) {
		t.Fatal("a box is not a strict subset of itself")
	}
}

func TestIntervalVectorContains(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(0, 1)})
	if !b.Contains([]float64{0.5, 0.5}) {
		t.Fatal("expected point to be contained")
	}
	if b.Contains([]float64{2, 0.5}) {
		t.Fatal("expected point to be outside")
	}
	if b.Contains([]float64{0.5}) {
		t.Fatal("expected dimension mismatch to fail Contains")
	}
}

func TestIntervalVectorRandomWithinBounds(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(-1, 1), NewInterval(10, 20)})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		pt := b.Random(rng)
		if !b.Contains(pt) {
			t.Fatalf("sampled point %v outside box %v", pt, b)
		}
	}
}

func TestIntervalVectorDiffReconstitutesWithIntersection(t *testing.T) {
	a := NewIntervalVector([]Interval{NewInterval(0, 10)})
	other := NewIntervalVector([]Interval{NewInterval(3, 6)})
	pieces := a.Diff(other)
	inter := a.Inter(other)

	total := inter.At(0).Diam()
	for _, p := range pieces {
		total += p.At(0).Diam()
	}
	if total != a.At(0).Diam() {
		t.Fatalf("pieces + intersection diam = %g, want %g", total, a.At(0).Diam())
	}
}

func TestIntervalVectorDiffDimensionMismatch(t *testing.T) {
	a := NewIntervalVector([]Interval{NewInterval(0, 10)})
	other := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(0, 1)})
	pieces := a.Diff(other)
	if len(pieces) != 1 || !pieces[0].Equal(a) {
		t.Fatalf("expected whole box returned on dimension mismatch, got %v", pieces)
	}
}

func TestIntervalVectorCorner(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 1), NewInterval(2, 3)})
	pt := b.Corner([]bool{false, true})
	if pt[0] != 0 || pt[1] != 3 {
		t.Fatalf("corner: got %v", pt)
	}
}

func TestIntervalVectorMid(t *testing.T) {
	b := NewIntervalVector([]Interval{NewInterval(0, 2), NewInterval(4, 6)})
	mid := b.Mid()
	if mid[0] != 1 || mid[1] != 5 {
		t.Fatalf("mid: got %v", mid)
	}
}
