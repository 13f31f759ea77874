package bacontract

import "testing"

func TestSweepNoConstraintsLeavesBoxUnchanged(t *testing.T) {
	s := NewSweep(nil, []int{0}, 0.01)
	working := NewIntervalVector([]Interval{NewInterval(0, 10)})
	original := working.Clone()
	pt := []float64{10}

	out, emptied := s.Run(working, original, pt)
	if emptied {
		t.Fatal("expected no jump without any constraints to try")
	}
	if !out.Equal(working) {
		t.Fatalf("expected the working box unchanged, got %v", out)
	}
}

func TestApplyFaceCutNarrowsTouchingBound(t *testing.T) {
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	forbidden := NewIntervalVector([]Interval{NewInterval(7, 10)})
	if !applyFaceCut(box, forbidden, 0) {
		t.Fatal("expected a cut: forbidden box touches box's upper bound")
	}
	if box.At(0).Ub() != 7 {
		t.Fatalf("expected upper bound narrowed to 7, got %v", box.At(0))
	}
}

func TestApplyFaceCutNoOpWhenNotTouching(t *testing.T) {
	box := NewIntervalVector([]Interval{NewInterval(0, 10)})
	forbidden := NewIntervalVector([]Interval{NewInterval(4, 6)})
	if applyFaceCut(box, forbidden, 0) {
		t.Fatal("expected no cut: forbidden box touches neither bound")
	}
	if box.At(0).Lb() != 0 || box.At(0).Ub() != 10 {
		t.Fatalf("expected box unchanged, got %v", box.At(0))
	}
}
