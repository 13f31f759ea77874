package bacontract

import "testing"

func TestLPBridgeSolveOptimal(t *testing.T) {
	b := NewLPBridge(1, 1)
	b.SetBoundVar(0, NewInterval(0, 10))
	b.AddConstraint([]float64{1}, OpGe, 2) // x >= 2
	b.SetVarObj(0, 1)                      // minimize x

	status, err := b.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %v", status)
	}
	primal := b.Primal()
	if len(primal) != 1 || primal[0] < 1.999 || primal[0] > 2.001 {
		t.Fatalf("expected x ~= 2, got %v", primal)
	}
}

func TestLPBridgeSolveInfeasible(t *testing.T) {
	b := NewLPBridge(1, 2)
	b.SetBoundVar(0, NewInterval(0, 10))
	b.AddConstraint([]float64{1}, OpGe, 8) // x >= 8
	b.AddConstraint([]float64{1}, OpLe, 3) // x <= 3, contradicts
	b.SetVarObj(0, 1)

	status, err := b.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusInfeasible {
		t.Fatalf("expected INFEASIBLE, got %v", status)
	}
}

func TestLPBridgeCleanConstraintsDropsCallerRows(t *testing.T) {
	b := NewLPBridge(1, 1)
	b.SetBoundVar(0, NewInterval(0, 10))
	b.AddConstraint([]float64{1}, OpGe, 5)
	if len(b.Rows()) != b.boundRowCount()+1 {
		t.Fatalf("expected one extra row, got %d rows", len(b.Rows()))
	}
	b.CleanConstraints()
	if len(b.Rows()) != b.boundRowCount() {
		t.Fatalf("expected only bound rows after clean, got %d", len(b.Rows()))
	}
}

func TestLPBridgeCloneIsIndependent(t *testing.T) {
	b := NewLPBridge(1, 1)
	b.SetBoundVar(0, NewInterval(0, 10))
	b.AddConstraint([]float64{1}, OpGe, 2)
	b.SetVarObj(0, 1)

	clone := b.Clone()
	clone.SetVarObj(0, -1) // maximize instead

	if b.obj[0] == clone.obj[0] {
		t.Fatal("expected clone's objective to be independently mutable")
	}
	if len(b.Rows()) != len(clone.Rows()) {
		t.Fatal("expected clone to start with the same row count")
	}
	clone.AddConstraint([]float64{1}, OpLe, 9)
	if len(b.Rows()) == len(clone.Rows()) {
		t.Fatal("expected mutating the clone's rows not to affect the original")
	}
}

func TestLPBridgeNbVar(t *testing.T) {
	b := NewLPBridge(3, 0)
	if b.NbVar() != 3 {
		t.Fatalf("expected 3, got %d", b.NbVar())
	}
}

func TestLPStatusString(t *testing.T) {
	cases := map[LPStatus]string{
		StatusOptimal:    "OPTIMAL",
		StatusInfeasible: "INFEASIBLE",
		StatusTimeOut:    "TIME_OUT",
		StatusMaxIter:    "MAX_ITER",
		StatusUnknown:    "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("status %d: got %q want %q", status, got, want)
		}
	}
}
