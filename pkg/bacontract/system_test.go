package bacontract

import "testing"

func TestLoadSystemStringFeasibility(t *testing.T) {
	src := `variables:
x in [-2, 2];
y in [-2, 2];
constraints:
sqr(x) + sqr(y) == 1;
x - y == 0;
`
	sys, err := LoadSystemString("s1", src)
	if err != nil {
		t.Fatal(err)
	}
	if sys.NbVar() != 2 {
		t.Fatalf("expected 2 variables, got %d", sys.NbVar())
	}
	if len(sys.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(sys.Constraints))
	}
	if sys.Objective != nil {
		t.Fatal("expected no objective for a pure feasibility system")
	}
	if sys.InitialBox.At(0).Lb() != -2 || sys.InitialBox.At(0).Ub() != 2 {
		t.Fatalf("expected x in [-2,2], got %v", sys.InitialBox.At(0))
	}
}

func TestLoadSystemStringWithObjective(t *testing.T) {
	src := `variables:
x in [-10, 10];
y in [-10, 10];
minimize sqr(x - 3) + sqr(y + 1);
constraints:
`
	sys, err := LoadSystemString("s2", src)
	if err != nil {
		t.Fatal(err)
	}
	if sys.Objective == nil {
		t.Fatal("expected an objective")
	}
	if len(sys.Constraints) != 0 {
		t.Fatalf("expected no constraints, got %d", len(sys.Constraints))
	}
}

func TestLoadSystemStringSyntaxError(t *testing.T) {
	_, err := LoadSystemString("bad", "this is not a system file")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestLoadSystemStringUnknownIdentifier(t *testing.T) {
	src := `variables:
x in [0, 1];
constraints:
x - z == 0;
`
	_, err := LoadSystemString("bad-ident", src)
	if err == nil {
		t.Fatal("expected an error for an unknown identifier")
	}
}

func TestSystemExtendedAddsAuxiliaryVariable(t *testing.T) {
	f := NewFunction(2, Add(Sqr(VarRef(0)), Sqr(VarRef(1))))
	sys := &System{
		VarNames:    []string{"x", "y"},
		InitialBox:  NewIntervalVector([]Interval{NewInterval(-1, 1), NewInterval(-1, 1)}),
		Constraints: nil,
		Objective:   f,
	}
	ext := sys.Extended()
	if ext.NbVar() != 3 {
		t.Fatalf("expected 3 variables (x, y, y-aux), got %d", ext.NbVar())
	}
	if len(ext.Constraints) != 1 {
		t.Fatalf("expected exactly the goal-minus-y constraint, got %d", len(ext.Constraints))
	}
	if ext.Constraints[0].Op != OpEq {
		t.Fatalf("expected the extension constraint to be an equality, got %v", ext.Constraints[0].Op)
	}
	if ext.Objective.ImageDim() != 1 {
		t.Fatal("expected a scalar objective over y")
	}
}

func TestSystemExtendedPanicsWithoutObjective(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when extending an objective-less system")
		}
	}()
	sys := &System{
		VarNames:   []string{"x"},
		InitialBox: NewIntervalVector([]Interval{NewInterval(0, 1)}),
	}
	sys.Extended()
}

func TestCompareOpString(t *testing.T) {
	cases := map[CompareOp]string{
		OpLt: "<",
		OpLe: "<=",
		OpEq: "=",
		OpGe: ">=",
		OpGt: ">",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Fatalf("op %d: got %q want %q", op, got, want)
		}
	}
}

func TestNumConstraintForbiddenAndFeasibleAreComplementary(t *testing.T) {
	f := NewFunction(1, VarRef(0))
	c := NewNumConstraint(f, OpLe)
	// feasible is (-inf, 0], forbidden is (0, +inf): together they cover
	// the whole real line with no overlap at the boundary.
	if !c.Feasible().Contains(0) {
		t.Fatal("expected 0 to be feasible for <=")
	}
	if c.Forbidden().Contains(0) {
		t.Fatal("expected 0 not to be forbidden for <=")
	}
	if !c.Forbidden().Contains(1) {
		t.Fatal("expected a positive value to be forbidden for <=")
	}
}
