package bacontract

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// LPStatus is the outcome of one LPBridge.Solve call.
type LPStatus int

const (
	StatusOptimal LPStatus = iota
	StatusInfeasible
	StatusUnknown
	StatusTimeOut
	StatusMaxIter
)

func (s LPStatus) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusTimeOut:
		return "TIME_OUT"
	case StatusMaxIter:
		return "MAX_ITER"
	default:
		return "UNKNOWN"
	}
}

// LPBridge holds one simplex instance with 2*nbVar+nbCtr rows: the first
// 2*nbVar rows carry the current variable-bound constraints (lower and
// upper per variable), the rows that follow carry caller-added
// linearizations. It is the only site in the engine aware of the
// underlying LP solver (gonum's lp.Simplex); a solver swap only needs to
// preserve this type's surface.
type LPBridge struct {
	nbVar int
	nbCtr int

	// rows holds every constraint row (variable bounds first, then
	// caller-added rows), each as (coeffs, op, rhs) with op one of
	// OpLe, OpGe, OpEq.
	rows []lpRow

	obj []float64 // objective coefficients, length nbVar

	lastPrimal []float64
	lastDual   []float64
}

type lpRow struct {
	coeffs []float64
	op     CompareOp
	rhs    float64
}

// NewLPBridge builds an empty bridge for nbVar variables, reserving room
// for nbCtr caller-added linearization rows. The first 2*nbVar rows are
// always the variable bounds, lower then upper, one row per side per
// variable; caller-added rows (linearizations) follow from row
// boundRowCount() onward.
func NewLPBridge(nbVar, nbCtr int) *LPBridge {
	b := &LPBridge{nbVar: nbVar, nbCtr: nbCtr, obj: make([]float64, nbVar)}
	b.rows = make([]lpRow, 0, 2*nbVar+nbCtr)
	for i := 0; i < nbVar; i++ {
		lb := make([]float64, nbVar)
		lb[i] = 1
		b.rows = append(b.rows, lpRow{coeffs: lb, op: OpGe, rhs: 0})
	}
	for i := 0; i < nbVar; i++ {
		ub := make([]float64, nbVar)
		ub[i] = 1
		b.rows = append(b.rows, lpRow{coeffs: ub, op: OpLe, rhs: 0})
	}
	return b
}

// boundRowCount returns how many of b.rows are variable-bound rows (as
// opposed to caller-added linearizations).
func (b *LPBridge) boundRowCount() int { return 2 * b.nbVar }

// SetBoundVar installs box[i] as the i-th variable's bound rows: x_i >=
// lb and x_i <= ub.
func (b *LPBridge) SetBoundVar(i int, bound Interval) {
	b.rows[i].rhs = bound.Lb()
	b.rows[b.nbVar+i].rhs = bound.Ub()
}

// SetVarObj sets the objective coefficient for variable i. sense +1
// minimizes, -1 maximizes (callers wanting a max flip the sign
// themselves and flip the reported value back).
func (b *LPBridge) SetVarObj(i int, coeff float64) {
	b.obj[i] = coeff
}

// SetSense is a no-op placeholder kept for symmetry with SetVarObj: this
// bridge always minimizes; callers wanting the max of e_i negate coeff.
func (b *LPBridge) SetSense(minimize bool) {}

// AddConstraint appends a caller linearization row (used by the
// linear-relaxation contractor to install a Taylor/affine outer
// approximation of the nonlinear constraints).
func (b *LPBridge) AddConstraint(coeffs []float64, op CompareOp, rhs float64) {
	row := make([]float64, len(coeffs))
	copy(row, coeffs)
	b.rows = append(b.rows, lpRow{coeffs: row, op: op, rhs: rhs})
}

// CleanConstraints drops every row past the variable bounds, discarding
// caller-added linearizations from a previous face.
func (b *LPBridge) CleanConstraints() {
	b.rows = b.rows[:b.boundRowCount()]
}

// Solve runs the simplex method over the current rows and objective.
func (b *LPBridge) Solve() (LPStatus, error) {
	A, bvec, c := b.buildStandardForm()
	if A == nil {
		return StatusUnknown, nil
	}

	_, x, err := lp.Simplex(c, A, bvec, 0, nil)
	if err != nil {
		if err == lp.ErrInfeasible {
			return StatusInfeasible, nil
		}
		return StatusUnknown, fmt.Errorf("%w: %v", ErrLPBridgeFail, err)
	}
	b.lastPrimal = x[:b.nbVar]
	b.lastDual = b.recoverDual(A, bvec)
	return StatusOptimal, nil
}

// buildStandardForm lowers the current rows into gonum's min c^T x s.t.
// Ax = b, x >= 0 form, introducing one slack/surplus variable per
// inequality row so rows become equalities.
func (b *LPBridge) buildStandardForm() (*mat.Dense, []float64, []float64) {
	m := len(b.rows)
	if m == 0 {
		return nil, nil, nil
	}
	nSlack := 0
	for _, r := range b.rows {
		if r.op != OpEq {
			nSlack++
		}
	}
	n := b.nbVar + nSlack
	data := make([]float64, m*n)
	bvec := make([]float64, m)
	c := make([]float64, n)
	copy(c, b.obj)

	slackCol := b.nbVar
	for i, r := range b.rows {
		for j, v := range r.coeffs {
			data[i*n+j] = v
		}
		bvec[i] = r.rhs
		switch r.op {
		case OpLe:
			data[i*n+slackCol] = 1
			slackCol++
		case OpGe:
			data[i*n+slackCol] = -1
			slackCol++
		}
	}
	return mat.NewDense(m, n, data), bvec, c
}

// recoverDual approximates the dual vector from complementary slackness
// at the returned primal vertex: each row that is tight there gets
// weight 1 and every other row gets 0. It does not solve the dual LP, so
// these weights are in general not the LP's optimal duals.
func (b *LPBridge) recoverDual(A *mat.Dense, bvec []float64) []float64 {
	m, n := A.Dims()
	// Dual standard form: minimize -b^T y  s.t.  [A^T; -A^T; I] y' <= ... is
	// expensive to build in general; instead approximate duals from
	// complementary slackness at the returned primal vertex: for each
	// row, the dual is nonzero only if the row is tight.
	dual := make([]float64, m)
	if b.lastPrimal == nil {
		return dual
	}
	tight := make([]bool, m)
	for i := 0; i < m; i++ {
		lhs := 0.0
		for j := 0; j < n; j++ {
			var xj float64
			if j < len(b.lastPrimal) {
				xj = b.lastPrimal[j]
			}
			lhs += A.At(i, j) * xj
		}
		tight[i] = closeTo(roundSmall(lhs), roundSmall(bvec[i]))
	}
	for i, t := range tight {
		if t {
			dual[i] = 1 // unit weight per active constraint
		}
	}
	return dual
}

func roundSmall(v float64) float64 {
	const scale = 1e8
	r := float64(int64(v*scale)) / scale
	return r
}

// Primal returns the last solved primal vector (length nbVar).
func (b *LPBridge) Primal() []float64 { return b.lastPrimal }

// Dual returns the dual vector of the last OPTIMAL solve, one entry per
// row (variable-bound rows first), or nil if there was none. Entries are
// returned as recoverDual computed them; Dual itself clamps nothing.
func (b *LPBridge) Dual() []float64 { return b.lastDual }

// Rows exposes the coefficient matrix, rhs vector, and ops for the
// Neumaier-Shcherbina post-processing pass.
func (b *LPBridge) Rows() []lpRow { return b.rows }

// NbVar returns the variable count.
func (b *LPBridge) NbVar() int { return b.nbVar }

// Clone returns an independent copy sharing no mutable state, so distinct
// faces can be solved concurrently (each face needs its own objective row
// and its own lastPrimal/lastDual scratch).
func (b *LPBridge) Clone() *LPBridge {
	out := &LPBridge{nbVar: b.nbVar, nbCtr: b.nbCtr}
	out.rows = make([]lpRow, len(b.rows))
	for i, r := range b.rows {
		coeffs := make([]float64, len(r.coeffs))
		copy(coeffs, r.coeffs)
		out.rows[i] = lpRow{coeffs: coeffs, op: r.op, rhs: r.rhs}
	}
	out.obj = append([]float64(nil), b.obj...)
	return out
}
