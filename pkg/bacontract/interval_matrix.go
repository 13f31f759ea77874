package bacontract

import "gonum.org/v1/gonum/mat"

// IntervalMatrix is a fixed-size matrix of intervals, used for Jacobians
// and for the coefficient matrix the LP bridge assembles. It exposes
// midpoint/radius decomposition bridges to gonum's dense matrices (§3.1 of
// SPEC_FULL.md) since the LP bridge and the Neumaier–Shcherbina
// post-processing both need plain float64 linear algebra alongside the
// rigorous interval bounds.
type IntervalMatrix struct {
	rows, cols int
	data       []Interval // row-major
}

// NewIntervalMatrix builds an rows x cols matrix with every entry empty.
func NewIntervalMatrix(rows, cols int) *IntervalMatrix {
	return &IntervalMatrix{rows: rows, cols: cols, data: make([]Interval, rows*cols)}
}

// Rows returns the row count.
func (m *IntervalMatrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *IntervalMatrix) Cols() int { return m.cols }

// At returns the (i,j) entry.
func (m *IntervalMatrix) At(i, j int) Interval { return m.data[i*m.cols+j] }

// Set assigns the (i,j) entry.
func (m *IntervalMatrix) Set(i, j int, v Interval) { m.data[i*m.cols+j] = v }

// Row returns row i as an IntervalVector.
func (m *IntervalMatrix) Row(i int) *IntervalVector {
	out := make([]Interval, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return NewIntervalVector(out)
}

// Col returns column j as an IntervalVector.
func (m *IntervalMatrix) Col(j int) *IntervalVector {
	out := make([]Interval, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = m.At(i, j)
	}
	return NewIntervalVector(out)
}

// MidDense returns the midpoint matrix as a *mat.Dense, for callers (the
// LP bridge, the local-search collaborator) that need plain floating-point
// linear algebra rather than rigorous interval bounds.
func (m *IntervalMatrix) MidDense() *mat.Dense {
	d := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			d.Set(i, j, m.At(i, j).Mid())
		}
	}
	return d
}

// FromDense builds an IntervalMatrix of degenerate intervals from a plain
// dense matrix, used to lift an exact Jacobian sample or an LP coefficient
// matrix into the interval domain for Neumaier–Shcherbina post-processing.
func FromDense(d *mat.Dense) *IntervalMatrix {
	r, c := d.Dims()
	m := NewIntervalMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, Degenerate(d.At(i, j)))
		}
	}
	return m
}
