package bacontract

import (
	"context"
	"fmt"
	"time"
)

// Solver runs the feasibility loop (spec §4.7) over a LIFO cell buffer:
// pop a cell, contract it with the user contractor, and either discard
// it, record the contracted box as a solution once it passes the
// precision test, or bisect and push both children.
type Solver struct {
	System     *System
	Ctc        Contractor
	Bisect     Bisector
	Precision  *Precision
	MaxSols    int // 0 = unbounded
	Timeout    time.Duration
	Monitor    *SearchMonitor
}

// NewSolver builds a solver for sys using ctc as the user contractor and
// bis to split undecided cells; precision terminates a branch once its
// box is at or below eps in every dimension.
func NewSolver(sys *System, ctc Contractor, bis Bisector, eps float64) *Solver {
	return &Solver{
		System:    sys,
		Ctc:       ctc,
		Bisect:    bis,
		Precision: NewPrecision(sys.NbVar(), eps),
		Monitor:   NewSearchMonitor(),
	}
}

// Solve runs the loop to completion (or to Timeout/MaxSols/ctx
// cancellation) and returns every solution box found.
func (s *Solver) Solve(ctx context.Context) ([]*IntervalVector, error) {
	defer s.Monitor.Finish()

	start := time.Now()
	buf := NewCellStack()
	buf.Push(NewCell(s.System.InitialBox.Clone()))

	var solutions []*IntervalVector
	for !buf.Empty() {
		if err := ctx.Err(); err != nil {
			return solutions, fmt.Errorf("%w: %v", ErrTimeOut, err)
		}
		if s.Timeout > 0 && time.Since(start) > s.Timeout {
			return solutions, ErrTimeOut
		}

		c := buf.Pop()
		s.Monitor.RecordCell()

		if err := s.Ctc.Contract(c.Box); err != nil {
			s.Monitor.RecordDiscard()
			continue
		}

		precBox := c.Box.Clone()
		if err := s.Precision.Contract(precBox); err != nil {
			solutions = append(solutions, c.Box.Clone())
			s.Monitor.RecordSolution()
			if s.MaxSols > 0 && len(solutions) >= s.MaxSols {
				return solutions, nil
			}
			continue
		}

		left, right, err := s.Bisect.Bisect(c)
		if err != nil {
			// Not bisectable at float granularity but still above
			// precision: treat conservatively as a solution, since no
			// further contraction is possible.
			solutions = append(solutions, c.Box.Clone())
			s.Monitor.RecordSolution()
			continue
		}
		buf.Push(left)
		buf.Push(right)
	}
	return solutions, nil
}
