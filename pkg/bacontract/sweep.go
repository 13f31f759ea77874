package bacontract

// Sweep implements inflation-based pruning (spec component §4.3): starting
// from a corner point of a working box, it repeatedly asks a WakingList
// for a candidate constraint, evaluates the constraint at the point, and
// when the point lands in the constraint's forbidden half-plane, projects
// backward through the constraint to a "forbidden box". A forbidden box
// wide enough in every dimension lets one face of the working area be
// replaced by its complement along a caller-chosen dimension order. The
// projection starts from the point box itself and is not inflated, so
// the forbidden box has zero width: whenever jumpRatio and the original
// box's diameters are positive, no candidate passes the width test and
// Run returns the working box unchanged.
type Sweep struct {
	constraints []*NumConstraint
	waking      *WakingList
	order       []int
	jumpRatio   float64
}

// NewSweep builds a sweep over the given constraints. order is a
// permutation of [0, nbVar) naming the dimension priority: order[0] is
// the main sweeping direction (its jumps count as MAIN_JUMP).
func NewSweep(constraints []*NumConstraint, order []int, jumpRatio float64) *Sweep {
	return &Sweep{
		constraints: constraints,
		waking:      NewWakingList(len(constraints)),
		order:       order,
		jumpRatio:   jumpRatio,
	}
}

// Run sweeps the working box starting from corner point pt (len == box
// dimension), shrinking the face along s.order[0] toward the opposite
// bound of original. It returns the narrowed box, or (nil, true) if the
// box was proven empty via a MAIN_JUMP that consumed the whole span.
func (s *Sweep) Run(working *IntervalVector, original *IntervalVector, pt []float64) (*IntervalVector, bool) {
	initialDiam := make([]float64, working.Size())
	for i := 0; i < working.Size(); i++ {
		initialDiam[i] = original.At(i).Diam()
	}

	box := working.Clone()
	candidate := s.waking.FirstCandidate()
	for candidate != sentinel {
		c := s.constraints[candidate]
		result, emptied := s.tryCandidate(c, box, original, pt, initialDiam)
		if emptied {
			return nil, true
		}
		candidate = s.waking.NextCandidate(result)
	}
	return box, false
}

// tryCandidate evaluates one constraint at pt, and on an accepted
// forbidden-box projection, cuts box along the first order[] dimension
// whose forbidden side touches a current bound of box. It returns the
// JumpResult to report to the WakingList and whether the main face
// collapsed the box to empty.
func (s *Sweep) tryCandidate(c *NumConstraint, box *IntervalVector, original *IntervalVector, pt []float64, initialDiam []float64) (JumpResult, bool) {
	ptBox := pointBox(pt)
	y := c.F.Eval(ptBox)
	forbidden := c.Forbidden()
	if !forbidden.Contains(y.Mid()) {
		return NoJump, false
	}

	forbiddenBox := ptBox.Clone()
	if err := c.F.Backward(forbidden, forbiddenBox); err != nil {
		return NoJump, false
	}

	for i := 0; i < forbiddenBox.Size(); i++ {
		minWidth := s.jumpRatio * initialDiam[i]
		if forbiddenBox.At(i).Diam() < minWidth {
			return NoJump, false
		}
	}

	for k, d := range s.order {
		if applyFaceCut(box, forbiddenBox, d) {
			if k == 0 {
				if box.At(d).Diam() == 0 && closeTo(box.At(d).Lb(), original.At(d).Ub()) {
					box.SetEmpty()
					return MainJump, true
				}
				return MainJump, false
			}
			return Jump, false
		}
	}
	return NoJump, false
}

// applyFaceCut intersects box[d] with the complement of forbiddenBox[d]
// on the side that touches box[d]'s current bound, returning true if a
// cut was actually made.
func applyFaceCut(box *IntervalVector, forbiddenBox *IntervalVector, d int) bool {
	cur := box.At(d)
	f := forbiddenBox.At(d)
	if closeTo(f.Lb(), cur.Lb()) && f.Ub() < cur.Ub() {
		box.Set(d, NewInterval(f.Ub(), cur.Ub()))
		return true
	}
	if closeTo(f.Ub(), cur.Ub()) && f.Lb() > cur.Lb() {
		box.Set(d, NewInterval(cur.Lb(), f.Lb()))
		return true
	}
	return false
}

func closeTo(a, b float64) bool {
	return a == b
}

func pointBox(pt []float64) *IntervalVector {
	comps := make([]Interval, len(pt))
	for i, v := range pt {
		comps[i] = Degenerate(v)
	}
	return NewIntervalVector(comps)
}
