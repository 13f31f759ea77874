package bacontract

// Cell is one node of the branch-and-contract search tree: a box plus
// whatever scratch state bisectors and the optimizer attach to it. Cells
// are created at the root and at each successful bisection, and destroyed
// once popped and either solved, discarded, or replaced — they never
// outlive the frontier that owns them.
type Cell struct {
	Box *IntervalVector

	// LastVar is RoundRobin's memory of which dimension it split last;
	// -1 until the first bisection touches this cell's lineage.
	LastVar int

	// Pf is the proven enclosure of the objective over Box (optimizer
	// cells only; zero value is fine for plain feasibility search).
	Pf Interval
	// Pu is true once Box has been proven entirely feasible.
	Pu bool
	// Loup is the incumbent upper bound at the time this cell was
	// created, inherited by children at each bisection.
	Loup float64

	// heap back-pointers: index of this cell within each of the
	// DoubleHeap's two underlying heaps, or -1 if not present in that
	// heap (e.g. already popped from it).
	lbHeapIndex  int
	critHeapIndex int
}

// NewCell creates a root cell over box.
func NewCell(box *IntervalVector) *Cell {
	return &Cell{Box: box, LastVar: sentinel, lbHeapIndex: sentinel, critHeapIndex: sentinel}
}

// Clone produces an independent child cell sharing no mutable state with
// its parent, used by bisection to build the two children.
func (c *Cell) Clone(box *IntervalVector) *Cell {
	return &Cell{
		Box:           box,
		LastVar:       c.LastVar,
		Pf:            c.Pf,
		Pu:            c.Pu,
		Loup:          c.Loup,
		lbHeapIndex:   sentinel,
		critHeapIndex: sentinel,
	}
}
