package bacontract

import "container/heap"

// CellBuffer is the search frontier: it uniquely owns every live cell.
// Implementations are stack (LIFO, used by the feasibility Solver),
// FIFO, or DoubleHeap (used by the Optimizer).
type CellBuffer interface {
	Push(c *Cell)
	Pop() *Cell
	Empty() bool
	Size() int
}

// CellStack is a LIFO frontier.
type CellStack struct {
	cells []*Cell
}

// NewCellStack builds an empty stack.
func NewCellStack() *CellStack { return &CellStack{} }

func (s *CellStack) Push(c *Cell) { s.cells = append(s.cells, c) }

func (s *CellStack) Pop() *Cell {
	if len(s.cells) == 0 {
		return nil
	}
	n := len(s.cells) - 1
	c := s.cells[n]
	s.cells[n] = nil
	s.cells = s.cells[:n]
	return c
}

func (s *CellStack) Empty() bool { return len(s.cells) == 0 }
func (s *CellStack) Size() int   { return len(s.cells) }

// CellQueue is a FIFO frontier.
type CellQueue struct {
	cells []*Cell
	head  int
}

// NewCellQueue builds an empty queue.
func NewCellQueue() *CellQueue { return &CellQueue{} }

func (q *CellQueue) Push(c *Cell) { q.cells = append(q.cells, c) }

func (q *CellQueue) Pop() *Cell {
	if q.head >= len(q.cells) {
		return nil
	}
	c := q.cells[q.head]
	q.cells[q.head] = nil
	q.head++
	if q.head > 64 && q.head*2 > len(q.cells) {
		q.cells = append([]*Cell(nil), q.cells[q.head:]...)
		q.head = 0
	}
	return c
}

func (q *CellQueue) Empty() bool { return q.head >= len(q.cells) }
func (q *CellQueue) Size() int   { return len(q.cells) - q.head }

// CellCriterion ranks cells for the second heap of a DoubleHeap; the
// default is pf.ub() (least proven-range upper bound first).
type CellCriterion func(c *Cell) float64

// DefaultCriterion orders by pf.ub(), ascending.
func DefaultCriterion(c *Cell) float64 { return c.Pf.Ub() }

// DoubleHeap holds the same live cells in two min-heaps simultaneously:
// one keyed by pf.lb() (its root gives uplo, the certified global lower
// bound), one keyed by a caller criterion. Every cell is present in both
// heaps or removed from both — Pop always removes from both sides to
// preserve that invariant.
type DoubleHeap struct {
	byLb    *lbHeap
	byCrit  *critHeap
	popFrom bool // false => pop from byLb next, true => pop from byCrit next
}

// NewDoubleHeap builds an empty double heap using criterion for the
// second ordering.
func NewDoubleHeap(criterion CellCriterion) *DoubleHeap {
	if criterion == nil {
		criterion = DefaultCriterion
	}
	dh := &DoubleHeap{
		byLb:   &lbHeap{},
		byCrit: &critHeap{criterion: criterion},
	}
	heap.Init(dh.byLb)
	heap.Init(dh.byCrit)
	return dh
}

func (dh *DoubleHeap) Push(c *Cell) {
	heap.Push(dh.byLb, c)
	heap.Push(dh.byCrit, c)
}

// Pop alternates which heap supplies the next cell, removing it from
// both to maintain the sharing invariant (spec §8.5).
func (dh *DoubleHeap) Pop() *Cell {
	if dh.Empty() {
		return nil
	}
	dh.popFrom = !dh.popFrom
	var c *Cell
	if dh.popFrom {
		c = heap.Pop(dh.byLb).(*Cell)
		dh.removeFromCrit(c)
	} else {
		c = heap.Pop(dh.byCrit).(*Cell)
		dh.removeFromLb(c)
	}
	c.lbHeapIndex, c.critHeapIndex = sentinel, sentinel
	return c
}

func (dh *DoubleHeap) removeFromCrit(c *Cell) {
	if c.critHeapIndex != sentinel {
		heap.Remove(dh.byCrit, c.critHeapIndex)
	}
}

func (dh *DoubleHeap) removeFromLb(c *Cell) {
	if c.lbHeapIndex != sentinel {
		heap.Remove(dh.byLb, c.lbHeapIndex)
	}
}

func (dh *DoubleHeap) Empty() bool { return dh.byLb.Len() == 0 }
func (dh *DoubleHeap) Size() int   { return dh.byLb.Len() }

// MinLb returns the minimum pf.lb() across every live cell (the heap
// contribution to the optimizer's uplo), and false if the heap is empty.
func (dh *DoubleHeap) MinLb() (float64, bool) {
	if dh.byLb.Len() == 0 {
		return 0, false
	}
	return (*dh.byLb)[0].Pf.Lb(), true
}

// ContractByYmax discards every cell whose pf.lb() exceeds ymax — the
// "heap contraction" the optimizer performs whenever loup improves.
func (dh *DoubleHeap) ContractByYmax(ymax float64) {
	keep := make([]*Cell, 0, dh.byLb.Len())
	for _, c := range *dh.byLb {
		if c.Pf.Lb() <= ymax {
			keep = append(keep, c)
		}
	}
	*dh.byLb = nil
	*dh.byCrit = critHeap{criterion: dh.byCrit.criterion}
	for _, c := range keep {
		c.lbHeapIndex, c.critHeapIndex = sentinel, sentinel
	}
	heap.Init(dh.byLb)
	for _, c := range keep {
		heap.Push(dh.byLb, c)
		heap.Push(dh.byCrit, c)
	}
}

// lbHeap implements heap.Interface ordering by Pf.Lb(), ascending.
type lbHeap []*Cell

func (h lbHeap) Len() int            { return len(h) }
func (h lbHeap) Less(i, j int) bool  { return h[i].Pf.Lb() < h[j].Pf.Lb() }
func (h lbHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].lbHeapIndex = i
	h[j].lbHeapIndex = j
}
func (h *lbHeap) Push(x any) {
	c := x.(*Cell)
	c.lbHeapIndex = len(*h)
	*h = append(*h, c)
}
func (h *lbHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	c.lbHeapIndex = sentinel
	return c
}

// critHeap implements heap.Interface ordering by a caller criterion.
type critHeap struct {
	cells     []*Cell
	criterion CellCriterion
}

func (h critHeap) Len() int { return len(h.cells) }
func (h critHeap) Less(i, j int) bool {
	return h.criterion(h.cells[i]) < h.criterion(h.cells[j])
}
func (h critHeap) Swap(i, j int) {
	h.cells[i], h.cells[j] = h.cells[j], h.cells[i]
	h.cells[i].critHeapIndex = i
	h.cells[j].critHeapIndex = j
}
func (h *critHeap) Push(x any) {
	c := x.(*Cell)
	c.critHeapIndex = len(h.cells)
	h.cells = append(h.cells, c)
}
func (h *critHeap) Pop() any {
	old := h.cells
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	h.cells = old[:n-1]
	c.critHeapIndex = sentinel
	return c
}
