package bacontract

import "fmt"

// sentinel marks a slot as "not a member"; no valid element index can ever
// equal it because indices are restricted to [0, n).
const sentinel = -1

// IntList is a set S ⊆ {0..n-1} held in insertion order via an implicit
// doubly-linked list over two parallel slices: x is a member when
// next[x] != sentinel or x is the tail (whose next is always sentinel).
// Every operation is O(1), matching the Domain
// family's preference for bitset/array representations over pointer
// structures (see BitSetDomain in the constraint-domain package this
// engine grew out of).
type IntList struct {
	n        int
	next     []int
	prev     []int
	head     int
	tail     int
	size     int
	circular bool
}

// NewIntList builds an empty sublist over the universe {0..n-1}.
func NewIntList(n int, circular bool) *IntList {
	next := make([]int, n)
	prev := make([]int, n)
	for i := range next {
		next[i] = sentinel
		prev[i] = sentinel
	}
	return &IntList{n: n, next: next, prev: prev, head: sentinel, tail: sentinel, circular: circular}
}

// Size returns the current number of members.
func (l *IntList) Size() int { return l.size }

// Contains reports whether x is currently a member.
func (l *IntList) Contains(x int) bool {
	if x < 0 || x >= l.n {
		return false
	}
	return l.next[x] != sentinel || x == l.tail
}

// First returns the first element, or sentinel if the list is empty.
func (l *IntList) First() int { return l.head }

// Last returns the last element, or sentinel if the list is empty.
func (l *IntList) Last() int { return l.tail }

// Next returns the successor of x. For a non-circular list, walking past
// the tail returns ErrOutOfBounds.
func (l *IntList) Next(x int) (int, error) {
	if err := l.checkMember(x); err != nil {
		return sentinel, err
	}
	if x == l.tail {
		if l.circular {
			return l.head, nil
		}
		return sentinel, fmt.Errorf("%w: next(%d) past non-circular tail", ErrOutOfBounds, x)
	}
	return l.next[x], nil
}

// Prev returns the predecessor of x. For a non-circular list, walking
// before the head returns ErrOutOfBounds.
func (l *IntList) Prev(x int) (int, error) {
	if err := l.checkMember(x); err != nil {
		return sentinel, err
	}
	if x == l.head {
		if l.circular {
			return l.tail, nil
		}
		return sentinel, fmt.Errorf("%w: prev(%d) before non-circular head", ErrOutOfBounds, x)
	}
	return l.prev[x], nil
}

// AddHead inserts x at the front. Returns ErrRepetition if x is already a
// member, ErrInvalidValue if out of range.
func (l *IntList) AddHead(x int) error {
	if err := l.checkRange(x); err != nil {
		return err
	}
	if l.Contains(x) {
		return fmt.Errorf("%w: %d", ErrRepetition, x)
	}
	if l.size == 0 {
		l.head, l.tail = x, x
		l.next[x], l.prev[x] = sentinel, sentinel
	} else {
		l.prev[l.head] = x
		l.next[x] = l.head
		l.prev[x] = sentinel
		l.head = x
	}
	l.size++
	return nil
}

// AddTail inserts x at the back.
func (l *IntList) AddTail(x int) error {
	if err := l.checkRange(x); err != nil {
		return err
	}
	if l.Contains(x) {
		return fmt.Errorf("%w: %d", ErrRepetition, x)
	}
	if l.size == 0 {
		l.head, l.tail = x, x
		l.next[x], l.prev[x] = sentinel, sentinel
	} else {
		l.next[l.tail] = x
		l.prev[x] = l.tail
		l.next[x] = sentinel
		l.tail = x
	}
	l.size++
	return nil
}

// InsertAfter inserts y immediately after x, which must already be a
// member.
func (l *IntList) InsertAfter(x, y int) error {
	if err := l.checkMember(x); err != nil {
		return err
	}
	if err := l.checkRange(y); err != nil {
		return err
	}
	if l.Contains(y) {
		return fmt.Errorf("%w: %d", ErrRepetition, y)
	}
	succ := l.next[x]
	l.next[x] = y
	l.prev[y] = x
	l.next[y] = succ
	if succ != sentinel {
		l.prev[succ] = y
	} else {
		l.tail = y
	}
	l.size++
	return nil
}

// Remove deletes x and returns its successor (sentinel if x was the tail
// of a non-circular list, or if the list becomes empty).
func (l *IntList) Remove(x int) (int, error) {
	if err := l.checkMember(x); err != nil {
		return sentinel, err
	}
	pred, succ := l.prev[x], l.next[x]

	if x == l.head {
		l.head = succ
	} else {
		l.next[pred] = succ
	}
	if x == l.tail {
		l.tail = pred
	} else {
		l.prev[succ] = pred
	}
	l.next[x] = sentinel
	l.prev[x] = sentinel
	l.size--

	if l.size == 0 {
		return sentinel, nil
	}
	if succ != sentinel {
		return succ, nil
	}
	if l.circular {
		return l.head, nil
	}
	return sentinel, nil
}

// Reorder makes newFirst the head of the list, rotating the existing
// chain around it. newFirst must already be a member; the list must be
// circular (a non-circular reorder would change which elements OutOfBounds
// walks reach, silently altering iteration semantics).
func (l *IntList) Reorder(newFirst int) error {
	if err := l.checkMember(newFirst); err != nil {
		return err
	}
	if !l.circular {
		return fmt.Errorf("%w: reorder requires a circular list", ErrInvalidValue)
	}
	if newFirst == l.head {
		return nil
	}
	// Close the chain into a ring, then cut it just before newFirst.
	l.next[l.tail] = l.head
	l.prev[l.head] = l.tail
	newTail := l.prev[newFirst]
	l.next[newTail] = sentinel
	l.prev[newFirst] = sentinel
	l.head, l.tail = newFirst, newTail
	return nil
}

func (l *IntList) checkRange(x int) error {
	if x < 0 || x >= l.n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidValue, x, l.n)
	}
	return nil
}

func (l *IntList) checkMember(x int) error {
	if err := l.checkRange(x); err != nil {
		return err
	}
	if !l.Contains(x) {
		return fmt.Errorf("%w: %d", ErrNotAnElement, x)
	}
	return nil
}

// Values returns every member in list order; for diagnostics and tests,
// not on any hot path.
func (l *IntList) Values() []int {
	out := make([]int, 0, l.size)
	if l.size == 0 {
		return out
	}
	x := l.head
	for {
		out = append(out, x)
		if x == l.tail {
			break
		}
		x = l.next[x]
	}
	return out
}
