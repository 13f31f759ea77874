package bacontract

// JumpResult is the outcome a caller reports back to a WakingList after
// trying the candidate constraint returned by FirstCandidate/NextCandidate
// against the current point (see Sweep in sweep.go).
type JumpResult int

const (
	// NoJump means the candidate produced no useful contraction.
	NoJump JumpResult = iota
	// Jump means the candidate pruned a face of the working area.
	Jump
	// MainJump means the candidate pruned the main face (order[0]),
	// the strongest possible outcome.
	MainJump
)

// maxLoop bounds how many consecutive jumps a single constraint may
// trigger before the active-list pass moves on, preventing one
// constraint from starving the others.
const maxLoop = 8

// WakingList partitions {0..m-1} into an active list and a reserve list,
// promoting constraints that produced useful work (Jump/MainJump) into
// the active list and demoting inactive ones back to reserve, so that
// Sweep spends most of its time retrying constraints that are currently
// paying off.
type WakingList struct {
	m       int
	active  *IntList
	reserve *IntList
	tag     []int

	mainJumpNum     int
	currentMainJump int

	exploringActive bool
	cursor          int
	lastActivated   int
	jumpStreak      int
	lastJumper      int
	sawJumpThisPass bool
	reserveStart    int
}

// NewWakingList builds a WakingList over m constraint ids, all initially
// in the reserve.
func NewWakingList(m int) *WakingList {
	w := &WakingList{
		m:             m,
		active:        NewIntList(m, true),
		reserve:       NewIntList(m, true),
		tag:           make([]int, m),
		lastActivated: sentinel,
		lastJumper:    sentinel,
		cursor:        sentinel,
		reserveStart:  sentinel,
	}
	for i := 0; i < m; i++ {
		_ = w.reserve.AddTail(i)
	}
	return w
}

// MainJumpNum reports how many MAIN_JUMPs have occurred so far.
func (w *WakingList) MainJumpNum() int { return w.mainJumpNum }

// IsActive reports whether id is currently in the active list.
func (w *WakingList) IsActive(id int) bool { return w.active.Contains(id) }

// FirstCandidate resets the round-robin state and returns the head of
// the reserve list (sentinel if both lists are empty, which only happens
// when m == 0).
func (w *WakingList) FirstCandidate() int {
	w.exploringActive = false
	w.jumpStreak = 0
	w.lastJumper = sentinel
	w.sawJumpThisPass = false

	if w.reserve.Size() > 0 {
		w.cursor = w.reserve.First()
		w.reserveStart = w.cursor
		return w.cursor
	}
	if w.active.Size() > 0 {
		w.exploringActive = true
		w.cursor = w.active.First()
		return w.cursor
	}
	w.cursor = sentinel
	return sentinel
}

// NextCandidate reports the outcome of trying the current candidate and
// returns the next one to try, or sentinel when no candidate remains.
func (w *WakingList) NextCandidate(result JumpResult) int {
	if w.cursor == sentinel {
		return sentinel
	}
	if result == MainJump {
		w.mainJumpNum++
		w.currentMainJump = w.mainJumpNum
	}

	if w.exploringActive {
		return w.nextInActive(result)
	}
	return w.nextInReserve(result)
}

func (w *WakingList) nextInReserve(result JumpResult) int {
	c := w.cursor
	if result == Jump || result == MainJump {
		w.activate(c)
		w.exploringActive = true
		w.sawJumpThisPass = false
		w.cursor = w.active.First()
		return w.cursor
	}

	nxt, err := w.reserve.Next(c)
	if err != nil || nxt == w.reserveStart {
		// Reserve exhausted one full lap with no activation.
		w.cursor = sentinel
		return sentinel
	}
	w.cursor = nxt
	return nxt
}

func (w *WakingList) nextInActive(result JumpResult) int {
	c := w.cursor

	if result == NoJump {
		w.lastJumper = sentinel
		w.jumpStreak = 0
		if w.tag[c] <= w.currentMainJump {
			nxt, err := w.active.Remove(c)
			w.addToReserve(c)
			if err != nil || w.active.Size() == 0 {
				return w.fallBackToReserve()
			}
			w.cursor = nxt
			return w.checkPassEnd(nxt)
		}
		nxt, err := w.active.Next(c)
		if err != nil {
			return w.fallBackToReserve()
		}
		w.cursor = nxt
		return w.checkPassEnd(nxt)
	}

	// Jump or MainJump while already active: the constraint keeps
	// paying off; track how many times in a row it has fired.
	w.sawJumpThisPass = true
	if c == w.lastJumper {
		w.jumpStreak++
	} else {
		w.lastJumper = c
		w.jumpStreak = 1
	}
	if result == MainJump {
		w.tag[c] = w.currentMainJump + 1
	}
	if w.jumpStreak >= maxLoop {
		w.jumpStreak = 0
		w.lastJumper = sentinel
		return w.fallBackToReserve()
	}
	nxt, err := w.active.Next(c)
	if err != nil {
		return w.fallBackToReserve()
	}
	w.cursor = nxt
	return nxt
}

// checkPassEnd detects a full lap over the active list with no jump,
// and falls back to the reserve when that happens.
func (w *WakingList) checkPassEnd(nxt int) int {
	if nxt == w.active.First() && !w.sawJumpThisPass {
		return w.fallBackToReserve()
	}
	return nxt
}

func (w *WakingList) fallBackToReserve() int {
	w.exploringActive = false
	w.sawJumpThisPass = false
	if w.reserve.Size() == 0 {
		w.cursor = sentinel
		return sentinel
	}
	w.cursor = w.reserve.First()
	w.reserveStart = w.cursor
	return w.cursor
}

// activate moves c from the reserve into the active list, just after the
// last constraint activated this sweep (or at the head, the first time).
func (w *WakingList) activate(c int) {
	_, _ = w.reserve.Remove(c)
	if w.lastActivated == sentinel || !w.active.Contains(w.lastActivated) {
		_ = w.active.AddHead(c)
	} else {
		_ = w.active.InsertAfter(w.lastActivated, c)
	}
	w.lastActivated = c
	w.tag[c] = w.currentMainJump + 1
}

func (w *WakingList) addToReserve(c int) {
	_ = w.reserve.AddTail(c)
}
