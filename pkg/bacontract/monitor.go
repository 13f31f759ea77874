package bacontract

import (
	"sync/atomic"
	"time"
)

// SearchStats holds lock-free statistics about one Solver/Optimizer run,
// collected via atomic instructions so the monitor can be read
// concurrently with a running search (e.g. by a progress reporter) even
// though the search itself is single-threaded (spec §5).
type SearchStats struct {
	CellsProcessed int64
	CellsDiscarded int64
	SolutionsFound int64
	MaxDepth       int64
	SearchTime     time.Duration
	LoupUpdates    int64
}

// SearchMonitor accumulates SearchStats over the lifetime of a Solver or
// Optimizer loop. A nil *SearchMonitor is valid and every method becomes
// a no-op, so callers that don't care about telemetry can pass nil.
type SearchMonitor struct {
	stats     SearchStats
	startTime time.Time
}

// NewSearchMonitor starts a monitor with its clock running.
func NewSearchMonitor() *SearchMonitor {
	return &SearchMonitor{startTime: time.Now()}
}

// Stats returns a consistent snapshot of the counters so far.
func (m *SearchMonitor) Stats() *SearchStats {
	if m == nil {
		return nil
	}
	return &SearchStats{
		CellsProcessed: atomic.LoadInt64(&m.stats.CellsProcessed),
		CellsDiscarded: atomic.LoadInt64(&m.stats.CellsDiscarded),
		SolutionsFound: atomic.LoadInt64(&m.stats.SolutionsFound),
		MaxDepth:       atomic.LoadInt64(&m.stats.MaxDepth),
		SearchTime:     m.stats.SearchTime,
		LoupUpdates:    atomic.LoadInt64(&m.stats.LoupUpdates),
	}
}

func (m *SearchMonitor) RecordCell() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.stats.CellsProcessed, 1)
}

func (m *SearchMonitor) RecordDiscard() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.stats.CellsDiscarded, 1)
}

func (m *SearchMonitor) RecordSolution() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.stats.SolutionsFound, 1)
}

func (m *SearchMonitor) RecordLoupUpdate() {
	if m == nil {
		return
	}
	atomic.AddInt64(&m.stats.LoupUpdates, 1)
}

func (m *SearchMonitor) RecordDepth(depth int) {
	if m == nil {
		return
	}
	d := int64(depth)
	for {
		old := atomic.LoadInt64(&m.stats.MaxDepth)
		if d <= old || atomic.CompareAndSwapInt64(&m.stats.MaxDepth, old, d) {
			return
		}
	}
}

// Finish stamps the elapsed wall time; call once the loop returns.
func (m *SearchMonitor) Finish() {
	if m == nil {
		return
	}
	m.stats.SearchTime = time.Since(m.startTime)
}
