package pager

import (
	"math"
	"time"
)

// OffsetToIndex maps a scroll offset onto the loaded window. The relative
// page is rounded and clamped to the window so the result is always a loaded
// index. It reports false for an empty window or an unknown page extent.
func OffsetToIndex(offset, pageExtent float64, loaded []int) (int, bool) {
	if len(loaded) == 0 || pageExtent <= 0 {
		return 0, false
	}
	relative := int(math.Round(offset / pageExtent))
	if relative < 0 {
		relative = 0
	}
	if relative >= len(loaded) {
		relative = len(loaded) - 1
	}
	return loaded[relative], true
}

// IndexToOffset is the inverse of OffsetToIndex for a loaded index
func IndexToOffset(index int, pageExtent float64, loaded []int) (float64, bool) {
	for slot, idx := range loaded {
		if idx == index {
			return float64(slot) * pageExtent, true
		}
	}
	return 0, false
}

// SettleDetector reports when position updates have stopped arriving.
//
// Every update takes a new generation and schedules a check one interval
// later. A check only fires when no newer update has arrived in between and
// the interaction is no longer live, so a burst of updates collapses into a
// single settle without cancelling timers.
type SettleDetector struct {
	sched      Scheduler
	interval   time.Duration
	live       func() bool
	onSettle   func()
	generation uint64
	lastOffset float64
}

// NewSettleDetector creates a detector that calls onSettle on the timeline
func NewSettleDetector(sched Scheduler, interval time.Duration, live func() bool, onSettle func()) *SettleDetector {
	return &SettleDetector{
		sched:    sched,
		interval: interval,
		live:     live,
		onSettle: onSettle,
	}
}

// Observe records a position update and schedules a settle check
func (s *SettleDetector) Observe(offset float64) {
	s.generation++
	s.lastOffset = offset
	captured := s.generation
	s.sched.After(s.interval, func() {
		if captured != s.generation {
			return
		}
		if s.live != nil && s.live() {
			return
		}
		s.onSettle()
	})
}

// Cancel invalidates every pending check
func (s *SettleDetector) Cancel() {
	s.generation++
}

// LastOffset returns the most recently observed offset
func (s *SettleDetector) LastOffset() float64 {
	return s.lastOffset
}
