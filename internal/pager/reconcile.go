package pager

import (
	"errors"
	"slices"
)

// ErrInvariant reports a window that violates the reconciler's guarantees.
// It always indicates a bug in the engine, never bad input.
var ErrInvariant = errors.New("pager invariant violated")

// Edge is the side of the window a load attaches to
type Edge int

const (
	// EdgeBack appends after the last entry
	EdgeBack Edge = iota
	// EdgeFront prepends before the first entry
	EdgeFront
)

func (e Edge) String() string {
	if e == EdgeFront {
		return "front"
	}
	return "back"
}

// Load asks for one index to be materialized at an edge
type Load struct {
	Index int
	Edge  Edge
}

// Delta is the work needed to bring a window in line with its center.
// Evicts apply before Loads.
type Delta struct {
	Loads  []Load
	Evicts []int
}

// Empty reports whether the delta changes nothing
func (d Delta) Empty() bool {
	return len(d.Loads) == 0 && len(d.Evicts) == 0
}

// Indices returns the indices to load in emission order
func (d Delta) Indices() []int {
	out := make([]int, len(d.Loads))
	for i, l := range d.Loads {
		out[i] = l.Index
	}
	return out
}

// Plan computes the loads and evictions that bring loaded (sorted ascending)
// in line with current, length and radius.
//
// An empty window, or one that shares nothing with the new band, is filled in
// bulk: the center and its neighbours first, far edges last. Otherwise the
// surviving band is extended one index at a time from each edge. Plan is
// idempotent: applying its result and planning again yields an empty Delta.
func Plan(current, length, radius int, loaded []int) Delta {
	var d Delta
	if length <= 0 {
		d.Evicts = slices.Clone(loaded)
		return d
	}
	if radius < 0 {
		radius = 0
	}
	current = Clamp(current, length)

	kept := make([]int, 0, len(loaded))
	for _, idx := range loaded {
		if idx >= length || abs(idx-current) > radius {
			d.Evicts = append(d.Evicts, idx)
			continue
		}
		kept = append(kept, idx)
	}

	if len(kept) == 0 {
		start := max(0, current-radius)
		end := min(length-1, current+radius)
		for i := current - 1; i >= start; i-- {
			d.Loads = append(d.Loads, Load{Index: i, Edge: EdgeFront})
		}
		for i := current; i <= end; i++ {
			d.Loads = append(d.Loads, Load{Index: i, Edge: EdgeBack})
		}
		return d
	}

	last := kept[len(kept)-1]
	for last < length-1 && last-current < radius {
		last++
		d.Loads = append(d.Loads, Load{Index: last, Edge: EdgeBack})
	}
	first := kept[0]
	for first > 0 && current-first < radius {
		first--
		d.Loads = append(d.Loads, Load{Index: first, Edge: EdgeFront})
	}
	return d
}

// Clamp limits index to [0, length-1]; an empty sequence clamps to 0
func Clamp(index, length int) int {
	if length <= 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
