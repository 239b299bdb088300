package pager

import (
	"fmt"
	"slices"
	"sort"
)

// WindowEntry is one materialized element of the window
type WindowEntry[T any] struct {
	Index   int
	Element T
	Handle  ViewHandle
	// Zoom is transient per-view state, reset when the pager settles
	Zoom float64
}

// WindowState is the ordered set of loaded entries. Entries are kept sorted
// by index with no duplicates.
type WindowState[T any] struct {
	entries []*WindowEntry[T]
}

// Len returns the number of loaded entries
func (w *WindowState[T]) Len() int {
	return len(w.entries)
}

// Empty reports whether nothing is loaded
func (w *WindowState[T]) Empty() bool {
	return len(w.entries) == 0
}

// Indices returns the loaded indices in order
func (w *WindowState[T]) Indices() []int {
	out := make([]int, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Index
	}
	return out
}

// Handles returns the view handles in window order
func (w *WindowState[T]) Handles() []ViewHandle {
	out := make([]ViewHandle, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Handle
	}
	return out
}

// First returns the entry nearest the origin
func (w *WindowState[T]) First() (*WindowEntry[T], bool) {
	if len(w.entries) == 0 {
		return nil, false
	}
	return w.entries[0], true
}

// Last returns the entry furthest from the origin
func (w *WindowState[T]) Last() (*WindowEntry[T], bool) {
	if len(w.entries) == 0 {
		return nil, false
	}
	return w.entries[len(w.entries)-1], true
}

// Slot returns the position of index within the window, or -1
func (w *WindowState[T]) Slot(index int) int {
	i := sort.Search(len(w.entries), func(i int) bool {
		return w.entries[i].Index >= index
	})
	if i < len(w.entries) && w.entries[i].Index == index {
		return i
	}
	return -1
}

// Get returns the entry for index
func (w *WindowState[T]) Get(index int) (*WindowEntry[T], bool) {
	slot := w.Slot(index)
	if slot < 0 {
		return nil, false
	}
	return w.entries[slot], true
}

// At returns the entry at a window slot
func (w *WindowState[T]) At(slot int) *WindowEntry[T] {
	return w.entries[slot]
}

func (w *WindowState[T]) pushFront(e *WindowEntry[T]) {
	w.entries = slices.Insert(w.entries, 0, e)
}

func (w *WindowState[T]) pushBack(e *WindowEntry[T]) {
	w.entries = append(w.entries, e)
}

// remove drops the entry for index and reports the slot it occupied
func (w *WindowState[T]) remove(index int) (*WindowEntry[T], int, bool) {
	slot := w.Slot(index)
	if slot < 0 {
		return nil, -1, false
	}
	e := w.entries[slot]
	w.entries = slices.Delete(w.entries, slot, slot+1)
	return e, slot, true
}

// clear drops every entry and returns them in order
func (w *WindowState[T]) clear() []*WindowEntry[T] {
	out := w.entries
	w.entries = nil
	return out
}

// check verifies ordering and containment against the current index
func (w *WindowState[T]) check(current, length, radius int) error {
	if length == 0 {
		if len(w.entries) != 0 {
			return fmt.Errorf("%w: %d entries loaded for an empty sequence", ErrInvariant, len(w.entries))
		}
		return nil
	}
	if current < 0 || current >= length {
		return fmt.Errorf("%w: current index %d outside [0,%d)", ErrInvariant, current, length)
	}
	prev := -1
	for _, e := range w.entries {
		if e.Index <= prev {
			return fmt.Errorf("%w: index %d follows %d", ErrInvariant, e.Index, prev)
		}
		if e.Index >= length {
			return fmt.Errorf("%w: index %d beyond length %d", ErrInvariant, e.Index, length)
		}
		if abs(e.Index-current) > radius {
			return fmt.Errorf("%w: index %d outside radius %d of %d", ErrInvariant, e.Index, radius, current)
		}
		prev = e.Index
	}
	return nil
}
