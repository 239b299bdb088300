package pager

import (
	"time"

	"github.com/google/uuid"
)

// SequenceSource exposes the backing data. It is owned by the caller and only
// read by the pager.
type SequenceSource[T any] interface {
	// Len returns the current number of elements
	Len() int
	// ElementAt returns the element at index, or false when the source has no
	// element there (for example after a concurrent removal)
	ElementAt(index int) (T, bool)
}

// ViewHandle identifies a materialized view inside the host. It is a plain
// value; the host resolves it, the pager never reaches back through it.
type ViewHandle struct {
	ID    uuid.UUID
	Index int
}

// ViewHost is the rendering side of the pager.
type ViewHost[T any] interface {
	// Materialize creates the view for an element
	Materialize(index int, element T) ViewHandle
	// Release destroys a view immediately
	Release(handle ViewHandle)
	// RefreshContent swaps the content of an existing view in place
	RefreshContent(handle ViewHandle, element T)
	// Relayout anchors views in order from the window origin
	Relayout(order []ViewHandle)
	// SetZoom applies transient zoom state to a view
	SetZoom(handle ViewHandle, zoom float64)

	SetScrollOffset(axis Axis, value float64)
	ScrollOffset(axis Axis) float64
	// PageExtent is the size of one page along axis; zero while unknown
	PageExtent(axis Axis) float64
	// IsInteractionLive reports whether the user is actively dragging
	IsInteractionLive() bool
}

// Scheduler defers work onto the pager's timeline.
type Scheduler interface {
	// Defer runs fn on the next turn of the timeline
	Defer(fn func())
	// After runs fn on the timeline once d has elapsed
	After(d time.Duration, fn func())
}

// Listener receives the pager's outbound signals. Signals are fire and forget.
type Listener interface {
	CurrentIndexChanged(index int)
	Settled(index int)
	WindowEmptied()
}

// ListenerFuncs adapts plain functions to a Listener; nil fields are skipped.
type ListenerFuncs struct {
	OnCurrentIndexChanged func(index int)
	OnSettled             func(index int)
	OnWindowEmptied       func()
}

func (l ListenerFuncs) CurrentIndexChanged(index int) {
	if l.OnCurrentIndexChanged != nil {
		l.OnCurrentIndexChanged(index)
	}
}

func (l ListenerFuncs) Settled(index int) {
	if l.OnSettled != nil {
		l.OnSettled(index)
	}
}

func (l ListenerFuncs) WindowEmptied() {
	if l.OnWindowEmptied != nil {
		l.OnWindowEmptied()
	}
}

// SliceSource is a SequenceSource over an in-memory slice
type SliceSource[T any] struct {
	Items []T
}

// Len implements SequenceSource
func (s *SliceSource[T]) Len() int {
	return len(s.Items)
}

// ElementAt implements SequenceSource
func (s *SliceSource[T]) ElementAt(index int) (T, bool) {
	var zero T
	if index < 0 || index >= len(s.Items) {
		return zero, false
	}
	return s.Items[index], true
}
