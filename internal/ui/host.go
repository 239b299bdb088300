package ui

import (
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"

	"lazypager/internal/domain"
	"lazypager/internal/logging"
	"lazypager/internal/pager"
)

// Page is one materialized item held by the host
type Page struct {
	Handle pager.ViewHandle
	Item   domain.Item
	Zoom   float64
}

// Host is the terminal side of the pager. Pages are laid out edge to edge
// along the paging axis, one page per viewport, and the scroll offset is
// measured in cells.
type Host struct {
	pages  map[uuid.UUID]*Page
	order  []pager.ViewHandle
	offset [2]float64
	width  int
	height int
	live   bool
	logger *slog.Logger
}

// NewHost creates an empty host
func NewHost(logger *slog.Logger) *Host {
	return &Host{
		pages:  make(map[uuid.UUID]*Page),
		logger: logging.Default(logger).With("component", "host"),
	}
}

// Materialize implements pager.ViewHost
func (h *Host) Materialize(index int, item domain.Item) pager.ViewHandle {
	handle := pager.ViewHandle{ID: uuid.New(), Index: index}
	h.pages[handle.ID] = &Page{Handle: handle, Item: item, Zoom: 1}
	return handle
}

// Release implements pager.ViewHost
func (h *Host) Release(handle pager.ViewHandle) {
	delete(h.pages, handle.ID)
}

// RefreshContent implements pager.ViewHost
func (h *Host) RefreshContent(handle pager.ViewHandle, item domain.Item) {
	p, ok := h.pages[handle.ID]
	if !ok {
		h.logger.Debug("unknown handle", "op", "RefreshContent", "id", handle.ID, "index", handle.Index)
		return
	}
	p.Item = item
}

// Relayout implements pager.ViewHost
func (h *Host) Relayout(order []pager.ViewHandle) {
	h.order = slices.Clone(order)
}

// SetZoom implements pager.ViewHost
func (h *Host) SetZoom(handle pager.ViewHandle, zoom float64) {
	p, ok := h.pages[handle.ID]
	if !ok {
		h.logger.Debug("unknown handle", "op", "SetZoom", "id", handle.ID, "index", handle.Index)
		return
	}
	p.Zoom = zoom
}

// SetScrollOffset implements pager.ViewHost
func (h *Host) SetScrollOffset(axis pager.Axis, value float64) {
	h.offset[axis] = value
}

// ScrollOffset implements pager.ViewHost
func (h *Host) ScrollOffset(axis pager.Axis) float64 {
	return h.offset[axis]
}

// PageExtent implements pager.ViewHost
func (h *Host) PageExtent(axis pager.Axis) float64 {
	if axis == pager.Vertical {
		return float64(h.height)
	}
	return float64(h.width)
}

// IsInteractionLive implements pager.ViewHost
func (h *Host) IsInteractionLive() bool {
	return h.live
}

// SetLive marks the start or end of a drag
func (h *Host) SetLive(live bool) {
	h.live = live
}

// SetSize sets the page size in cells
func (h *Host) SetSize(width, height int) {
	h.width, h.height = width, height
}

// Size returns the page size in cells
func (h *Host) Size() (int, int) {
	return h.width, h.height
}

// Len returns the number of materialized pages
func (h *Host) Len() int {
	return len(h.pages)
}

// Visible returns the page under the offset, the page after it (or nil) and
// how far into the first page the viewport starts.
func (h *Host) Visible(axis pager.Axis) (*Page, *Page, int) {
	extent := h.PageExtent(axis)
	if len(h.order) == 0 || extent <= 0 {
		return nil, nil, 0
	}
	offset := math.Max(0, math.Min(h.offset[axis], extent*float64(len(h.order)-1)))
	slot := int(offset / extent)
	into := int(math.Round(offset - float64(slot)*extent))
	if into >= int(extent) {
		slot, into = slot+1, 0
	}
	slot = min(slot, len(h.order)-1)

	first := h.pages[h.order[slot].ID]
	var second *Page
	if slot+1 < len(h.order) {
		second = h.pages[h.order[slot+1].ID]
	}
	return first, second, into
}
