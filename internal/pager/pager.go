package pager

import (
	"fmt"
	"log/slog"
	"math"

	"lazypager/internal/logging"
)

// Option configures a Pager
type Option func(*options)

type options struct {
	logger   *slog.Logger
	listener Listener
	initial  int
}

// WithLogger sets the logger used for window mutations
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithListener registers the receiver of outbound signals
func WithListener(l Listener) Option {
	return func(o *options) { o.listener = l }
}

// WithInitialIndex sets the index the window starts centered on
func WithInitialIndex(index int) Option {
	return func(o *options) { o.initial = index }
}

// Pager keeps a window of materialized views centered on the current index.
type Pager[T any] struct {
	cfg      Config
	src      SequenceSource[T]
	host     ViewHost[T]
	sched    Scheduler
	logger   *slog.Logger
	listener Listener

	window  WindowState[T]
	current int
	// length the window was last reconciled against
	length int

	laidOut       bool
	transitioning bool

	// scroll updates are ignored while detached; a deferred task re-attaches
	// after every window mutation
	detached       bool
	reattachQueued bool

	settle *SettleDetector
}

// New creates a pager and performs the initial fill
func New[T any](cfg Config, src SequenceSource[T], host ViewHost[T], sched Scheduler, opts ...Option) (*Pager[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pager config: %w", err)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.listener == nil {
		o.listener = ListenerFuncs{}
	}

	p := &Pager[T]{
		cfg:      cfg,
		src:      src,
		host:     host,
		sched:    sched,
		logger:   logging.Default(o.logger).With("component", "pager"),
		listener: o.listener,
	}
	p.settle = NewSettleDetector(sched, SettleInterval, host.IsInteractionLive, p.onSettled)

	length := src.Len()
	p.current = Clamp(o.initial, length)
	p.logger.Debug("pager created",
		"initial", p.current, "length", length,
		"direction", cfg.Direction, "radius", cfg.PreloadRadius)
	p.reconcile(length)
	return p, nil
}

// Config returns the session configuration
func (p *Pager[T]) Config() Config {
	return p.cfg
}

// Current returns the authoritative current index
func (p *Pager[T]) Current() int {
	return p.current
}

// Len returns the length of the backing sequence
func (p *Pager[T]) Len() int {
	return p.src.Len()
}

// Loaded returns the loaded indices in window order
func (p *Pager[T]) Loaded() []int {
	return p.window.Indices()
}

// Entry returns a copy of the loaded entry for index
func (p *Pager[T]) Entry(index int) (WindowEntry[T], bool) {
	e, ok := p.window.Get(index)
	if !ok {
		return WindowEntry[T]{}, false
	}
	return *e, true
}

// Entries returns copies of every loaded entry in window order
func (p *Pager[T]) Entries() []WindowEntry[T] {
	out := make([]WindowEntry[T], 0, p.window.Len())
	for slot := 0; slot < p.window.Len(); slot++ {
		out = append(out, *p.window.At(slot))
	}
	return out
}

// ScrollAttached reports whether scroll updates are currently processed
func (p *Pager[T]) ScrollAttached() bool {
	return !p.detached
}

// CheckInvariants verifies the window against the last reconciled length
func (p *Pager[T]) CheckInvariants() error {
	return p.window.check(p.current, p.length, p.cfg.PreloadRadius)
}

// GoToIndex moves the window to target and aligns the viewport on it without
// animation. Out of range targets are clamped.
func (p *Pager[T]) GoToIndex(target int) {
	p.logger.Debug("go to index", "target", target, "current", p.current)
	p.update(target, p.src.Len())
	p.alignViewport()
}

// Advance moves one page forward and reports whether the index changed
func (p *Pager[T]) Advance() bool {
	old := p.current
	p.GoToIndex(p.current + 1)
	return p.current != old
}

// Retreat moves one page back and reports whether the index changed
func (p *Pager[T]) Retreat() bool {
	old := p.current
	p.GoToIndex(p.current - 1)
	return p.current != old
}

// Reload refreshes every loaded view in place and reconciles
func (p *Pager[T]) Reload() {
	p.logger.Debug("reload", "loaded", p.window.Len())
	for slot := 0; slot < p.window.Len(); slot++ {
		p.refresh(p.window.At(slot))
	}
	p.update(p.current, p.src.Len())
}

// OnExternalLengthChange reconciles after the backing sequence grew or shrank
func (p *Pager[T]) OnExternalLengthChange(newLength int) {
	if newLength < 0 {
		newLength = 0
	}
	if p.window.Empty() && newLength == 0 {
		p.current = 0
		p.length = 0
		return
	}
	p.logger.Debug("length changed", "from", p.length, "to", newLength)
	wasEmpty := p.window.Empty()
	if p.update(p.current, newLength) || wasEmpty {
		p.alignViewport()
	}
}

// OnExternalDataIdentityChange handles a replaced backing sequence. Surviving
// entries keep their views and only have their content refreshed.
func (p *Pager[T]) OnExternalDataIdentityChange() {
	before := p.window.Indices()
	length := p.src.Len()
	p.logger.Debug("data identity changed", "length", length)
	changed := p.update(p.current, length)
	for _, idx := range before {
		if e, ok := p.window.Get(idx); ok {
			p.refresh(e)
		}
	}
	if changed {
		p.alignViewport()
	}
}

// Sync brings the pager in line with a host-side data update carrying a
// requested page. An empty sequence resets to 0, a differing page jumps there
// and a changed count alone reloads in place.
func (p *Pager[T]) Sync(requested int) {
	length := p.src.Len()
	needReload := length != p.length
	if length == 0 {
		p.update(0, 0)
		p.Reload()
		return
	}
	clamped := Clamp(requested, length)
	switch {
	case clamped != p.current:
		p.GoToIndex(clamped)
		p.Reload()
	case needReload:
		p.Reload()
	}
}

// OnViewportSize realigns the viewport the first time a size is available
// and on every size change during a size transition.
func (p *Pager[T]) OnViewportSize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	if !p.laidOut {
		p.laidOut = true
		p.alignViewport()
		return
	}
	if p.transitioning {
		p.alignViewport()
	}
}

// BeginSizeTransition marks the start of a rotation or resize. Scroll updates
// stop remapping the index until the transition ends.
func (p *Pager[T]) BeginSizeTransition() {
	p.transitioning = true
}

// EndSizeTransition finishes a size transition and realigns on the next turn
func (p *Pager[T]) EndSizeTransition() {
	p.transitioning = false
	p.sched.Defer(func() {
		p.GoToIndex(p.current)
	})
}

// Transitioning reports whether a size transition is running
func (p *Pager[T]) Transitioning() bool {
	return p.transitioning
}

// OnScroll handles a scroll offset reported by the host. Outside of a live
// drag the offset selects the current index; every update feeds settle
// detection.
func (p *Pager[T]) OnScroll(offset float64) {
	if p.detached {
		return
	}
	p.scrolled(offset)
}

// OnInteractionEnd handles the end of a drag. It is never suppressed by the
// mutation guard since it cannot be caused by the pager itself.
func (p *Pager[T]) OnInteractionEnd() {
	p.scrolled(p.host.ScrollOffset(p.cfg.Direction))
}

func (p *Pager[T]) scrolled(offset float64) {
	if !p.host.IsInteractionLive() && !p.transitioning && !p.window.Empty() {
		extent := p.host.PageExtent(p.cfg.Direction)
		if idx, ok := OffsetToIndex(offset, extent, p.window.Indices()); ok {
			p.update(idx, p.src.Len())
		}
	}
	p.settle.Observe(offset)
}

// Tap forwards a single tap when tapping is enabled
func (p *Pager[T]) Tap() {
	if p.cfg.OnTap != nil {
		p.cfg.OnTap()
	}
}

// Zoom changes the current page's zoom by delta within the configured range
// and returns the new zoom.
func (p *Pager[T]) Zoom(delta float64) float64 {
	e, ok := p.window.Get(p.current)
	if !ok {
		return p.cfg.MinZoom
	}
	if !p.cfg.Zoomable() {
		return e.Zoom
	}
	p.setZoom(e, e.Zoom+delta)
	return e.Zoom
}

// DoubleTap toggles the current page between the minimum zoom and the
// double tap scale, a fraction of the zoom range.
func (p *Pager[T]) DoubleTap() float64 {
	e, ok := p.window.Get(p.current)
	if !ok {
		return p.cfg.MinZoom
	}
	if !p.cfg.Zoomable() || !p.cfg.DoubleTap.Enabled() {
		return e.Zoom
	}
	if e.Zoom > p.cfg.MinZoom {
		p.setZoom(e, p.cfg.MinZoom)
	} else {
		p.setZoom(e, p.cfg.MinZoom+p.cfg.DoubleTap.Scale*(p.cfg.MaxZoom-p.cfg.MinZoom))
	}
	return e.Zoom
}

// CanPinch reports whether the viewport rests close enough to a page
// boundary for a pinch gesture to start.
func (p *Pager[T]) CanPinch() bool {
	if !p.cfg.Zoomable() {
		return false
	}
	extent := p.host.PageExtent(p.cfg.Direction)
	if extent <= 0 {
		return false
	}
	offset := p.host.ScrollOffset(p.cfg.Direction)
	nearest := math.Round(offset/extent) * extent
	return math.Abs(offset-nearest) < p.cfg.PinchGestureEnableOffset
}

// DismissOpacity returns the background opacity for a dismiss drag that has
// travelled progress (a fraction of the page) so far.
func (p *Pager[T]) DismissOpacity(progress float64) float64 {
	if !p.cfg.DismissEnabled() {
		return 1
	}
	progress = math.Abs(progress)
	if p.cfg.FullFadeOnDragAt <= 0 {
		if progress > 0 {
			return 0
		}
		return 1
	}
	return math.Max(0, 1-progress/p.cfg.FullFadeOnDragAt)
}

// EndDismissDrag finishes a dismiss drag. The dismiss callback fires once the
// dismiss animation has run when the drag went far or fast enough.
func (p *Pager[T]) EndDismissDrag(progress, velocity float64) bool {
	if !p.cfg.DismissEnabled() {
		return false
	}
	if math.Abs(progress) < p.cfg.DismissTriggerOffset && math.Abs(velocity) < p.cfg.DismissVelocity {
		return false
	}
	p.logger.Debug("dismiss triggered", "progress", progress, "velocity", velocity)
	p.sched.After(p.cfg.DismissAnimationLength, p.cfg.OnDismiss)
	return true
}

// Close releases every view and drops pending settle checks
func (p *Pager[T]) Close() {
	p.settle.Cancel()
	p.clearWindow()
}

// update moves the center to target against length and reconciles. It
// reports whether the current index changed.
func (p *Pager[T]) update(target, length int) bool {
	old := p.current
	p.current = Clamp(target, length)
	p.reconcile(length)
	if p.current == old {
		return false
	}
	p.logger.Debug("current index changed", "from", old, "to", p.current)
	p.listener.CurrentIndexChanged(p.current)
	p.loadMoreIfNeeded(length)
	return true
}

func (p *Pager[T]) reconcile(length int) {
	p.detach()
	prev := p.length
	p.length = length
	if length <= 0 {
		p.current = 0
		if !p.window.Empty() || prev > 0 {
			p.clearWindow()
			p.logger.Debug("window cleared", "reason", "empty sequence")
			p.listener.WindowEmptied()
		}
		return
	}

	p.current = Clamp(p.current, length)
	d := Plan(p.current, length, p.cfg.PreloadRadius, p.window.Indices())
	if d.Empty() {
		return
	}
	p.apply(d)
	p.host.Relayout(p.window.Handles())
	p.logger.Debug("window reconciled",
		"current", p.current, "length", length,
		"loaded", p.window.Indices(), "evicted", d.Evicts)

	if debugAssertions {
		if err := p.window.check(p.current, length, p.cfg.PreloadRadius); err != nil {
			panic(err)
		}
	}
}

func (p *Pager[T]) apply(d Delta) {
	for _, idx := range d.Evicts {
		p.evict(idx)
	}
	var frontBlocked, backBlocked bool
	for _, ld := range d.Loads {
		if (ld.Edge == EdgeFront && frontBlocked) || (ld.Edge == EdgeBack && backBlocked) {
			continue
		}
		el, ok := p.src.ElementAt(ld.Index)
		if !ok {
			p.logger.Debug("source miss", "index", ld.Index, "edge", ld.Edge)
			if ld.Edge == EdgeFront {
				frontBlocked = true
			} else {
				backBlocked = true
			}
			continue
		}
		e := &WindowEntry[T]{Index: ld.Index, Element: el, Zoom: p.cfg.MinZoom}
		e.Handle = p.host.Materialize(ld.Index, el)
		if ld.Edge == EdgeFront {
			p.window.pushFront(e)
			p.shiftOffset(1)
		} else {
			p.window.pushBack(e)
		}
	}
}

func (p *Pager[T]) evict(index int) {
	e, slot, ok := p.window.remove(index)
	if !ok {
		return
	}
	p.host.Release(e.Handle)
	// dropping the first page moves every survivor one page toward the origin
	if first, ok := p.window.First(); ok && slot == 0 && first.Index > index {
		p.shiftOffset(-1)
	}
}

func (p *Pager[T]) clearWindow() {
	entries := p.window.clear()
	for _, e := range entries {
		p.host.Release(e.Handle)
	}
	if len(entries) > 0 {
		p.host.Relayout(nil)
	}
}

func (p *Pager[T]) refresh(e *WindowEntry[T]) {
	el, ok := p.src.ElementAt(e.Index)
	if !ok {
		p.logger.Debug("refresh miss", "index", e.Index)
		return
	}
	e.Element = el
	p.host.RefreshContent(e.Handle, el)
}

func (p *Pager[T]) setZoom(e *WindowEntry[T], zoom float64) {
	zoom = math.Max(p.cfg.MinZoom, math.Min(p.cfg.MaxZoom, zoom))
	e.Zoom = zoom
	p.host.SetZoom(e.Handle, zoom)
}

// shiftOffset moves the scroll offset by whole pages so the visible page stays
// put when pages are inserted or removed before it.
func (p *Pager[T]) shiftOffset(pages int) {
	extent := p.host.PageExtent(p.cfg.Direction)
	if extent <= 0 {
		return
	}
	axis := p.cfg.Direction
	p.host.SetScrollOffset(axis, p.host.ScrollOffset(axis)+float64(pages)*extent)
}

// alignViewport puts the current page in view
func (p *Pager[T]) alignViewport() {
	offset, ok := IndexToOffset(p.current, p.host.PageExtent(p.cfg.Direction), p.window.Indices())
	if !ok {
		return
	}
	p.host.SetScrollOffset(p.cfg.Direction, offset)
}

func (p *Pager[T]) detach() {
	p.detached = true
	if p.reattachQueued {
		return
	}
	p.reattachQueued = true
	p.sched.Defer(func() {
		p.reattachQueued = false
		p.detached = false
	})
}

func (p *Pager[T]) loadMoreIfNeeded(length int) {
	if p.cfg.OnLoadMore == nil || length == 0 {
		return
	}
	if ShouldLoadMore(p.current, length, p.cfg.LoadMoreOn.DistanceFromEnd) {
		p.logger.Debug("load more requested",
			"current", p.current, "length", length,
			"distance", p.cfg.LoadMoreOn.DistanceFromEnd)
		p.sched.Defer(p.cfg.OnLoadMore)
	}
}

func (p *Pager[T]) onSettled() {
	for slot := 0; slot < p.window.Len(); slot++ {
		e := p.window.At(slot)
		if e.Index != p.current {
			e.Zoom = p.cfg.MinZoom
			p.host.SetZoom(e.Handle, p.cfg.MinZoom)
		}
	}
	p.logger.Debug("settled", "current", p.current)
	p.listener.Settled(p.current)
}
