package pager

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// manualScheduler runs deferred work and timers only when the test says so
type manualScheduler struct {
	now      time.Duration
	deferred []func()
	timers   []scheduledTask
}

type scheduledTask struct {
	at time.Duration
	fn func()
}

func (s *manualScheduler) Defer(fn func()) {
	s.deferred = append(s.deferred, fn)
}

func (s *manualScheduler) After(d time.Duration, fn func()) {
	s.timers = append(s.timers, scheduledTask{at: s.now + d, fn: fn})
}

// Flush runs deferred tasks, including ones they defer, until none remain
func (s *manualScheduler) Flush() {
	for len(s.deferred) > 0 {
		fn := s.deferred[0]
		s.deferred = s.deferred[1:]
		fn()
	}
}

// Advance moves the clock forward, firing due timers in time order
func (s *manualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		s.Flush()
		next := -1
		for i, t := range s.timers {
			if t.at <= target && (next < 0 || t.at < s.timers[next].at) {
				next = i
			}
		}
		if next < 0 {
			break
		}
		task := s.timers[next]
		s.timers = slices.Delete(s.timers, next, next+1)
		s.now = task.at
		task.fn()
	}
	s.now = target
}

type hostView struct {
	index   int
	element string
}

// recordingHost is a ViewHost that records every call
type recordingHost struct {
	extent float64
	offset float64
	live   bool

	views        map[uuid.UUID]hostView
	order        []ViewHandle
	materialized []int
	released     []int
	refreshed    []int
	zooms        map[int]float64
	offsetWrites []float64
	relayouts    int

	// onSetOffset simulates a host that reports scroll changes synchronously
	onSetOffset func(offset float64)
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		extent: 100,
		views:  make(map[uuid.UUID]hostView),
		zooms:  make(map[int]float64),
	}
}

func (h *recordingHost) Materialize(index int, element string) ViewHandle {
	handle := ViewHandle{ID: uuid.New(), Index: index}
	h.views[handle.ID] = hostView{index: index, element: element}
	h.materialized = append(h.materialized, index)
	return handle
}

func (h *recordingHost) Release(handle ViewHandle) {
	delete(h.views, handle.ID)
	h.released = append(h.released, handle.Index)
}

func (h *recordingHost) RefreshContent(handle ViewHandle, element string) {
	v := h.views[handle.ID]
	v.element = element
	h.views[handle.ID] = v
	h.refreshed = append(h.refreshed, handle.Index)
}

func (h *recordingHost) Relayout(order []ViewHandle) {
	h.order = slices.Clone(order)
	h.relayouts++
}

func (h *recordingHost) SetZoom(handle ViewHandle, zoom float64) {
	h.zooms[handle.Index] = zoom
}

func (h *recordingHost) SetScrollOffset(_ Axis, value float64) {
	h.offset = value
	h.offsetWrites = append(h.offsetWrites, value)
	if h.onSetOffset != nil {
		h.onSetOffset(value)
	}
}

func (h *recordingHost) ScrollOffset(Axis) float64 {
	return h.offset
}

func (h *recordingHost) PageExtent(Axis) float64 {
	return h.extent
}

func (h *recordingHost) IsInteractionLive() bool {
	return h.live
}

// visibleIndex is the index of the view under the current offset
func (h *recordingHost) visibleIndex() int {
	slot := int(h.offset / h.extent)
	if slot < 0 || slot >= len(h.order) {
		return -1
	}
	return h.order[slot].Index
}

// missingSource hides some indices to simulate a racing backing store
type missingSource struct {
	*SliceSource[string]
	missing map[int]bool
}

func (s *missingSource) ElementAt(index int) (string, bool) {
	if s.missing[index] {
		return "", false
	}
	return s.SliceSource.ElementAt(index)
}

type recordedSignals struct {
	changes  []int
	settled  []int
	emptied  int
	loadMore int
}

func (r *recordedSignals) listener() Listener {
	return ListenerFuncs{
		OnCurrentIndexChanged: func(i int) { r.changes = append(r.changes, i) },
		OnSettled:             func(i int) { r.settled = append(r.settled, i) },
		OnWindowEmptied:       func() { r.emptied++ },
	}
}

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%d", i)
	}
	return out
}

type fixture struct {
	pager   *Pager[string]
	src     *SliceSource[string]
	host    *recordingHost
	sched   *manualScheduler
	signals *recordedSignals
}

func newFixture(t *testing.T, n int, cfg Config, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		src:     &SliceSource[string]{Items: items(n)},
		host:    newRecordingHost(),
		sched:   &manualScheduler{},
		signals: &recordedSignals{},
	}
	if cfg.OnLoadMore == nil {
		cfg.OnLoadMore = func() { f.signals.loadMore++ }
	}
	opts = append([]Option{WithListener(f.signals.listener())}, opts...)
	p, err := New[string](cfg, f.src, f.host, f.sched, opts...)
	require.NoError(t, err, "pager should accept config")
	f.pager = p
	return f
}

func (f *fixture) requireWindow(t *testing.T, want ...int) {
	t.Helper()
	if len(want) == 0 {
		require.Empty(t, f.pager.Loaded(), "loaded window")
	} else {
		require.Equal(t, want, f.pager.Loaded(), "loaded window")
	}
	require.NoError(t, f.pager.CheckInvariants())
	require.Len(t, f.host.views, len(want), "host should hold exactly the loaded views")
}
