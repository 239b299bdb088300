package ui

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lazypager/internal/config"
	"lazypager/internal/domain"
	"lazypager/internal/eventbus"
	"lazypager/internal/logging"
	"lazypager/internal/pager"
	"lazypager/internal/ui/views"
)

const (
	frameInterval = 16 * time.Millisecond
	// a swipe moves one page in swipeFrames frames; the first dragFrames of
	// them happen while the key is treated as a finger on the screen
	swipeFrames   = 8
	dragFrames    = 3
	dismissFrames = 5
	dismissStep   = 0.05
	zoomStep      = 0.5
)

// Source is what the model pages through
type Source interface {
	pager.SequenceSource[domain.Item]
	LoadMore() int
	Progress() domain.ScanProgress
}

// Options configures a Model
type Options struct {
	StartIndex int
	// E2E prints the readiness marker the end-to-end tests wait for
	E2E    bool
	Logger *slog.Logger
}

type frameMsg struct{ id int }

type dismissFrameMsg struct{ id int }

type swipeState struct {
	active    bool
	id        int
	dir       int
	target    int
	frame     int
	remaining float64
	step      float64
	// swipes requested while animating, signed by direction
	queued int
}

type dismissState struct {
	active   bool
	id       int
	frame    int
	progress float64
}

// Model represents the UI state
type Model struct {
	cfg      *config.Config
	bus      eventbus.EventBus
	src      Source
	host     *Host
	sched    *Scheduler
	pager    *pager.Pager[domain.Item]
	axis     pager.Axis
	keys     KeyMap
	help     help.Model
	renderer *views.Renderer
	logger   *slog.Logger

	width      int
	height     int
	swipe      swipeState
	dismiss    dismissState
	jump       string
	showChrome bool
	showHelp   bool
	status     string
	statusErr  bool
	dismissed  bool
	e2e        bool
}

// NewModel creates a new UI model paging through src
func NewModel(cfg *config.Config, src Source, bus eventbus.EventBus, opts Options) (*Model, error) {
	pc, err := cfg.PagerConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.Default(opts.Logger)

	m := &Model{
		cfg:        cfg,
		bus:        bus,
		src:        src,
		host:       NewHost(logger),
		sched:      &Scheduler{},
		axis:       pc.Direction,
		keys:       NewKeyMap(pc.Direction),
		help:       help.New(),
		renderer:   views.NewRenderer(views.NewStyles()),
		logger:     logger.With("component", "ui"),
		showChrome: cfg.UISettings.ShowStatusBar,
		showHelp:   cfg.UISettings.ShowHelp,
		e2e:        opts.E2E,
	}
	pc.OnLoadMore = m.loadMore
	pc.OnTap = func() { m.sched.Defer(m.toggleChrome) }
	if cfg.Pager.DismissEnabled {
		pc.OnDismiss = func() { m.dismissed = true }
	}

	m.pager, err = pager.New[domain.Item](pc, src, m.host, m.sched,
		pager.WithLogger(logger),
		pager.WithListener(m.listener()),
		pager.WithInitialIndex(opts.StartIndex))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Pager exposes the engine driving the model
func (m *Model) Pager() *pager.Pager[domain.Item] {
	return m.pager
}

// Host exposes the view host
func (m *Model) Host() *Host {
	return m.host
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.sched.Cmd()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handle(msg)
	if m.dismissed {
		m.logger.Info("dismissed")
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, m.sched.Cmd())
}

func (m *Model) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.applyPageSize()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		return m.swipeFrame(msg)

	case dismissFrameMsg:
		return m.dismissFrame(msg)

	case runMsg:
		msg.run()

	case EventMsg:
		m.handleEvent(msg.Event)

	case ovFinishedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("ov failed on %s", msg.what), msg.err)
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.dismiss.active {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	// typed digits may arrive together in one message
	case isDigits(msg):
		m.jump += string(msg.Runes)
		return nil

	case key.Matches(msg, m.keys.Tap):
		if m.jump != "" {
			m.jumpTo()
			return nil
		}
		m.pager.Tap()

	case key.Matches(msg, m.keys.Dismiss):
		if m.jump != "" {
			m.jump = ""
			return nil
		}
		return m.startDismiss()

	case key.Matches(msg, m.keys.Next):
		return m.startSwipe(1)

	case key.Matches(msg, m.keys.Prev):
		return m.startSwipe(-1)

	case key.Matches(msg, m.keys.First):
		m.finishSwipe()
		m.pager.GoToIndex(0)

	case key.Matches(msg, m.keys.Last):
		m.finishSwipe()
		m.pager.GoToIndex(m.pager.Len() - 1)

	case key.Matches(msg, m.keys.Reload):
		m.pager.Reload()

	case key.Matches(msg, m.keys.ZoomIn):
		if m.pager.CanPinch() {
			m.pager.Zoom(zoomStep)
		}

	case key.Matches(msg, m.keys.ZoomOut):
		if m.pager.CanPinch() {
			m.pager.Zoom(-zoomStep)
		}

	case key.Matches(msg, m.keys.DoubleTap):
		m.pager.DoubleTap()

	case key.Matches(msg, m.keys.Open):
		e, ok := m.pager.Entry(m.pager.Current())
		if !ok {
			return nil
		}
		return openInOv(e.Element.Path)

	case key.Matches(msg, m.keys.Help):
		if !m.showHelp {
			m.showHelp = true
		} else {
			m.help.ShowAll = !m.help.ShowAll
		}
		m.applyPageSize()

	case key.Matches(msg, m.keys.HelpInOv):
		return showHelpInOv(renderHelpContent(m.keys))
	}
	m.jump = ""
	return nil
}

func isDigits(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) == 0 {
		return false
	}
	for _, r := range msg.Runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// jumpTo moves to the 1-based page number typed so far
func (m *Model) jumpTo() {
	n, err := strconv.Atoi(m.jump)
	m.jump = ""
	if err != nil {
		return
	}
	m.finishSwipe()
	m.pager.Sync(n - 1)
}

func (m *Model) startSwipe(dir int) tea.Cmd {
	if m.swipe.active {
		m.swipe.queued += dir
		return nil
	}
	cur, n := m.pager.Current(), m.pager.Len()
	if n == 0 || (dir > 0 && cur >= n-1) || (dir < 0 && cur <= 0) {
		return nil
	}
	extent := m.host.PageExtent(m.axis)
	if extent <= 0 {
		m.pager.GoToIndex(cur + dir)
		return nil
	}

	m.swipe = swipeState{
		active:    true,
		id:        m.swipe.id + 1,
		dir:       dir,
		target:    cur + dir,
		remaining: extent,
		step:      math.Ceil(extent / swipeFrames),
	}
	m.host.SetLive(true)
	return m.nextFrame()
}

func (m *Model) nextFrame() tea.Cmd {
	id := m.swipe.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{id: id} })
}

func (m *Model) swipeFrame(msg frameMsg) tea.Cmd {
	s := &m.swipe
	if !s.active || msg.id != s.id {
		return nil
	}

	step := math.Min(s.step, s.remaining)
	s.remaining -= step
	s.frame++
	offset := m.host.ScrollOffset(m.axis) + float64(s.dir)*step
	m.host.SetScrollOffset(m.axis, offset)
	m.pager.OnScroll(offset)

	if s.frame == dragFrames {
		m.host.SetLive(false)
		m.pager.OnInteractionEnd()
	}
	if s.remaining > 0 {
		return m.nextFrame()
	}

	queued := s.queued
	m.finishSwipe()
	if queued != 0 {
		dir := 1
		if queued < 0 {
			dir = -1
		}
		cmd := m.startSwipe(dir)
		m.swipe.queued = queued - dir
		return cmd
	}
	return nil
}

// finishSwipe ends a running swipe on the nearest page boundary
func (m *Model) finishSwipe() {
	if !m.swipe.active {
		return
	}
	m.swipe.active = false
	m.swipe.queued = 0
	m.host.SetLive(false)

	extent := m.host.PageExtent(m.axis)
	if extent <= 0 {
		return
	}
	offset := math.Round(m.host.ScrollOffset(m.axis)/extent) * extent
	if offset != m.host.ScrollOffset(m.axis) {
		m.host.SetScrollOffset(m.axis, offset)
		m.pager.OnScroll(offset)
	}
}

// completeSwipe ends a running swipe on the page it was heading for
func (m *Model) completeSwipe() {
	if !m.swipe.active {
		return
	}
	target := m.swipe.target
	m.swipe.active = false
	m.swipe.queued = 0
	m.host.SetLive(false)
	m.pager.GoToIndex(target)
}

func (m *Model) startDismiss() tea.Cmd {
	if !m.pager.Config().DismissEnabled() {
		return nil
	}
	m.finishSwipe()
	m.dismiss = dismissState{active: true, id: m.dismiss.id + 1}
	return m.nextDismissFrame()
}

func (m *Model) nextDismissFrame() tea.Cmd {
	id := m.dismiss.id
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return dismissFrameMsg{id: id} })
}

func (m *Model) dismissFrame(msg dismissFrameMsg) tea.Cmd {
	d := &m.dismiss
	if !d.active || msg.id != d.id {
		return nil
	}
	d.frame++
	d.progress = float64(d.frame) * dismissStep
	if d.frame < dismissFrames {
		return m.nextDismissFrame()
	}

	velocity := d.progress / (float64(dismissFrames) * frameInterval.Seconds())
	if !m.pager.EndDismissDrag(d.progress, velocity) {
		m.dismiss = dismissState{id: d.id}
	}
	return nil
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.SourceChangedEvent:
		m.finishSwipe()
		if ev.Replaced {
			m.pager.OnExternalDataIdentityChange()
		} else {
			m.pager.OnExternalLengthChange(m.src.Len())
		}
	case eventbus.ItemsRevealedEvent:
		m.pager.OnExternalLengthChange(m.src.Len())
	case eventbus.ErrorEvent:
		m.setError(ev.Message, ev.Err)
	}
}

func (m *Model) loadMore() {
	m.publish(eventbus.LoadMoreRequestedEvent{Length: m.src.Len()})
	if added := m.src.LoadMore(); added > 0 {
		m.pager.OnExternalLengthChange(m.src.Len())
	}
}

func (m *Model) toggleChrome() {
	m.showChrome = !m.showChrome
	m.applyPageSize()
}

func (m *Model) listener() pager.Listener {
	return pager.ListenerFuncs{
		OnCurrentIndexChanged: func(index int) {
			m.status, m.statusErr = "", false
			m.publish(eventbus.CurrentIndexChangedEvent{Index: index, Length: m.src.Len()})
		},
		OnSettled: func(index int) {
			m.publish(eventbus.SettledEvent{Index: index})
		},
		OnWindowEmptied: func() {
			m.status, m.statusErr = "no files left", false
			m.publish(eventbus.WindowEmptiedEvent{})
		},
	}
}

func (m *Model) publish(e eventbus.DomainEvent) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

func (m *Model) setError(message string, err error) {
	m.logger.Warn(message, "error", err)
	m.status, m.statusErr = message, true
	if err != nil {
		m.status = fmt.Sprintf("%s: %v", message, err)
	}
}

// pageSize is the terminal area left for pages once the chrome is drawn
func (m *Model) pageSize() (int, int) {
	rows := m.height
	if m.showChrome {
		rows -= 2
		if m.showHelp {
			rows -= lipgloss.Height(m.help.View(m.keys))
		}
	}
	return m.width, max(rows, 1)
}

// applyPageSize pushes the page size to the host. The first size lays the
// pager out; later changes are bracketed as a size transition.
func (m *Model) applyPageSize() {
	pw, ph := m.pageSize()
	if pw <= 0 {
		return
	}
	w, h := m.host.Size()
	if w == pw && h == ph {
		return
	}
	m.completeSwipe()
	first := w == 0
	m.host.SetSize(pw, ph)
	if first {
		m.pager.OnViewportSize(float64(pw), float64(ph))
		return
	}
	m.pager.BeginSizeTransition()
	m.pager.OnViewportSize(float64(pw), float64(ph))
	m.pager.EndSizeTransition()
}

// View implements tea.Model
func (m *Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	styles := m.renderer.Styles()

	var b strings.Builder
	if m.showChrome {
		progress := m.src.Progress()
		header := styles.Title.Render("lazypager") + " " + styles.Dim.Render(progress.Dir)
		b.WriteString(views.Truncate(header, m.width))
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(m.body(), "\n"))
	if m.showChrome {
		b.WriteString("\n")
		b.WriteString(views.Truncate(m.statusLine(), m.width))
		if m.showHelp {
			b.WriteString("\n")
			b.WriteString(m.help.View(m.keys))
		}
	}
	return b.String()
}

func (m *Model) body() []string {
	pw, ph := m.host.Size()
	first, second, into := m.host.Visible(m.axis)
	if first == nil {
		lines := m.renderer.Blank(pw, ph)
		if len(lines) > 0 {
			lines[0] = m.renderer.Styles().Empty.Render(views.Fit("no files to show", pw))
		}
		return lines
	}

	faded := m.dismiss.active && m.pager.DismissOpacity(m.dismiss.progress) < 0.5
	a := m.renderer.Page(first.Item, first.Zoom, faded, pw, ph)
	var next []string
	if second != nil && into > 0 {
		next = m.renderer.Page(second.Item, second.Zoom, faded, pw, ph)
	}
	return views.Compose(m.axis == pager.Vertical, a, next, into, pw, ph)
}

func (m *Model) statusLine() string {
	styles := m.renderer.Styles()
	progress := m.src.Progress()

	parts := []string{}
	if n := m.pager.Len(); n > 0 {
		parts = append(parts, styles.Position.Render(fmt.Sprintf("%d/%d", m.pager.Current()+1, n)))
	}
	if !progress.Done() {
		parts = append(parts, styles.Status.Render(fmt.Sprintf("%d files on disk", progress.Total)))
	}
	if m.jump != "" {
		parts = append(parts, styles.Jump.Render("go to "+m.jump))
	}
	if m.status != "" {
		style := styles.Status
		if m.statusErr {
			style = styles.StatusError
		}
		parts = append(parts, style.Render(m.status))
	}
	if m.e2e {
		parts = append(parts, "__READY__")
	}
	return strings.Join(parts, "  ")
}
