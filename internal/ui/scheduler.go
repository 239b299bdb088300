package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries deferred pager work back into Update
type runMsg struct {
	fns []func()
}

// Scheduler runs pager work on the bubbletea update loop. Deferred work is
// collected while Update runs and handed back as one command, so it runs on
// the next turn in the order it was deferred.
type Scheduler struct {
	queue  []func()
	timers []tea.Cmd
}

// Defer implements pager.Scheduler
func (s *Scheduler) Defer(fn func()) {
	if fn != nil {
		s.queue = append(s.queue, fn)
	}
}

// After implements pager.Scheduler
func (s *Scheduler) After(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	s.timers = append(s.timers, tea.Tick(d, func(time.Time) tea.Msg {
		return runMsg{fns: []func(){fn}}
	}))
}

// Pending reports whether work is waiting to be handed to the program
func (s *Scheduler) Pending() bool {
	return len(s.queue) > 0 || len(s.timers) > 0
}

// Cmd drains the collected work into a command, or nil when there is none
func (s *Scheduler) Cmd() tea.Cmd {
	cmds := s.timers
	if len(s.queue) > 0 {
		fns := s.queue
		cmds = append(cmds, func() tea.Msg { return runMsg{fns: fns} })
	}
	s.queue, s.timers = nil, nil
	return tea.Batch(cmds...)
}

func (m runMsg) run() {
	for _, fn := range m.fns {
		fn()
	}
}
