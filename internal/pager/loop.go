package pager

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"lazypager/internal/logging"
)

// Loop is a Scheduler that runs every task on one goroutine. Tasks may be
// posted from any goroutine; Run executes them in order. The queue is
// unbounded so posting never blocks and nothing is dropped.
type Loop struct {
	clock  clockwork.Clock
	logger *slog.Logger

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	timers map[*timer]struct{}
	closed bool
}

type timer struct {
	clockwork.Timer
}

// NewLoop creates a loop driven by clock
func NewLoop(clock clockwork.Clock, logger *slog.Logger) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		clock:  clock,
		logger: logging.Default(logger).With("component", "loop"),
		wake:   make(chan struct{}, 1),
		timers: make(map[*timer]struct{}),
	}
}

// Defer implements Scheduler
func (l *Loop) Defer(fn func()) {
	l.post(fn)
}

// Do posts fn from outside the timeline. It is an alias of Defer for callers
// that are not themselves running on the loop.
func (l *Loop) Do(fn func()) {
	l.post(fn)
}

// After implements Scheduler. The timer is registered before it is armed so
// one that fires straight away cannot leave a stale entry behind.
func (l *Loop) After(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	entry := &timer{}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.timers[entry] = struct{}{}
	l.mu.Unlock()

	t := l.clock.AfterFunc(d, func() {
		l.mu.Lock()
		_, armed := l.timers[entry]
		delete(l.timers, entry)
		l.mu.Unlock()
		if armed {
			l.post(fn)
		}
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		t.Stop()
		return
	}
	if _, ok := l.timers[entry]; ok {
		entry.Timer = t
	}
}

// Timers returns the number of armed timers
func (l *Loop) Timers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

func (l *Loop) post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted tasks until ctx is done. Pending timers are stopped and
// queued tasks are discarded on return.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		l.drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Pending returns the number of queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for t := range l.timers {
		if t.Timer != nil {
			t.Stop()
		}
	}
	l.timers = nil
	l.queue = nil
}
