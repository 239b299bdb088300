package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"lazypager/internal/eventbus"
	"lazypager/internal/logging"
)

// DefaultDebounce is the quiet period after the last file event before the
// directory is rescanned
const DefaultDebounce = 150 * time.Millisecond

// Watcher rescans a DirSource when its directory changes and publishes a
// SourceChanged event for every effective change.
type Watcher struct {
	src      *DirSource
	bus      eventbus.EventBus
	logger   *slog.Logger
	clock    clockwork.Clock
	debounce time.Duration
	ignore   map[string]bool
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a rescan
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithClock replaces the clock used for debouncing
func WithClock(c clockwork.Clock) WatcherOption {
	return func(w *Watcher) { w.clock = c }
}

// WithIgnore skips events for the named files, such as the log file
func WithIgnore(paths ...string) WatcherOption {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
			w.ignore[p] = true
		}
	}
}

// NewWatcher creates a watcher for src
func NewWatcher(src *DirSource, bus eventbus.EventBus, logger *slog.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		src:      src,
		bus:      bus,
		logger:   logging.Default(logger).With("component", "watcher", "dir", src.Dir()),
		clock:    clockwork.NewRealClock(),
		debounce: DefaultDebounce,
		ignore:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.src.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.src.Dir(), err)
	}
	w.logger.Debug("watching directory")

	var timer clockwork.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = w.clock.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.Chan()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("fsnotify error", "error", err)

		case <-fire:
			fire = nil
			timer = nil
			w.rescan()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	path := event.Name
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return !w.ignore[path]
}

func (w *Watcher) rescan() {
	change, err := w.src.Rescan()
	if err != nil {
		w.logger.Warn("rescan failed", "error", err)
		if w.bus != nil {
			w.bus.Publish(eventbus.ErrorEvent{Message: "failed to rescan directory", Err: err})
		}
		return
	}
	if !change.Changed() {
		return
	}
	if w.bus != nil {
		w.bus.Publish(eventbus.SourceChangedEvent{Length: change.Length, Replaced: change.Replaced})
	}
}
