// Package plain writes the pages of a source to a stream instead of a
// terminal UI. It drives the same engine as the interactive pager, walking
// forward one page at a time on a pager.Loop.
package plain

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"

	"lazypager/internal/config"
	"lazypager/internal/domain"
	"lazypager/internal/logging"
	"lazypager/internal/pager"
	"lazypager/internal/ui"
	"lazypager/internal/ui/views"
)

// Printer writes every page from a start index to the end of the source
type Printer struct {
	cfg    *config.Config
	src    ui.Source
	out    io.Writer
	clock  clockwork.Clock
	logger *slog.Logger
	start  int
}

// Option configures a Printer
type Option func(*Printer)

// WithClock replaces the clock driving the run loop
func WithClock(c clockwork.Clock) Option {
	return func(p *Printer) { p.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Printer) { p.logger = l }
}

// WithStartIndex sets the first page written
func WithStartIndex(index int) Option {
	return func(p *Printer) { p.start = index }
}

// NewPrinter creates a printer writing to out
func NewPrinter(cfg *config.Config, src ui.Source, out io.Writer, opts ...Option) *Printer {
	p := &Printer{
		cfg:   cfg,
		src:   src,
		out:   out,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.Default(p.logger).With("component", "printer")
	return p
}

// Run walks the pages and returns how many were written. It stops at the end
// of the source, on a write error, or when ctx is done.
func (pr *Printer) Run(ctx context.Context) (int, error) {
	pc, err := pr.cfg.PagerConfig()
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := pager.NewLoop(pr.clock, pr.logger)
	done := make(chan error, 1)
	printed := 0

	loop.Do(func() {
		host := ui.NewHost(pr.logger)
		host.SetSize(1, 1)

		var p *pager.Pager[domain.Item]
		pc.OnLoadMore = func() {
			if added := pr.src.LoadMore(); added > 0 {
				pr.logger.Debug("revealed more files", "added", added)
				p.OnExternalLengthChange(pr.src.Len())
			}
		}
		var err error
		p, err = pager.New[domain.Item](pc, pr.src, host, loop,
			pager.WithLogger(pr.logger),
			pager.WithInitialIndex(pr.start))
		if err != nil {
			done <- err
			return
		}
		p.OnViewportSize(1, 1)

		stop := func(err error) {
			p.Close()
			done <- err
		}
		var step func()
		step = func() {
			if err := ctx.Err(); err != nil {
				stop(err)
				return
			}
			e, ok := p.Entry(p.Current())
			if !ok {
				stop(nil)
				return
			}
			if err := pr.write(e.Element); err != nil {
				stop(err)
				return
			}
			printed++
			if !p.Advance() {
				// the source may still hold files the trigger has not asked for
				if pr.src.LoadMore() == 0 {
					stop(nil)
					return
				}
				p.OnExternalLengthChange(pr.src.Len())
				if !p.Advance() {
					stop(nil)
					return
				}
			}
			loop.Defer(step)
		}
		loop.Defer(step)
	})

	stopped := make(chan error, 1)
	go func() { stopped <- loop.Run(ctx) }()

	select {
	case err = <-done:
	case err = <-stopped:
		return printed, err
	}
	cancel()
	<-stopped
	return printed, err
}

func (pr *Printer) write(item domain.Item) error {
	if _, err := fmt.Fprintf(pr.out, "==> %s (%s) <==\n", item.Name, views.HumanSize(item.Size)); err != nil {
		return fmt.Errorf("failed to write %s: %w", item.Name, err)
	}
	if item.Binary {
		if _, err := fmt.Fprintln(pr.out, "binary file"); err != nil {
			return fmt.Errorf("failed to write %s: %w", item.Name, err)
		}
	}
	for _, line := range item.Preview {
		if _, err := fmt.Fprintln(pr.out, ansi.Strip(line)); err != nil {
			return fmt.Errorf("failed to write %s: %w", item.Name, err)
		}
	}
	_, err := fmt.Fprintln(pr.out)
	return err
}
