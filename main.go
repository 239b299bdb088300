package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"lazypager/internal/config"
	"lazypager/internal/eventbus"
	"lazypager/internal/logging"
	"lazypager/internal/plain"
	"lazypager/internal/source"
	"lazypager/internal/ui"
)

type flags struct {
	radius     int
	direction  string
	loadMore   int
	batch      int
	start      int
	configPath string
	logLevel   string
	logFile    string
	print      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:          "lazypager [dir]",
		Short:        "Page through the files of a directory",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return run(cmd, f, dir)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.radius, "radius", 3, "pages kept loaded on each side of the current page")
	fl.StringVar(&f.direction, "direction", "horizontal", "paging direction (horizontal or vertical)")
	fl.IntVar(&f.loadMore, "load-more", 3, "read more files once the current page is this close to the end")
	fl.IntVar(&f.batch, "batch", 50, "files read from the directory at a time")
	fl.IntVar(&f.start, "start", 0, "index of the first page shown")
	fl.StringVar(&f.configPath, "config", "", "config file (default <dir>/"+config.FileName+")")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fl.StringVar(&f.logFile, "log-file", "lazypager.log", "log file")
	fl.BoolVar(&f.print, "print", false, "write the pages to stdout instead of opening the pager (default when stdout is not a terminal)")
	return cmd
}

func run(cmd *cobra.Command, f *flags, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}
	if info, err := os.Stat(absDir); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", absDir)
	}

	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	logger, logCloser, err := logging.OpenFile(f.logFile, level)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New(logger)
	defer bus.Close()

	configPath := filepath.Join(absDir, config.FileName)
	if f.configPath != "" {
		if configPath, err = filepath.Abs(f.configPath); err != nil {
			return fmt.Errorf("error resolving config path: %w", err)
		}
	}
	configSvc := config.NewConfigServiceWithBus(configPath, bus, logger)
	cfg, err := loadOrCreateConfig(configSvc, logger)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, f, cfg); err != nil {
		return err
	}

	src, err := source.NewDirSource(absDir, source.Options{
		BatchSize:     cfg.Source.BatchSize,
		IncludeHidden: cfg.Source.IncludeHidden,
		Extensions:    cfg.Source.Extensions,
		PreviewLines:  cfg.Source.PreviewLines,
		CacheSize:     cfg.Source.CacheSize,
	}, bus, logger)
	if err != nil {
		return err
	}

	if f.print || !isTerminal(cmd.OutOrStdout()) {
		n, err := plain.NewPrinter(cfg, src, cmd.OutOrStdout(),
			plain.WithLogger(logger),
			plain.WithStartIndex(f.start)).Run(ctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logger.Info("interrupted", "pages", n)
			return nil
		}
		if err != nil {
			return fmt.Errorf("error printing pages: %w", err)
		}
		logger.Info("printed", "dir", absDir, "pages", n)
		return nil
	}

	ignore := []string{configSvc.Path()}
	if logPath, err := filepath.Abs(f.logFile); err == nil {
		ignore = append(ignore, logPath)
	}
	watcher := source.NewWatcher(src, bus, logger, source.WithIgnore(ignore...))
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped", "error", err)
		}
	}()

	model, err := ui.NewModel(cfg, src, bus, ui.Options{
		StartIndex: f.start,
		E2E:        os.Getenv("LAZYPAGER_E2E_TEST") == "1",
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// the engine is only touched on the update loop, so bus events reach it
	// as messages
	forward := func(e eventbus.DomainEvent) { p.Send(ui.EventMsg{Event: e}) }
	unsubscribe := []func(){
		bus.Subscribe(eventbus.EventSourceChanged, forward),
		bus.Subscribe(eventbus.EventError, forward),
		bus.Subscribe(eventbus.EventSettled, func(e eventbus.DomainEvent) {
			logger.Debug("settled", "index", e.(eventbus.SettledEvent).Index)
		}),
		bus.Subscribe(eventbus.EventLoadMoreRequested, func(e eventbus.DomainEvent) {
			logger.Debug("load more", "length", e.(eventbus.LoadMoreRequestedEvent).Length)
		}),
	}
	defer func() {
		for _, u := range unsubscribe {
			u()
		}
	}()

	logger.Info("starting", "dir", absDir, "files", src.Progress().Total, "config", configSvc.Path())
	_, err = p.Run()
	model.Pager().Close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		logger.Info("interrupted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info("exited normally")
	return nil
}

// isTerminal reports whether w is a terminal the pager can take over
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadOrCreateConfig loads the config file, writing the defaults back when
// there is none yet
func loadOrCreateConfig(svc config.ConfigService, logger *slog.Logger) (*config.Config, error) {
	cfg, err := svc.Load()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(svc.Path()); errors.Is(err, fs.ErrNotExist) {
		if err := svc.Save(cfg); err != nil {
			logger.Warn("failed to save config", "path", svc.Path(), "error", err)
		}
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags given on the command line
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("radius") {
		cfg.Pager.PreloadRadius = f.radius
	}
	if fl.Changed("direction") {
		cfg.Pager.Direction = f.direction
	}
	if fl.Changed("load-more") {
		cfg.Pager.LoadMoreDistance = f.loadMore
	}
	if fl.Changed("batch") {
		cfg.Source.BatchSize = f.batch
	}
	return cfg.Validate()
}
