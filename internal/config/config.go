package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"lazypager/internal/eventbus"
	"lazypager/internal/logging"
	"lazypager/internal/pager"
)

// FileName is the name of the per-directory config file
const FileName = ".lazypager.toml"

// CurrentVersion is the config schema version written by Save
const CurrentVersion = 1

// ErrNotFound is returned by LoadFromPath for a missing file
var ErrNotFound = errors.New("config file not found")

// Config represents the application configuration
type Config struct {
	Version    int            `toml:"version"`
	BaseDir    string         `toml:"base_dir"`
	Pager      PagerSettings  `toml:"pager"`
	Source     SourceSettings `toml:"source"`
	UISettings UISettings     `toml:"ui"`
}

// PagerSettings mirrors the tunable part of pager.Config
type PagerSettings struct {
	PreloadRadius    int     `toml:"preload_radius"`
	Direction        string  `toml:"direction"`
	LoadMoreDistance int     `toml:"load_more_distance"`
	MinZoom          float64 `toml:"min_zoom"`
	MaxZoom          float64 `toml:"max_zoom"`
	DoubleTapScale   float64 `toml:"double_tap_scale"`
	DismissEnabled   bool    `toml:"dismiss_enabled"`
}

// SourceSettings controls how the directory is read
type SourceSettings struct {
	BatchSize     int      `toml:"batch_size"`
	IncludeHidden bool     `toml:"include_hidden"`
	Extensions    []string `toml:"extensions"`
	PreviewLines  int      `toml:"preview_lines"`
	CacheSize     int      `toml:"cache_size"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowStatusBar bool `toml:"show_status_bar"`
	ShowHelp      bool `toml:"show_help"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	logger   *slog.Logger
}

// NewConfigService creates a config service backed by path
func NewConfigService(path string, logger *slog.Logger) ConfigService {
	return &configService{
		filePath: path,
		logger:   logging.Default(logger).With("component", "config"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus, logger *slog.Logger) ConfigService {
	cs := NewConfigService(path, logger).(*configService)
	cs.bus = bus
	return cs
}

// Path returns the file the service loads from and saves to
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file. A missing file yields the default
// configuration rooted at the file's directory.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, ErrNotFound) {
		cfg = DefaultConfig()
		cfg.BaseDir = filepath.Dir(cs.filePath)
		cs.logger.Info("no config file, using defaults", "path", cs.filePath)
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:    cs.filePath,
			BaseDir: cfg.BaseDir,
		})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("failed to parse config %s at %d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	cs.logger.Debug("config saved", "path", path)
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	defaults := pager.DefaultConfig()
	return &Config{
		Version: CurrentVersion,
		Pager: PagerSettings{
			PreloadRadius:    defaults.PreloadRadius,
			Direction:        defaults.Direction.String(),
			LoadMoreDistance: defaults.LoadMoreOn.DistanceFromEnd,
			MinZoom:          1,
			MaxZoom:          4,
			DoubleTapScale:   defaults.DoubleTap.Scale,
			DismissEnabled:   true,
		},
		Source: SourceSettings{
			BatchSize:    50,
			PreviewLines: 200,
			CacheSize:    64,
		},
		UISettings: UISettings{
			ShowStatusBar: true,
			ShowHelp:      true,
		},
	}
}

// Validate checks values that cannot be expressed in the TOML schema
func (c *Config) Validate() error {
	if _, err := c.PagerConfig(); err != nil {
		return err
	}
	if c.Source.BatchSize <= 0 {
		return fmt.Errorf("source.batch_size must be positive, got %d", c.Source.BatchSize)
	}
	if c.Source.PreviewLines < 0 {
		return fmt.Errorf("source.preview_lines must not be negative, got %d", c.Source.PreviewLines)
	}
	return nil
}

// PagerConfig converts the pager settings into an engine configuration.
// Callbacks are left nil; the caller wires them.
func (c *Config) PagerConfig() (pager.Config, error) {
	cfg := pager.DefaultConfig()
	axis, err := pager.ParseAxis(c.Pager.Direction)
	if err != nil {
		return cfg, fmt.Errorf("pager.direction: %w", err)
	}
	cfg.Direction = axis
	cfg.PreloadRadius = c.Pager.PreloadRadius
	cfg.LoadMoreOn.DistanceFromEnd = c.Pager.LoadMoreDistance
	cfg.MinZoom = c.Pager.MinZoom
	cfg.MaxZoom = c.Pager.MaxZoom
	cfg.DoubleTap.Scale = c.Pager.DoubleTapScale
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
