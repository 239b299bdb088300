package pager

import (
	"errors"
	"fmt"
	"time"
)

// Axis is the paging dimension
type Axis int

const (
	// Horizontal pages along the x axis
	Horizontal Axis = iota
	// Vertical pages along the y axis
	Vertical
)

// String returns the config name of the axis
func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ParseAxis converts a config name into an Axis
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "", "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown direction %q", s)
}

// Default settings
const (
	DefaultPreloadRadius   = 3
	DefaultDistanceFromEnd = 3

	// SettleInterval is the quiet period after the last position update
	// before an interaction counts as settled.
	SettleInterval = 100 * time.Millisecond
)

// Configuration errors
var (
	ErrInvalidRadius   = errors.New("preload radius must not be negative")
	ErrInvalidDistance = errors.New("load-more distance must not be negative")
	ErrInvalidZoom     = errors.New("zoom range is invalid")
)

// LoadMore describes when the load-more callback fires
type LoadMore struct {
	// DistanceFromEnd fires load-more once current+distance reaches the last index
	DistanceFromEnd int
}

// DoubleTap describes the double tap behaviour
type DoubleTap struct {
	// Scale is the share of the zoom range a double tap zooms to; zero
	// disables the gesture
	Scale float64
}

// Enabled reports whether double tap zooms at all
func (d DoubleTap) Enabled() bool {
	return d.Scale > 0
}

// Config is the per-session pager configuration. The callbacks double as
// capability toggles: a nil callback disables the matching behaviour.
type Config struct {
	PreloadRadius int
	Direction     Axis
	LoadMoreOn    LoadMore

	MinZoom   float64
	MaxZoom   float64
	DoubleTap DoubleTap

	// Dismiss gesture tuning
	DismissVelocity          float64
	DismissTriggerOffset     float64
	DismissAnimationLength   time.Duration
	FullFadeOnDragAt         float64
	PinchGestureEnableOffset float64

	OnDismiss  func()
	OnTap      func()
	OnLoadMore func()
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		PreloadRadius:            DefaultPreloadRadius,
		Direction:                Horizontal,
		LoadMoreOn:               LoadMore{DistanceFromEnd: DefaultDistanceFromEnd},
		MinZoom:                  1,
		MaxZoom:                  1,
		DismissVelocity:          1.3,
		DismissTriggerOffset:     0.1,
		DismissAnimationLength:   200 * time.Millisecond,
		FullFadeOnDragAt:         0.2,
		PinchGestureEnableOffset: 10,
		DoubleTap:                DoubleTap{Scale: 0.5},
	}
}

// Validate checks the configuration for values the engine cannot honour
func (c Config) Validate() error {
	if c.PreloadRadius < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRadius, c.PreloadRadius)
	}
	if c.LoadMoreOn.DistanceFromEnd < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDistance, c.LoadMoreOn.DistanceFromEnd)
	}
	if c.DoubleTap.Scale < 0 || c.DoubleTap.Scale > 1 {
		return fmt.Errorf("%w: double tap scale %v outside [0,1]", ErrInvalidZoom, c.DoubleTap.Scale)
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		return fmt.Errorf("%w: min=%v max=%v", ErrInvalidZoom, c.MinZoom, c.MaxZoom)
	}
	return nil
}

// DismissEnabled reports whether the dismiss gesture is active. Dismissing
// only makes sense across the paging axis, so vertical pagers never dismiss.
func (c Config) DismissEnabled() bool {
	return c.OnDismiss != nil && c.Direction == Horizontal
}

// Zoomable reports whether pages can be zoomed
func (c Config) Zoomable() bool {
	return c.MaxZoom > c.MinZoom
}
