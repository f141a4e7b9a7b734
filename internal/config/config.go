// Package config holds the editing engine's tunable knobs: history depth,
// simplify tolerances, scale clamps, gesture thresholds, logging. Values
// come from defaults, then a TOML file, then GEOSTORM_* environment
// variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Lasso selection modes.
const (
	// LassoContain selects features fully inside the lasso ring.
	LassoContain = "contain"

	// LassoIntersect selects features the lasso ring touches at all.
	LassoIntersect = "intersect"
)

// Config is the full engine configuration.
type Config struct {
	History  HistoryConfig  `toml:"history"`
	Simplify SimplifyConfig `toml:"simplify"`
	Scale    ScaleConfig    `toml:"scale"`
	Copy     CopyConfig     `toml:"copy"`
	Lasso    LassoConfig    `toml:"lasso"`
	Split    SplitConfig    `toml:"split"`
	Snap     SnapConfig     `toml:"snap"`
	Pointer  PointerConfig  `toml:"pointer"`
	Log      LogConfig      `toml:"log"`
}

// HistoryConfig bounds the undo stack.
type HistoryConfig struct {
	// MaxEntries is the maximum number of undo entries. Oldest entries
	// are evicted beyond it.
	MaxEntries int `toml:"max_entries"`
}

// SimplifyConfig controls vertex reduction.
type SimplifyConfig struct {
	// Tolerance is the default simplification tolerance in map units.
	Tolerance float64 `toml:"tolerance"`

	// Ladder is the escalating tolerance sequence tried when the default
	// tolerance removes nothing.
	Ladder []float64 `toml:"ladder"`
}

// ScaleConfig clamps interactive scale factors.
type ScaleConfig struct {
	MinFactor float64 `toml:"min_factor"`
	MaxFactor float64 `toml:"max_factor"`

	// AnchorOpposite scales from the corner opposite the dragged handle
	// instead of the selection center.
	AnchorOpposite bool `toml:"anchor_opposite"`
}

// CopyConfig sets the paste offset in map units.
type CopyConfig struct {
	OffsetX float64 `toml:"offset_x"`
	OffsetY float64 `toml:"offset_y"`
}

// LassoConfig controls lasso selection.
type LassoConfig struct {
	// Mode is "contain" or "intersect".
	Mode string `toml:"mode"`
}

// SplitConfig controls polygon splitting.
type SplitConfig struct {
	// CorridorWidth is the width of the cut corridor in map units.
	// Zero means derive it from the target's bounding box.
	CorridorWidth float64 `toml:"corridor_width"`
}

// SnapConfig controls vertex snapping while drawing.
type SnapConfig struct {
	Enabled bool `toml:"enabled"`

	// Tolerance is the snap radius in map units.
	Tolerance float64 `toml:"tolerance"`
}

// PointerConfig holds pointer gesture thresholds in screen units.
type PointerConfig struct {
	// DoubleClickTime is the maximum gap between clicks, as a duration
	// string such as "400ms".
	DoubleClickTime string `toml:"double_click_time"`

	// DoubleClickDistance is the maximum Manhattan distance in pixels
	// between two clicks of a double-click.
	DoubleClickDistance int `toml:"double_click_distance"`

	// HitBoxSize is the hit-test tolerance in pixels around the cursor.
	HitBoxSize int `toml:"hit_box_size"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a logrus level name: "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() Config {
	return Config{
		History:  HistoryConfig{MaxEntries: 1000},
		Simplify: SimplifyConfig{Tolerance: 1e-6, Ladder: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2}},
		Scale:    ScaleConfig{MinFactor: 0.1, MaxFactor: 10},
		Copy:     CopyConfig{OffsetX: 10, OffsetY: 10},
		Lasso:    LassoConfig{Mode: LassoContain},
		Split:    SplitConfig{CorridorWidth: 0},
		Snap:     SnapConfig{Enabled: true, Tolerance: 0.5},
		Pointer:  PointerConfig{DoubleClickTime: "400ms", DoubleClickDistance: 5, HitBoxSize: 8},
		Log:      LogConfig{Level: "info"},
	}
}

// DoubleClickTimeout parses the double-click gap, falling back to the
// default when the string is empty or malformed.
func (p PointerConfig) DoubleClickTimeout() time.Duration {
	d, err := time.ParseDuration(p.DoubleClickTime)
	if err != nil || d <= 0 {
		return 400 * time.Millisecond
	}
	return d
}

// LogrusLevel parses the configured level, falling back to info.
func (l LogConfig) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Validate checks every knob and returns the first violation found.
func (c *Config) Validate() error {
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be positive, got %d", c.History.MaxEntries)
	}
	if c.Simplify.Tolerance <= 0 {
		return fmt.Errorf("simplify.tolerance must be positive, got %g", c.Simplify.Tolerance)
	}
	for i, tol := range c.Simplify.Ladder {
		if tol <= 0 {
			return fmt.Errorf("simplify.ladder[%d] must be positive, got %g", i, tol)
		}
		if i > 0 && tol <= c.Simplify.Ladder[i-1] {
			return fmt.Errorf("simplify.ladder must be strictly increasing, got %g after %g", tol, c.Simplify.Ladder[i-1])
		}
	}
	if c.Scale.MinFactor <= 0 {
		return fmt.Errorf("scale.min_factor must be positive, got %g", c.Scale.MinFactor)
	}
	if c.Scale.MaxFactor < c.Scale.MinFactor {
		return fmt.Errorf("scale.max_factor %g is below scale.min_factor %g", c.Scale.MaxFactor, c.Scale.MinFactor)
	}
	if c.Lasso.Mode != LassoContain && c.Lasso.Mode != LassoIntersect {
		return fmt.Errorf("lasso.mode must be %q or %q, got %q", LassoContain, LassoIntersect, c.Lasso.Mode)
	}
	if c.Split.CorridorWidth < 0 {
		return fmt.Errorf("split.corridor_width must not be negative, got %g", c.Split.CorridorWidth)
	}
	if c.Snap.Tolerance < 0 {
		return fmt.Errorf("snap.tolerance must not be negative, got %g", c.Snap.Tolerance)
	}
	if c.Pointer.DoubleClickTime != "" {
		d, err := time.ParseDuration(c.Pointer.DoubleClickTime)
		if err != nil {
			return fmt.Errorf("pointer.double_click_time: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("pointer.double_click_time must be positive, got %s", d)
		}
	}
	if c.Pointer.DoubleClickDistance < 0 {
		return fmt.Errorf("pointer.double_click_distance must not be negative, got %d", c.Pointer.DoubleClickDistance)
	}
	if c.Pointer.HitBoxSize <= 0 {
		return fmt.Errorf("pointer.hit_box_size must be positive, got %d", c.Pointer.HitBoxSize)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
