package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "GEOSTORM_"

// Load builds a configuration from defaults, the TOML file at path, and
// GEOSTORM_* environment variables, then validates the result. A missing
// file is not an error; an empty path skips the file layer entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays GEOSTORM_* variables onto the config. Empty values
// are ignored so `GEOSTORM_X= cmd` does not clobber a file setting.
func applyEnv(cfg *Config) error {
	for _, ov := range envOverrides {
		raw, ok := os.LookupEnv(EnvPrefix + ov.suffix)
		if !ok || raw == "" {
			continue
		}
		if err := ov.apply(cfg, raw); err != nil {
			return fmt.Errorf("environment %s%s: %w", EnvPrefix, ov.suffix, err)
		}
	}
	return nil
}

type envOverride struct {
	suffix string
	apply  func(*Config, string) error
}

var envOverrides = []envOverride{
	{"HISTORY_MAX_ENTRIES", func(c *Config, v string) error {
		return setInt(&c.History.MaxEntries, v)
	}},
	{"SIMPLIFY_TOLERANCE", func(c *Config, v string) error {
		return setFloat(&c.Simplify.Tolerance, v)
	}},
	{"SIMPLIFY_LADDER", func(c *Config, v string) error {
		ladder, err := parseFloatList(v)
		if err != nil {
			return err
		}
		c.Simplify.Ladder = ladder
		return nil
	}},
	{"SCALE_MIN_FACTOR", func(c *Config, v string) error {
		return setFloat(&c.Scale.MinFactor, v)
	}},
	{"SCALE_MAX_FACTOR", func(c *Config, v string) error {
		return setFloat(&c.Scale.MaxFactor, v)
	}},
	{"SCALE_ANCHOR_OPPOSITE", func(c *Config, v string) error {
		return setBool(&c.Scale.AnchorOpposite, v)
	}},
	{"COPY_OFFSET_X", func(c *Config, v string) error {
		return setFloat(&c.Copy.OffsetX, v)
	}},
	{"COPY_OFFSET_Y", func(c *Config, v string) error {
		return setFloat(&c.Copy.OffsetY, v)
	}},
	{"LASSO_MODE", func(c *Config, v string) error {
		c.Lasso.Mode = strings.ToLower(strings.TrimSpace(v))
		return nil
	}},
	{"SPLIT_CORRIDOR_WIDTH", func(c *Config, v string) error {
		return setFloat(&c.Split.CorridorWidth, v)
	}},
	{"SNAP_ENABLED", func(c *Config, v string) error {
		return setBool(&c.Snap.Enabled, v)
	}},
	{"SNAP_TOLERANCE", func(c *Config, v string) error {
		return setFloat(&c.Snap.Tolerance, v)
	}},
	{"POINTER_DOUBLE_CLICK_TIME", func(c *Config, v string) error {
		c.Pointer.DoubleClickTime = strings.TrimSpace(v)
		return nil
	}},
	{"POINTER_DOUBLE_CLICK_DISTANCE", func(c *Config, v string) error {
		return setInt(&c.Pointer.DoubleClickDistance, v)
	}},
	{"POINTER_HIT_BOX_SIZE", func(c *Config, v string) error {
		return setInt(&c.Pointer.HitBoxSize, v)
	}},
	{"LOG_LEVEL", func(c *Config, v string) error {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
		return nil
	}},
}

func setInt(dst *int, raw string) error {
	v, err := cast.ToIntE(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, raw string) error {
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setBool(dst *bool, raw string) error {
	v, err := cast.ToBoolE(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// parseFloatList parses a comma-separated list like "1e-6,1e-4,0.01".
func parseFloatList(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := cast.ToFloat64E(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
