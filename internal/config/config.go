// Package config provides configuration management for storeplan.
//
// The config file tunes the server and the interaction feel; the layout itself
// lives in the database (and optionally a watched YAML file).
//
// Config file locations (priority order):
//  1. $STOREPLAN_CONFIG
//  2. ./storeplan.yaml
//  3. $XDG_CONFIG_HOME/storeplan/config.yaml
//  4. ~/.config/storeplan/config.yaml
//  5. /etc/storeplan/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"storeplan/internal/domain"
	"storeplan/internal/engine"
	"storeplan/internal/manipulate"
	"storeplan/internal/momentum"
	"storeplan/internal/viewport"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	limits := viewport.DefaultLimits()
	manip := manipulate.DefaultOptions()
	return &Config{
		Version:  1,
		Mode:     ModeViewer,
		Server:   ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{Path: "./storeplan.db"},
		World: WorldConfig{
			Width:  domain.DefaultWorldSize.Width,
			Height: domain.DefaultWorldSize.Height,
		},
		Viewport: ViewportConfig{
			MinZoom:     limits.MinZoom,
			MaxZoom:     limits.MaxZoom,
			DefaultZoom: limits.DefaultZoom,
			PanMargin:   limits.PanMargin,
			SoftMargin:  limits.SoftMargin,
		},
		Gesture: GestureConfig{
			PinchSensitivity: 0.005,
			PinchPanFactor:   0.8,
			WheelSensitivity: 0.001,
			DragThreshold:    5,
			MaxVelocityAge:   Duration(100 * time.Millisecond),
		},
		Momentum: MomentumConfig{Feel: FeelStandard},
		Manipulation: ManipulationConfig{
			MinSize:           manip.MinSize,
			MoveSensitivity:   manip.MoveSensitivity,
			ResizeSensitivity: manip.ResizeSensitivity,
			NudgeStep:         manip.NudgeStep,
			ResizeStep:        manip.ResizeStep,
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}
	c.Mode = ParseMode(string(c.Mode))
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		c.World = d.World
	}
	c.Momentum.Feel = ParseFeel(string(c.Momentum.Feel))

	// Zero tunables fall through to the engine's reference values
	if c.Gesture.MaxVelocityAge <= 0 {
		c.Gesture.MaxVelocityAge = d.Gesture.MaxVelocityAge
	}
}

// EffectiveMomentum returns the feel's profile with overrides applied
func (c *Config) EffectiveMomentum() MomentumProfile {
	base := c.Momentum.Feel.GetProfile()

	if c.Momentum.Friction != nil {
		base.Friction = *c.Momentum.Friction
	}
	if c.Momentum.StopThreshold != nil {
		base.StopThreshold = *c.Momentum.StopThreshold
	}
	if c.Momentum.Interval != nil {
		base.Interval = c.Momentum.Interval.Duration()
	}

	return base
}

// WorldSize returns the configured logical plan size
func (c *Config) WorldSize() domain.Size {
	return domain.Size{Width: c.World.Width, Height: c.World.Height}
}

// EngineOptions converts the config into engine options.
// The scheduler and clock are left for the engine to default.
func (c *Config) EngineOptions() engine.Options {
	m := c.EffectiveMomentum()
	return engine.Options{
		World: c.WorldSize(),
		Limits: viewport.Limits{
			MinZoom:     c.Viewport.MinZoom,
			MaxZoom:     c.Viewport.MaxZoom,
			DefaultZoom: c.Viewport.DefaultZoom,
			PanMargin:   c.Viewport.PanMargin,
			SoftMargin:  c.Viewport.SoftMargin,
		},
		Manipulation: manipulate.Options{
			MinSize:           c.Manipulation.MinSize,
			MoveSensitivity:   c.Manipulation.MoveSensitivity,
			ResizeSensitivity: c.Manipulation.ResizeSensitivity,
			NudgeStep:         c.Manipulation.NudgeStep,
			ResizeStep:        c.Manipulation.ResizeStep,
		},
		Momentum: momentum.Options{
			Friction:      m.Friction,
			StopThreshold: m.StopThreshold,
			Interval:      m.Interval,
		},
		PinchSensitivity: c.Gesture.PinchSensitivity,
		PinchPanFactor:   c.Gesture.PinchPanFactor,
		WheelSensitivity: c.Gesture.WheelSensitivity,
		DragThreshold:    c.Gesture.DragThreshold,
		MaxVelocityAge:   c.Gesture.MaxVelocityAge.Duration(),
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	m := c.EffectiveMomentum()

	summary := fmt.Sprintf("Mode: %s, Feel: %s\n", c.Mode, c.Momentum.Feel)
	summary += fmt.Sprintf("World: %gx%g, Zoom: %g-%g\n",
		c.World.Width, c.World.Height, c.Viewport.MinZoom, c.Viewport.MaxZoom)
	summary += fmt.Sprintf("Momentum: friction %g, stop %g, tick %s", m.Friction, m.StopThreshold, m.Interval)
	if c.Layout.File != "" {
		summary += fmt.Sprintf("\nLayout file: %s (watch: %v)", c.Layout.File, c.Layout.Watch)
	}

	return summary
}
