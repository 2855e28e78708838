package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version      int                `yaml:"version"`
	Mode         Mode               `yaml:"mode"`
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	World        WorldConfig        `yaml:"world"`
	Viewport     ViewportConfig     `yaml:"viewport"`
	Gesture      GestureConfig      `yaml:"gesture"`
	Momentum     MomentumConfig     `yaml:"momentum"`
	Manipulation ManipulationConfig `yaml:"manipulation"`
	Layout       LayoutConfig       `yaml:"layout"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AllowOrigins lists CORS origins; empty allows any origin
	AllowOrigins []string `yaml:"allow_origins,omitempty"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WorldConfig is the logical plan size shared by every consumer of the layout
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ViewportConfig bounds zoom and pan
type ViewportConfig struct {
	MinZoom     float64 `yaml:"min_zoom"`
	MaxZoom     float64 `yaml:"max_zoom"`
	DefaultZoom float64 `yaml:"default_zoom"`
	PanMargin   float64 `yaml:"pan_margin"`
	SoftMargin  float64 `yaml:"soft_margin"`
}

// GestureConfig tunes pointer and wheel input
type GestureConfig struct {
	PinchSensitivity float64  `yaml:"pinch_sensitivity"`
	PinchPanFactor   float64  `yaml:"pinch_pan_factor"`
	WheelSensitivity float64  `yaml:"wheel_sensitivity"`
	DragThreshold    float64  `yaml:"drag_threshold"`
	MaxVelocityAge   Duration `yaml:"max_velocity_age"`
}

// MomentumConfig picks a feel and optionally overrides parts of it
type MomentumConfig struct {
	Feel          Feel      `yaml:"feel"`
	Friction      *float64  `yaml:"friction,omitempty"`
	StopThreshold *float64  `yaml:"stop_threshold,omitempty"`
	Interval      *Duration `yaml:"interval,omitempty"`
}

// ManipulationConfig tunes entity editing
type ManipulationConfig struct {
	MinSize           float64 `yaml:"min_size"`
	MoveSensitivity   float64 `yaml:"move_sensitivity"`
	ResizeSensitivity float64 `yaml:"resize_sensitivity"`
	NudgeStep         float64 `yaml:"nudge_step"`
	ResizeStep        float64 `yaml:"resize_step"`
}

// LayoutConfig points at a YAML layout file kept in sync with the database
type LayoutConfig struct {
	// File is imported at startup and re-imported when it changes. Empty disables it.
	File  string `yaml:"file,omitempty"`
	Watch bool   `yaml:"watch"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
