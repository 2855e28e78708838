package config

import "time"

// Mode selects how a viewer starts: read-only or editable
type Mode string

const (
	ModeViewer Mode = "viewer" // pan, zoom, framed view only
	ModeEditor Mode = "editor" // + drag, resize, create, rubber-band framing
)

// ParseMode converts a string to Mode, defaulting to ModeViewer
func ParseMode(s string) Mode {
	switch s {
	case "editor", "edit":
		return ModeEditor
	default:
		return ModeViewer
	}
}

// Level returns numeric level for comparison (higher = more capabilities)
func (m Mode) Level() int {
	switch m {
	case ModeEditor:
		return 1
	default:
		return 0
	}
}

// Allows returns true if this mode allows the given mode's capabilities
func (m Mode) Allows(required Mode) bool {
	return m.Level() >= required.Level()
}

// Feel defines how much a released pan keeps coasting
type Feel string

const (
	FeelSnappy   Feel = "snappy"   // short glide
	FeelStandard Feel = "standard" // reference tuning
	FeelSmooth   Feel = "smooth"   // long glide
)

// ParseFeel converts a string to Feel, defaulting to FeelStandard
func ParseFeel(s string) Feel {
	switch s {
	case "snappy":
		return FeelSnappy
	case "smooth":
		return FeelSmooth
	default:
		return FeelStandard
	}
}

// MomentumProfile defines the momentum tuning of a feel
type MomentumProfile struct {
	Friction      float64       `yaml:"friction"`
	StopThreshold float64       `yaml:"stop_threshold"`
	Interval      time.Duration `yaml:"interval"`
}

// GetProfile returns the momentum profile for this feel
func (f Feel) GetProfile() MomentumProfile {
	switch f {
	case FeelSnappy:
		return MomentumProfile{
			Friction:      0.85,
			StopThreshold: 0.5,
			Interval:      16 * time.Millisecond,
		}
	case FeelSmooth:
		return MomentumProfile{
			Friction:      0.975,
			StopThreshold: 0.05,
			Interval:      16 * time.Millisecond,
		}
	default:
		return MomentumProfile{
			Friction:      0.95,
			StopThreshold: 0.1,
			Interval:      16 * time.Millisecond,
		}
	}
}
