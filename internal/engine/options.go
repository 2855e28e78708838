package engine

import (
	"time"

	"storeplan/internal/domain"
	"storeplan/internal/manipulate"
	"storeplan/internal/momentum"
	"storeplan/internal/viewport"
)

// Options configures an Engine. Zero fields take the reference values.
type Options struct {
	// World is the fixed logical plan size shared by every consumer of the layout
	World domain.Size
	// Screen is the initial drawing surface size
	Screen domain.Size

	Limits       viewport.Limits
	Manipulation manipulate.Options
	Momentum     momentum.Options

	// PinchSensitivity converts a change in finger distance to a scale delta
	PinchSensitivity float64
	// PinchPanFactor scales the midpoint movement of a pinch into pan
	PinchPanFactor float64
	// WheelSensitivity converts wheel deltaY to a scale delta
	WheelSensitivity float64
	// DragThreshold is how far a pointer must travel, in pixels, before a press
	// counts as a drag rather than a tap
	DragThreshold float64
	// MaxVelocityAge is how old the last pan sample may be at release and still
	// seed momentum
	MaxVelocityAge time.Duration
	// MinFramedView is the smallest rubber-band selection in world units
	MinFramedView float64

	// Scheduler drives momentum ticks. Defaults to a time.Ticker goroutine.
	Scheduler momentum.Scheduler
	// Now stamps events that carry no time
	Now func() time.Time
}

// DefaultOptions returns the reference tuning
func DefaultOptions() Options {
	return Options{
		World:            domain.DefaultWorldSize,
		Screen:           domain.DefaultWorldSize,
		Limits:           viewport.DefaultLimits(),
		Manipulation:     manipulate.DefaultOptions(),
		Momentum:         momentum.DefaultOptions(),
		PinchSensitivity: 0.005,
		PinchPanFactor:   0.8,
		WheelSensitivity: 0.001,
		DragThreshold:    5,
		MaxVelocityAge:   100 * time.Millisecond,
		MinFramedView:    domain.MinFramedViewSize,
		Scheduler:        momentum.TickerScheduler{},
		Now:              time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.World.Width > 0 && o.World.Height > 0 {
		d.World = o.World
	}
	if o.Screen.Width > 0 && o.Screen.Height > 0 {
		d.Screen = o.Screen
	} else {
		d.Screen = d.World
	}
	d.Limits = o.Limits
	d.Manipulation = o.Manipulation
	d.Momentum = o.Momentum
	if o.PinchSensitivity > 0 {
		d.PinchSensitivity = o.PinchSensitivity
	}
	if o.PinchPanFactor > 0 {
		d.PinchPanFactor = o.PinchPanFactor
	}
	if o.WheelSensitivity > 0 {
		d.WheelSensitivity = o.WheelSensitivity
	}
	if o.DragThreshold > 0 {
		d.DragThreshold = o.DragThreshold
	}
	if o.MaxVelocityAge > 0 {
		d.MaxVelocityAge = o.MaxVelocityAge
	}
	if o.MinFramedView > 0 {
		d.MinFramedView = o.MinFramedView
	}
	if o.Scheduler != nil {
		d.Scheduler = o.Scheduler
	}
	if o.Now != nil {
		d.Now = o.Now
	}
	return d
}

// Callbacks receive engine output. Each is optional and gets the full updated
// object. They run synchronously while the engine is locked and must not call
// back into it.
type Callbacks struct {
	OnEntityChanged         func(domain.Entity)
	OnEntityCreated         func(domain.Entity)
	OnGraphicElementChanged func(domain.GraphicElement)
	OnFramedViewChanged     func(domain.Rect)
	// OnHover gets nil when the pointer is over no entity
	OnHover func(e *domain.Entity, screen domain.Point)
	// OnSelect gets nil when the selection is cleared
	OnSelect          func(e *domain.Entity)
	OnViewportChanged func(viewport.State)
}
