// Package manipulate applies move, resize, keyboard and create operations to entities.
//
// Every operation takes an entity by value and returns the full updated entity, so the
// caller can hand the result to persistence without assuming partial updates. All
// operations keep the geometry invariants: width and height never drop below MinSize
// and x, y never go negative.
package manipulate

import "storeplan/internal/domain"

// Options tunes the manipulation rules
type Options struct {
	// MinSize is the smallest width/height in world units
	MinSize float64
	// MoveSensitivity amplifies raw drag deltas
	MoveSensitivity float64
	// ResizeSensitivity amplifies raw resize deltas
	ResizeSensitivity float64
	// NudgeStep is the keyboard move step in world units
	NudgeStep float64
	// ResizeStep is the keyboard resize step in world units
	ResizeStep float64
}

// DefaultOptions returns the reference tuning
func DefaultOptions() Options {
	return Options{
		MinSize:           domain.MinEntitySize,
		MoveSensitivity:   1.5,
		ResizeSensitivity: 1.2,
		NudgeStep:         1,
		ResizeStep:        10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinSize > 0 {
		d.MinSize = o.MinSize
	}
	if o.MoveSensitivity > 0 {
		d.MoveSensitivity = o.MoveSensitivity
	}
	if o.ResizeSensitivity > 0 {
		d.ResizeSensitivity = o.ResizeSensitivity
	}
	if o.NudgeStep > 0 {
		d.NudgeStep = o.NudgeStep
	}
	if o.ResizeStep > 0 {
		d.ResizeStep = o.ResizeStep
	}
	return d
}

// Manipulator applies geometry changes inside a fixed world
type Manipulator struct {
	opts  Options
	world domain.Size
}

// New creates a manipulator for a world of the given size
func New(world domain.Size, opts Options) *Manipulator {
	if world.Width <= 0 || world.Height <= 0 {
		world = domain.DefaultWorldSize
	}
	return &Manipulator{opts: opts.withDefaults(), world: world}
}

// Options returns the effective options
func (m *Manipulator) Options() Options {
	return m.opts
}

// World returns the world size
func (m *Manipulator) World() domain.Size {
	return m.world
}

// MoveBy translates an entity by a raw screen delta, amplified by MoveSensitivity and
// kept inside the world.
func (m *Manipulator) MoveBy(e domain.Entity, dx, dy float64) domain.Entity {
	k := m.opts.MoveSensitivity
	e.Rect.X = m.clampX(e.Rect, e.Rect.X+dx*k)
	e.Rect.Y = m.clampY(e.Rect, e.Rect.Y+dy*k)
	return e
}

// MoveTo places an entity's top-left corner at p, kept inside the world
func (m *Manipulator) MoveTo(e domain.Entity, p domain.Point) domain.Entity {
	e.Rect.X = m.clampX(e.Rect, p.X)
	e.Rect.Y = m.clampY(e.Rect, p.Y)
	return e
}

// clampX keeps x in [0, worldWidth-width]. An entity wider than the world sticks to 0.
func (m *Manipulator) clampX(r domain.Rect, x float64) float64 {
	return domain.Clamp(x, 0, m.world.Width-r.Width)
}

func (m *Manipulator) clampY(r domain.Rect, y float64) float64 {
	return domain.Clamp(y, 0, m.world.Height-r.Height)
}

// Normalize repairs an entity that violates the geometry invariants
func (m *Manipulator) Normalize(e domain.Entity) domain.Entity {
	if e.Rect.Width < m.opts.MinSize {
		e.Rect.Width = m.opts.MinSize
	}
	if e.Rect.Height < m.opts.MinSize {
		e.Rect.Height = m.opts.MinSize
	}
	if e.Rect.X < 0 {
		e.Rect.X = 0
	}
	if e.Rect.Y < 0 {
		e.Rect.Y = 0
	}
	return e
}

// Create builds a new entity of kind centered on a world point, using the kind's
// default size and the next free id.
func (m *Manipulator) Create(kind domain.EntityKind, at domain.Point, existing []domain.Entity) domain.Entity {
	spec := kind.Spec()
	e := domain.NewEntity(domain.NextEntityID(kind, existing), kind, domain.Rect{
		Width:  spec.DefaultSize.Width,
		Height: spec.DefaultSize.Height,
	})
	*e = m.Normalize(*e)
	return m.MoveTo(*e, domain.Point{
		X: at.X - e.Rect.Width/2,
		Y: at.Y - e.Rect.Height/2,
	})
}
