// Package viewport converts between screen space and world space and owns the
// pan/zoom state of a plan view.
//
// Screen space is the pixel space of input events. World space is the fixed logical
// space entities are stored in. The mapping is
//
//	world = (screen - pan) / scale + origin
//
// where origin is the top-left corner of the framed view when one is active and the
// world origin otherwise.
package viewport

import (
	"math"

	"storeplan/internal/domain"
)

// Limits bounds the zoom level and the pan offset
type Limits struct {
	MinZoom     float64
	MaxZoom     float64
	DefaultZoom float64
	// PanMargin is the extra hard pan allowance beyond the scaled world
	PanMargin float64
	// SoftMargin is the overscroll tolerated while panning or coasting
	SoftMargin float64
}

// DefaultLimits returns the reference limits
func DefaultLimits() Limits {
	return Limits{
		MinZoom:     0.5,
		MaxZoom:     3.0,
		DefaultZoom: 1.0,
		PanMargin:   100,
		SoftMargin:  50,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MinZoom > 0 {
		d.MinZoom = l.MinZoom
	}
	if l.MaxZoom > 0 {
		d.MaxZoom = l.MaxZoom
	}
	if d.MaxZoom < d.MinZoom {
		d.MaxZoom = d.MinZoom
	}
	if l.DefaultZoom > 0 {
		d.DefaultZoom = l.DefaultZoom
	}
	d.DefaultZoom = domain.Clamp(d.DefaultZoom, d.MinZoom, d.MaxZoom)
	if l.PanMargin > 0 {
		d.PanMargin = l.PanMargin
	}
	if l.SoftMargin > 0 {
		d.SoftMargin = l.SoftMargin
	}
	return d
}

// State is the transform part of a viewport. It is a value so snapshots can be
// compared before and after an update.
type State struct {
	Pan    domain.Point `json:"pan"`
	Scale  float64      `json:"scale"`
	Origin domain.Point `json:"origin"`
}

// ToWorld maps a screen point to world space
func (s State) ToWorld(p domain.Point) domain.Point {
	return domain.Point{
		X: (p.X-s.Pan.X)/s.Scale + s.Origin.X,
		Y: (p.Y-s.Pan.Y)/s.Scale + s.Origin.Y,
	}
}

// ToScreen maps a world point to screen space
func (s State) ToScreen(p domain.Point) domain.Point {
	return domain.Point{
		X: (p.X-s.Origin.X)*s.Scale + s.Pan.X,
		Y: (p.Y-s.Origin.Y)*s.Scale + s.Pan.Y,
	}
}

// RectToScreen maps a world rectangle to screen space
func (s State) RectToScreen(r domain.Rect) domain.Rect {
	min := s.ToScreen(r.Min())
	return domain.Rect{X: min.X, Y: min.Y, Width: r.Width * s.Scale, Height: r.Height * s.Scale}
}

// ToWorld is the free-function form of State.ToWorld
func ToWorld(p domain.Point, s State) domain.Point { return s.ToWorld(p) }

// ToScreen is the free-function form of State.ToScreen
func ToScreen(p domain.Point, s State) domain.Point { return s.ToScreen(p) }

// Viewport holds the live pan/zoom state of one view instance
type Viewport struct {
	State
	Limits Limits
	// World is the full world size
	World domain.Size
	// Screen is the assumed size of the drawing surface
	Screen domain.Size
	// Framed restricts the view to a sub-rectangle of the world
	Framed *domain.Rect
}

// New creates a viewport at the default zoom with no pan
func New(world, screen domain.Size, limits Limits) *Viewport {
	if world.Width <= 0 || world.Height <= 0 {
		world = domain.DefaultWorldSize
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		screen = world
	}
	limits = limits.withDefaults()
	return &Viewport{
		State:  State{Scale: limits.DefaultZoom},
		Limits: limits,
		World:  world,
		Screen: screen,
	}
}

// Extent is the size of the region pan bounds are computed against:
// the framed view when one is active, the whole world otherwise
func (v *Viewport) Extent() domain.Size {
	if v.Framed != nil {
		return domain.Size{Width: v.Framed.Width, Height: v.Framed.Height}
	}
	return v.World
}

// MaxPan returns the hard pan bound per axis at the current scale
func (v *Viewport) MaxPan() domain.Point {
	ext := v.Extent()
	return domain.Point{
		X: math.Max(0, (ext.Width*v.Scale-v.Screen.Width)/2+v.Limits.PanMargin),
		Y: math.Max(0, (ext.Height*v.Scale-v.Screen.Height)/2+v.Limits.PanMargin),
	}
}

// Center returns the pan that centers the extent on screen. Pan bounds are
// measured from it, so every edge of a zoomed-in world stays reachable.
func (v *Viewport) Center() domain.Point {
	ext := v.Extent()
	return domain.Point{
		X: (v.Screen.Width - ext.Width*v.Scale) / 2,
		Y: (v.Screen.Height - ext.Height*v.Scale) / 2,
	}
}

// ClampSoft limits pan to the hard bounds widened by the soft margin
func (v *Viewport) ClampSoft() {
	v.clampPan(v.Limits.SoftMargin)
}

// ClampHard limits pan to the hard bounds
func (v *Viewport) ClampHard() {
	v.clampPan(0)
}

func (v *Viewport) clampPan(extra float64) {
	m, c := v.MaxPan(), v.Center()
	v.Pan.X = domain.Clamp(v.Pan.X, c.X-m.X-extra, c.X+m.X+extra)
	v.Pan.Y = domain.Clamp(v.Pan.Y, c.Y-m.Y-extra, c.Y+m.Y+extra)
}

// PanBy translates the view by a screen delta with edge resistance
func (v *Viewport) PanBy(delta domain.Point) {
	v.Pan = v.Pan.Add(delta)
	v.ClampSoft()
}

// Zoom changes the scale by delta while keeping center (a screen point) fixed.
// The world point under center is the same before and after the call.
func (v *Viewport) Zoom(delta float64, center domain.Point) {
	newScale := domain.Clamp(v.Scale+delta, v.Limits.MinZoom, v.Limits.MaxZoom)
	if newScale == v.Scale {
		return
	}
	ratio := newScale / v.Scale
	v.Pan = domain.Point{
		X: center.X - (center.X-v.Pan.X)*ratio,
		Y: center.Y - (center.Y-v.Pan.Y)*ratio,
	}
	v.Scale = newScale
}

// Recenter restores the default zoom and removes any pan
func (v *Viewport) Recenter() {
	v.Scale = v.Limits.DefaultZoom
	v.Pan = domain.Point{}
}

// SetScreen updates the assumed drawing surface size
func (v *Viewport) SetScreen(s domain.Size) {
	if s.Width <= 0 || s.Height <= 0 {
		return
	}
	v.Screen = s
}

// Frame restricts the view to r and fits it on screen.
// A nil r removes the restriction and recenters.
func (v *Viewport) Frame(r *domain.Rect) {
	if r == nil {
		v.Framed = nil
		v.Origin = domain.Point{}
		v.Recenter()
		return
	}
	fr := domain.NormalizeFramedView(*r)
	v.Framed = &fr
	v.Origin = fr.Min()

	scale := math.Min(v.Screen.Width/fr.Width, v.Screen.Height/fr.Height)
	v.Scale = domain.Clamp(scale, v.Limits.MinZoom, v.Limits.MaxZoom)
	v.Pan = v.Center()
}

// Snapshot returns a copy of the transform
func (v *Viewport) Snapshot() State {
	return v.State
}
