package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinEntitySize is the smallest width or height an entity may have, in world units
const MinEntitySize = 20.0

// EntityKind represents the variant of a display unit
type EntityKind string

const (
	EntityKindGondola EntityKind = "gondola" // Primary display unit
	EntityKindEndcap  EntityKind = "endcap"  // End-cap display unit

	// Extended kinds are carried for presentation only
	EntityKindCheckout EntityKind = "checkout"
	EntityKindPillar   EntityKind = "pillar"
	EntityKindFridge   EntityKind = "fridge"
)

// EntityStatus represents the occupancy of a display unit.
// The engine never changes it.
type EntityStatus string

const (
	EntityStatusAvailable EntityStatus = "available"
	EntityStatusOccupied  EntityStatus = "occupied"
)

// KindSpec describes how new entities of a kind are created
type KindSpec struct {
	Prefix      string
	DefaultSize Size
}

var kindSpecs = map[EntityKind]KindSpec{
	EntityKindGondola:  {Prefix: "g", DefaultSize: Size{Width: 140, Height: 60}},
	EntityKindEndcap:   {Prefix: "c", DefaultSize: Size{Width: 60, Height: 40}},
	EntityKindCheckout: {Prefix: "k", DefaultSize: Size{Width: 80, Height: 50}},
	EntityKindPillar:   {Prefix: "p", DefaultSize: Size{Width: 30, Height: 30}},
	EntityKindFridge:   {Prefix: "f", DefaultSize: Size{Width: 120, Height: 40}},
}

// Spec returns the creation spec of a kind. Unknown kinds fall back to the gondola spec
// with the kind's first letter as prefix.
func (k EntityKind) Spec() KindSpec {
	if spec, ok := kindSpecs[k]; ok {
		return spec
	}
	spec := kindSpecs[EntityKindGondola]
	if k != "" {
		spec.Prefix = strings.ToLower(string(k[0]))
	}
	return spec
}

// IsCore returns true for the kinds the editor can create from the toolbar
func (k EntityKind) IsCore() bool {
	return k == EntityKindGondola || k == EntityKindEndcap
}

// ParseEntityKind converts a string to an EntityKind (default gondola)
func ParseEntityKind(s string) EntityKind {
	switch EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case EntityKindEndcap:
		return EntityKindEndcap
	case EntityKindCheckout:
		return EntityKindCheckout
	case EntityKindPillar:
		return EntityKindPillar
	case EntityKindFridge:
		return EntityKindFridge
	default:
		return EntityKindGondola
	}
}

// Entity is a positioned, editable rectangle representing a physical display unit
type Entity struct {
	ID       string       `json:"id" yaml:"id"`
	Kind     EntityKind   `json:"kind" yaml:"kind"`
	Rect     Rect         `json:"rect" yaml:"rect"`
	Status   EntityStatus `json:"status" yaml:"status"`
	Label    string       `json:"label,omitempty" yaml:"label,omitempty"`
	Category string       `json:"category,omitempty" yaml:"category,omitempty"`
	Brand    string       `json:"brand,omitempty" yaml:"brand,omitempty"`
}

// NewEntity creates an available entity of the given kind
func NewEntity(id string, kind EntityKind, rect Rect) *Entity {
	return &Entity{
		ID:     id,
		Kind:   kind,
		Rect:   rect,
		Status: EntityStatusAvailable,
	}
}

// Validate checks the geometry invariants of an entity
func (e *Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity ID is required")
	}
	if e.Rect.Width < MinEntitySize || e.Rect.Height < MinEntitySize {
		return fmt.Errorf("entity %s is smaller than %gx%g", e.ID, MinEntitySize, MinEntitySize)
	}
	if e.Rect.X < 0 || e.Rect.Y < 0 {
		return fmt.Errorf("entity %s has a negative position", e.ID)
	}
	return nil
}

// IDSuffix extracts the numeric suffix of an id with the given prefix.
// Returns 0, false if the id does not match prefix+positive integer.
func IDSuffix(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextEntityID returns the id with the lowest unused positive suffix for the kind's prefix.
// With g1 and g3 taken, the next gondola id is g2.
func NextEntityID(kind EntityKind, existing []Entity) string {
	prefix := kind.Spec().Prefix
	used := make(map[int]bool, len(existing))
	for _, e := range existing {
		if n, ok := IDSuffix(e.ID, prefix); ok {
			used[n] = true
		}
	}
	n := 1
	for used[n] {
		n++
	}
	return prefix + strconv.Itoa(n)
}
