// Package domain defines the core domain types for the storeplan floor-plan viewport.
//
// This package contains the entities and value objects shared by the gesture engine,
// the persistence layer and every host that renders a plan.
//
// # Core Types
//
// Entity represents a physical display unit (gondola, end-cap, ...) placed on the plan
// as a rectangle in world space. Its geometry is the only part the engine mutates.
//
// GraphicElement represents a decoration drawn over the background plan (rectangles,
// circles, lines, arrows and text). Elements are selectable and draggable in edit mode.
//
// Layout aggregates the entities, graphic elements and the optional framed view of a plan.
//
// # Units
//
// All geometry is stored in world units. The world has a fixed logical size
// (1000x700 by default) shared by every consumer of the persisted data, so layouts stay
// consistent across devices and screen sizes.
//
// # Design Principles
//
// - Plain value types, copied rather than shared
// - No database or external dependencies
// - Geometry helpers are pure functions
package domain
