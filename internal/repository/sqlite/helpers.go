package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"storeplan/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts a bool to the 0/1 SQLite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a value to a nullable JSON string.
// Zero text styles are stored as NULL.
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if s, ok := v.(domain.TextStyle); ok && s == (domain.TextStyle{}) {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the entities table:
// 1. Add field to entityRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update entityColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Entity
// 5. Update entityInsertArgs() if column should be writable
// 6. Add migration in sqlite.go migrate() using addColumnIfNotExists()
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - entityColumns constant
// - scanArgs() return slice
// - All SELECT queries using entityColumns
//
// Same pattern applies to graphic elements.

// ============================================================================
// Entity Row Scanner
// ============================================================================

// entityRow holds all columns from an entity query for scanning
type entityRow struct {
	ID       string
	Kind     string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Status   sql.NullString
	Label    sql.NullString
	Category sql.NullString
	Brand    sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match entityColumns order exactly
func (r *entityRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,       // 1
		&r.Kind,     // 2
		&r.X,        // 3
		&r.Y,        // 4
		&r.Width,    // 5
		&r.Height,   // 6
		&r.Status,   // 7
		&r.Label,    // 8
		&r.Category, // 9
		&r.Brand,    // 10
	}
}

// toDomain converts the scanned row to a domain.Entity
func (r *entityRow) toDomain() domain.Entity {
	e := domain.Entity{
		ID:       r.ID,
		Kind:     domain.EntityKind(r.Kind),
		Rect:     domain.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		Status:   domain.EntityStatus(nullToString(r.Status)),
		Label:    nullToString(r.Label),
		Category: nullToString(r.Category),
		Brand:    nullToString(r.Brand),
	}

	// Default status if empty
	if e.Status == "" {
		e.Status = domain.EntityStatusAvailable
	}
	return e
}

// entityColumns returns the SELECT column list for entity queries
const entityColumns = `id, kind, x, y, width, height, status, label, category, brand`

// entityInsertArgs returns the values for an INSERT using entityColumns order
func entityInsertArgs(e *domain.Entity) []interface{} {
	return []interface{}{
		e.ID,
		string(e.Kind),
		e.Rect.X,
		e.Rect.Y,
		e.Rect.Width,
		e.Rect.Height,
		stringToNull(string(e.Status)),
		stringToNull(e.Label),
		stringToNull(e.Category),
		stringToNull(e.Brand),
	}
}

// ============================================================================
// Graphic Element Row Scanner
// ============================================================================

// elementRow holds all columns from a graphic element query for scanning
type elementRow struct {
	ID        string
	Variant   string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Rotation  float64
	ZIndex    int
	Stroke    sql.NullString
	Fill      sql.NullString
	Opacity   float64
	Text      sql.NullString
	StyleJSON sql.NullString
	Visible   int
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match elementColumns order exactly
func (r *elementRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Variant,   // 2
		&r.X,         // 3
		&r.Y,         // 4
		&r.Width,     // 5
		&r.Height,    // 6
		&r.Rotation,  // 7
		&r.ZIndex,    // 8
		&r.Stroke,    // 9
		&r.Fill,      // 10
		&r.Opacity,   // 11
		&r.Text,      // 12
		&r.StyleJSON, // 13
		&r.Visible,   // 14
	}
}

// toDomain converts the scanned row to a domain.GraphicElement
func (r *elementRow) toDomain() (domain.GraphicElement, error) {
	el := domain.GraphicElement{
		ID:       r.ID,
		Variant:  domain.GraphicVariant(r.Variant),
		Position: domain.Point{X: r.X, Y: r.Y},
		Width:    r.Width,
		Height:   r.Height,
		Rotation: r.Rotation,
		ZIndex:   r.ZIndex,
		Stroke:   nullToString(r.Stroke),
		Fill:     nullToString(r.Fill),
		Opacity:  r.Opacity,
		Text:     nullToString(r.Text),
		Visible:  r.Visible != 0,
	}

	if err := unmarshalJSONField(r.StyleJSON, &el.Style); err != nil {
		return el, fmt.Errorf("unmarshal style: %w", err)
	}
	return el, nil
}

// elementColumns returns the SELECT column list for graphic element queries
const elementColumns = `id, variant, x, y, width, height, rotation, z_index,
	stroke, fill, opacity, text, style, visible`

// elementInsertArgs returns the values for an INSERT using elementColumns order
func elementInsertArgs(el *domain.GraphicElement) ([]interface{}, error) {
	style, err := marshalToNull(el.Style)
	if err != nil {
		return nil, fmt.Errorf("marshal style: %w", err)
	}
	return []interface{}{
		el.ID,
		string(el.Variant),
		el.Position.X,
		el.Position.Y,
		el.Width,
		el.Height,
		el.Rotation,
		el.ZIndex,
		stringToNull(el.Stroke),
		stringToNull(el.Fill),
		el.Opacity,
		stringToNull(el.Text),
		style,
		boolToInt(el.Visible),
	}, nil
}
