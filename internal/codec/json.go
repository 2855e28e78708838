package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"storeplan/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a layout from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Layout, error) {
	layout := domain.NewLayout()
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(layout); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if layout.Entities == nil {
		layout.Entities = make([]domain.Entity, 0)
	}
	if layout.Elements == nil {
		layout.Elements = make([]domain.GraphicElement, 0)
	}
	return layout, nil
}

// Export exports a layout to JSON
func (c *JSONCodec) Export(layout *domain.Layout, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(layout); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
