package codec

import (
	"fmt"
	"io"

	"storeplan/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML layout files
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlLayout represents the YAML structure of a layout file
type yamlLayout struct {
	Version    int           `yaml:"version"`
	FramedView *domain.Rect  `yaml:"framed_view,omitempty"`
	Entities   []yamlEntity  `yaml:"entities"`
	Elements   []yamlElement `yaml:"elements,omitempty"`
}

type yamlEntity struct {
	ID       string      `yaml:"id"`
	Kind     string      `yaml:"kind"`
	Rect     domain.Rect `yaml:"rect"`
	Status   string      `yaml:"status,omitempty"`
	Label    string      `yaml:"label,omitempty"`
	Category string      `yaml:"category,omitempty"`
	Brand    string      `yaml:"brand,omitempty"`
}

// yamlElement uses pointers so omitted opacity and visibility take their defaults
type yamlElement struct {
	ID       string           `yaml:"id"`
	Variant  string           `yaml:"variant"`
	Position domain.Point     `yaml:"position"`
	Width    float64          `yaml:"width,omitempty"`
	Height   float64          `yaml:"height,omitempty"`
	Rotation float64          `yaml:"rotation,omitempty"`
	ZIndex   int              `yaml:"z_index,omitempty"`
	Stroke   string           `yaml:"stroke,omitempty"`
	Fill     string           `yaml:"fill,omitempty"`
	Opacity  *float64         `yaml:"opacity,omitempty"`
	Text     string           `yaml:"text,omitempty"`
	Style    domain.TextStyle `yaml:"style,omitempty"`
	Visible  *bool            `yaml:"visible,omitempty"`
}

const yamlVersion = 1

// Parse imports a layout from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Layout, error) {
	var yl yamlLayout
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yl); err != nil {
		if err == io.EOF {
			return domain.NewLayout(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if yl.Version > yamlVersion {
		return nil, fmt.Errorf("unsupported layout version %d", yl.Version)
	}

	layout := domain.NewLayout()
	layout.FramedView = yl.FramedView

	// Convert entities
	for _, ye := range yl.Entities {
		e := domain.NewEntity(ye.ID, domain.ParseEntityKind(ye.Kind), ye.Rect)
		if ye.Status != "" {
			e.Status = domain.EntityStatus(ye.Status)
		}
		e.Label = ye.Label
		e.Category = ye.Category
		e.Brand = ye.Brand
		layout.Entities = append(layout.Entities, *e)
	}

	// Convert elements
	for _, ye := range yl.Elements {
		el := domain.NewGraphicElement(ye.ID, domain.GraphicVariant(ye.Variant), ye.Position)
		el.Width = ye.Width
		el.Height = ye.Height
		el.Rotation = ye.Rotation
		el.ZIndex = ye.ZIndex
		el.Stroke = ye.Stroke
		el.Fill = ye.Fill
		el.Text = ye.Text
		el.Style = ye.Style
		if ye.Opacity != nil {
			el.Opacity = *ye.Opacity
		}
		if ye.Visible != nil {
			el.Visible = *ye.Visible
		}
		layout.Elements = append(layout.Elements, *el)
	}

	return layout, nil
}

// Export exports a layout to YAML
func (c *YAMLCodec) Export(layout *domain.Layout, w io.Writer) error {
	yl := yamlLayout{
		Version:    yamlVersion,
		FramedView: layout.FramedView,
		Entities:   make([]yamlEntity, 0, len(layout.Entities)),
		Elements:   make([]yamlElement, 0, len(layout.Elements)),
	}

	for _, e := range layout.Entities {
		yl.Entities = append(yl.Entities, yamlEntity{
			ID:       e.ID,
			Kind:     string(e.Kind),
			Rect:     e.Rect,
			Status:   string(e.Status),
			Label:    e.Label,
			Category: e.Category,
			Brand:    e.Brand,
		})
	}

	for _, el := range layout.Elements {
		opacity, visible := el.Opacity, el.Visible
		yl.Elements = append(yl.Elements, yamlElement{
			ID:       el.ID,
			Variant:  string(el.Variant),
			Position: el.Position,
			Width:    el.Width,
			Height:   el.Height,
			Rotation: el.Rotation,
			ZIndex:   el.ZIndex,
			Stroke:   el.Stroke,
			Fill:     el.Fill,
			Opacity:  &opacity,
			Text:     el.Text,
			Style:    el.Style,
			Visible:  &visible,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yl); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
