package codec

import (
	"bytes"
	"strings"
	"testing"

	"storeplan/internal/domain"
)

const sampleYAML = `
version: 1
framed_view: {x: 100, y: 50, width: 400, height: 300}
entities:
  - id: g1
    kind: gondola
    rect: {x: 100, y: 100, width: 140, height: 60}
    label: Snacks
  - id: c1
    kind: endcap
    rect: {x: 240, y: 100, width: 60, height: 40}
    status: occupied
elements:
  - id: door
    variant: text
    position: {x: 10, y: 680}
    text: Entrance
  - id: wall
    variant: line
    position: {x: 0, y: 0}
    width: 1000
    visible: false
    opacity: 0.4
`

func TestYAMLParse(t *testing.T) {
	layout, err := NewYAMLCodec().Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(layout.Entities) != 2 || len(layout.Elements) != 2 {
		t.Fatalf("got %d entities, %d elements", len(layout.Entities), len(layout.Elements))
	}
	if layout.FramedView == nil || layout.FramedView.Width != 400 {
		t.Errorf("framed view = %v", layout.FramedView)
	}

	g1 := layout.Entities[0]
	if g1.Status != domain.EntityStatusAvailable || g1.Label != "Snacks" {
		t.Errorf("g1 = %+v", g1)
	}
	if layout.Entities[1].Status != domain.EntityStatusOccupied {
		t.Errorf("c1 status = %q", layout.Entities[1].Status)
	}

	door, wall := layout.Elements[0], layout.Elements[1]
	if !door.Visible || door.Opacity != 1 {
		t.Errorf("door should default to visible and opaque: %+v", door)
	}
	if wall.Visible || wall.Opacity != 0.4 {
		t.Errorf("wall = %+v", wall)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	c := NewYAMLCodec()
	layout, err := c.Parse(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var buf bytes.Buffer
	if err := c.Export(layout, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	again, err := c.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse(exported) error = %v", err)
	}

	if again.Entities[1] != layout.Entities[1] {
		t.Errorf("entity changed: %+v -> %+v", layout.Entities[1], again.Entities[1])
	}
	if again.Elements[1] != layout.Elements[1] {
		t.Errorf("element changed: %+v -> %+v", layout.Elements[1], again.Elements[1])
	}
}

func TestYAMLRejectsNewerVersion(t *testing.T) {
	if _, err := NewYAMLCodec().Parse(strings.NewReader("version: 9\n")); err == nil {
		t.Error("expected error for an unknown version")
	}
}

func TestYAMLEmptyDocument(t *testing.T) {
	layout, err := NewYAMLCodec().Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(layout.Entities) != 0 {
		t.Errorf("entities = %v", layout.Entities)
	}
}

func TestJSONParseDefaults(t *testing.T) {
	layout, err := NewJSONCodec().Parse(strings.NewReader(`{"entities": null}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if layout.Entities == nil || layout.Elements == nil {
		t.Error("expected empty, non-nil slices")
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"json", "json", false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := ForFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Format() != tt.want {
				t.Errorf("Format() = %q, want %q", c.Format(), tt.want)
			}
		})
	}
}
