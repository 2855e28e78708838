package codec

import (
	"fmt"
	"io"

	"storeplan/internal/domain"
)

// Importer interface for importing layouts from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Layout, error)
	Format() string
}

// Exporter interface for exporting layouts to various formats
type Exporter interface {
	Export(layout *domain.Layout, w io.Writer) error
	Format() string
}

// Codec both imports and exports
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name
func ForFormat(format string) (Codec, error) {
	switch format {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
