// Package loader reads and writes layout files, choosing the codec from the file extension.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storeplan/internal/codec"
	"storeplan/internal/domain"
)

// FormatForPath returns the codec format implied by a file name
func FormatForPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "yaml"
	}
	return ext
}

// LoadFile loads a layout from a YAML or JSON file
func LoadFile(path string) (*domain.Layout, error) {
	c, err := codec.ForFormat(FormatForPath(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	layout, err := c.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return layout, nil
}

// SaveFile writes a layout next to path and renames it into place,
// so a watcher never observes a half-written file
func SaveFile(path string, layout *domain.Layout) error {
	c, err := codec.ForFormat(FormatForPath(path))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.Export(layout, &buf); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
