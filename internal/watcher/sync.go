// Package watcher imports a layout file into the store and re-imports it whenever
// it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"storeplan/internal/domain"
	"storeplan/internal/loader"

	"github.com/fsnotify/fsnotify"
)

// Reloader replaces the stored layout
type Reloader interface {
	ReloadLayout(ctx context.Context, layout *domain.Layout) error
}

// LayoutSync keeps a Reloader in step with a layout file
type LayoutSync struct {
	path     string
	target   Reloader
	debounce time.Duration
}

// NewLayoutSync creates a sync for the YAML or JSON file at path
func NewLayoutSync(path string, target Reloader) *LayoutSync {
	return &LayoutSync{
		path:     path,
		target:   target,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets how long the file must stay quiet before it is re-imported
func (s *LayoutSync) WithDebounce(d time.Duration) *LayoutSync {
	s.debounce = d
	return s
}

// Load imports the file once
func (s *LayoutSync) Load(ctx context.Context) error {
	layout, err := loader.LoadFile(s.path)
	if err != nil {
		return err
	}
	if err := s.target.ReloadLayout(ctx, layout); err != nil {
		return err
	}
	log.Printf("Watcher: loaded %s (%d entities, %d elements)",
		s.path, len(layout.Entities), len(layout.Elements))
	return nil
}

// Watch re-imports the file after every burst of writes until ctx is cancelled.
// A file that fails to parse is logged and the stored layout is kept.
func (s *LayoutSync) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	// Editors often save by renaming a new file over the old one, which drops a
	// watch on the file itself, so the directory is watched instead
	if err := fw.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	name := filepath.Base(s.path)
	log.Printf("Watcher: watching %s", s.path)

	quiet := time.NewTimer(s.debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			quiet.Reset(s.debounce)

		case <-quiet.C:
			if err := s.Load(ctx); err != nil {
				log.Printf("Watcher: failed to reload %s: %v", s.path, err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher: %v", err)
		}
	}
}
