package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"storeplan/internal/codec"
	"storeplan/internal/domain"
	"storeplan/internal/repository"

	"github.com/google/uuid"
)

// LayoutService provides business logic for layout operations
type LayoutService struct {
	repo     repository.Repository
	eventBus *EventBus
}

// NewLayoutService creates a new layout service
func NewLayoutService(repo repository.Repository, eventBus *EventBus) *LayoutService {
	return &LayoutService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// Events returns the bus the service publishes to
func (s *LayoutService) Events() *EventBus {
	return s.eventBus
}

// GetLayout returns the complete layout
func (s *LayoutService) GetLayout(ctx context.Context) (*domain.Layout, error) {
	return s.repo.GetLayout(ctx)
}

// GetEntity retrieves a single entity by ID
func (s *LayoutService) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	e, err := s.repo.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("entity %s not found", id)
	}
	return e, nil
}

// ListEntities returns all entities ordered by id
func (s *LayoutService) ListEntities(ctx context.Context) ([]domain.Entity, error) {
	return s.repo.ListEntities(ctx)
}

// CreateEntity stores a new entity. An empty ID is replaced by the next free id for the kind.
func (s *LayoutService) CreateEntity(ctx context.Context, e *domain.Entity) error {
	if e.Kind == "" {
		e.Kind = domain.EntityKindGondola
	}
	if e.Status == "" {
		e.Status = domain.EntityStatusAvailable
	}
	if e.ID == "" {
		existing, err := s.repo.ListEntities(ctx)
		if err != nil {
			return err
		}
		e.ID = domain.NextEntityID(e.Kind, existing)
	}
	if err := s.validateEntity(e); err != nil {
		return err
	}

	current, err := s.repo.GetEntity(ctx, e.ID)
	if err != nil {
		return err
	}
	if current != nil {
		return fmt.Errorf("entity %s already exists", e.ID)
	}

	return s.saveEntity(ctx, e, true, "")
}

// UpdateEntity replaces an existing entity
func (s *LayoutService) UpdateEntity(ctx context.Context, id string, e *domain.Entity) error {
	if e.ID == "" {
		e.ID = id
	}
	if e.ID != id {
		return fmt.Errorf("entity ID %s does not match %s", e.ID, id)
	}
	if err := s.validateEntity(e); err != nil {
		return err
	}
	if _, err := s.GetEntity(ctx, id); err != nil {
		return err
	}
	return s.saveEntity(ctx, e, false, "")
}

// saveEntity upserts without an existence check, as the engine's callbacks do
func (s *LayoutService) saveEntity(ctx context.Context, e *domain.Entity, created bool, origin string) error {
	if err := s.repo.UpsertEntity(ctx, e); err != nil {
		return err
	}

	eventType := EventEntityUpdated
	if created {
		eventType = EventEntityCreated
	}
	s.eventBus.Publish(Event{Type: eventType, Payload: *e, Origin: origin})
	return nil
}

// DeleteEntity removes an entity
func (s *LayoutService) DeleteEntity(ctx context.Context, id string) error {
	if _, err := s.GetEntity(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEntity(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventEntityDeleted,
		Payload: map[string]string{"entity_id": id},
	})
	return nil
}

// GetElement retrieves a single graphic element by ID
func (s *LayoutService) GetElement(ctx context.Context, id string) (*domain.GraphicElement, error) {
	el, err := s.repo.GetElement(ctx, id)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("element %s not found", id)
	}
	return el, nil
}

// ListElements returns all graphic elements in draw order
func (s *LayoutService) ListElements(ctx context.Context) ([]domain.GraphicElement, error) {
	return s.repo.ListElements(ctx)
}

// CreateElement stores a new graphic element, generating an ID when none is given
func (s *LayoutService) CreateElement(ctx context.Context, el *domain.GraphicElement) error {
	if el.ID == "" {
		el.ID = uuid.New().String()
	}
	if err := s.validateElement(el); err != nil {
		return err
	}

	current, err := s.repo.GetElement(ctx, el.ID)
	if err != nil {
		return err
	}
	if current != nil {
		return fmt.Errorf("element %s already exists", el.ID)
	}
	return s.saveElement(ctx, el, "")
}

// UpdateElement replaces an existing graphic element
func (s *LayoutService) UpdateElement(ctx context.Context, id string, el *domain.GraphicElement) error {
	if el.ID == "" {
		el.ID = id
	}
	if el.ID != id {
		return fmt.Errorf("element ID %s does not match %s", el.ID, id)
	}
	if err := s.validateElement(el); err != nil {
		return err
	}
	if _, err := s.GetElement(ctx, id); err != nil {
		return err
	}
	return s.saveElement(ctx, el, "")
}

func (s *LayoutService) saveElement(ctx context.Context, el *domain.GraphicElement, origin string) error {
	if err := s.repo.UpsertElement(ctx, el); err != nil {
		return err
	}
	s.eventBus.Publish(Event{Type: EventElementUpdated, Payload: *el, Origin: origin})
	return nil
}

// DeleteElement removes a graphic element
func (s *LayoutService) DeleteElement(ctx context.Context, id string) error {
	if _, err := s.GetElement(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteElement(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventElementDeleted,
		Payload: map[string]string{"element_id": id},
	})
	return nil
}

// GetFramedView returns the stored framed view, or nil when none is set
func (s *LayoutService) GetFramedView(ctx context.Context) (*domain.Rect, error) {
	return s.repo.GetFramedView(ctx)
}

// SetFramedView stores a framed view, enforcing the minimum size
func (s *LayoutService) SetFramedView(ctx context.Context, r domain.Rect) (domain.Rect, error) {
	r = domain.NormalizeFramedView(r)
	if err := s.setFramedView(ctx, &r, ""); err != nil {
		return r, err
	}
	return r, nil
}

// ClearFramedView removes the framed view
func (s *LayoutService) ClearFramedView(ctx context.Context) error {
	return s.setFramedView(ctx, nil, "")
}

func (s *LayoutService) setFramedView(ctx context.Context, r *domain.Rect, origin string) error {
	if err := s.repo.SetFramedView(ctx, r); err != nil {
		return err
	}

	var payload interface{}
	if r != nil {
		payload = *r
	}
	s.eventBus.Publish(Event{Type: EventFramedViewUpdated, Payload: payload, Origin: origin})
	return nil
}

// ImportResult contains the results of an import operation
type ImportResult struct {
	Entities   int    `json:"entities"`
	Elements   int    `json:"elements"`
	FramedView bool   `json:"framed_view"`
	Format     string `json:"format"`
}

// ImportYAML replaces the layout with the contents of a YAML document
func (s *LayoutService) ImportYAML(ctx context.Context, data []byte) (*ImportResult, error) {
	return s.Import(ctx, codec.NewYAMLCodec(), bytes.NewReader(data))
}

// ImportJSON replaces the layout with the contents of a JSON document
func (s *LayoutService) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	return s.Import(ctx, codec.NewJSONCodec(), bytes.NewReader(data))
}

// Import parses r with the given importer and replaces the stored layout
func (s *LayoutService) Import(ctx context.Context, imp codec.Importer, r io.Reader) (*ImportResult, error) {
	layout, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}
	if err := s.ReloadLayout(ctx, layout); err != nil {
		return nil, err
	}

	return &ImportResult{
		Entities:   len(layout.Entities),
		Elements:   len(layout.Elements),
		FramedView: layout.FramedView != nil,
		Format:     imp.Format(),
	}, nil
}

// ReloadLayout validates a layout, replaces the stored one with it and
// announces the reload so viewers refetch
func (s *LayoutService) ReloadLayout(ctx context.Context, layout *domain.Layout) error {
	if err := s.validateLayout(layout); err != nil {
		return err
	}
	if layout.FramedView != nil {
		r := domain.NormalizeFramedView(*layout.FramedView)
		layout.FramedView = &r
	}

	if err := s.repo.ImportLayout(ctx, layout); err != nil {
		return fmt.Errorf("failed to import layout: %w", err)
	}

	s.eventBus.Publish(Event{
		Type: EventLayoutReloaded,
		Payload: map[string]int{
			"entities": len(layout.Entities),
			"elements": len(layout.Elements),
		},
	})
	return nil
}

// ExportYAML exports the layout as YAML
func (s *LayoutService) ExportYAML(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, codec.NewYAMLCodec(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON exports the layout as JSON
func (s *LayoutService) ExportJSON(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, codec.NewJSONCodec(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export writes the stored layout with the given exporter
func (s *LayoutService) Export(ctx context.Context, exp codec.Exporter, w io.Writer) error {
	layout, err := s.repo.GetLayout(ctx)
	if err != nil {
		return err
	}
	layout.Sort()
	return exp.Export(layout, w)
}

// ClearLayout removes all entities, elements and the framed view
func (s *LayoutService) ClearLayout(ctx context.Context) error {
	if err := s.repo.ClearLayout(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventLayoutReloaded,
		Payload: map[string]int{"entities": 0, "elements": 0},
	})
	return nil
}

func (s *LayoutService) validateEntity(e *domain.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.Status != domain.EntityStatusAvailable && e.Status != domain.EntityStatusOccupied {
		return fmt.Errorf("entity %s has unknown status %q", e.ID, e.Status)
	}
	return nil
}

func (s *LayoutService) validateElement(el *domain.GraphicElement) error {
	if el.ID == "" {
		return fmt.Errorf("element ID is required")
	}
	switch el.Variant {
	case domain.GraphicRectangle, domain.GraphicCircle, domain.GraphicLine, domain.GraphicArrow, domain.GraphicText:
	default:
		return fmt.Errorf("element %s has unknown variant %q", el.ID, el.Variant)
	}
	if el.Opacity < 0 || el.Opacity > 1 {
		return fmt.Errorf("element %s opacity must be between 0 and 1", el.ID)
	}
	return nil
}

func (s *LayoutService) validateLayout(layout *domain.Layout) error {
	seen := make(map[string]bool, len(layout.Entities))
	for i := range layout.Entities {
		e := &layout.Entities[i]
		if seen[e.ID] {
			return fmt.Errorf("duplicate entity ID %s", e.ID)
		}
		seen[e.ID] = true
		if err := s.validateEntity(e); err != nil {
			return err
		}
	}

	seen = make(map[string]bool, len(layout.Elements))
	for i := range layout.Elements {
		el := &layout.Elements[i]
		if seen[el.ID] {
			return fmt.Errorf("duplicate element ID %s", el.ID)
		}
		seen[el.ID] = true
		if err := s.validateElement(el); err != nil {
			return err
		}
	}
	return nil
}
