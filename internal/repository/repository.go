package repository

import (
	"context"

	"storeplan/internal/domain"
)

// Repository defines the interface for layout data access.
// Single-item getters return nil, nil when the row does not exist.
type Repository interface {
	// Read operations
	GetLayout(ctx context.Context) (*domain.Layout, error)
	GetEntity(ctx context.Context, id string) (*domain.Entity, error)
	ListEntities(ctx context.Context) ([]domain.Entity, error)
	GetElement(ctx context.Context, id string) (*domain.GraphicElement, error)
	ListElements(ctx context.Context) ([]domain.GraphicElement, error)
	GetFramedView(ctx context.Context) (*domain.Rect, error)

	// Write operations
	UpsertEntity(ctx context.Context, e *domain.Entity) error
	DeleteEntity(ctx context.Context, id string) error
	UpsertElement(ctx context.Context, el *domain.GraphicElement) error
	DeleteElement(ctx context.Context, id string) error
	// SetFramedView stores the framed view, or clears it when r is nil
	SetFramedView(ctx context.Context, r *domain.Rect) error

	// Bulk operations
	ImportLayout(ctx context.Context, layout *domain.Layout) error
	ClearLayout(ctx context.Context) error

	// Close releases resources
	Close() error
}
