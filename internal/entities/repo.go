package entities

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidInput = errors.New("invalid entity input")
)

// UpdateParams carries the mutable entity fields; nil means unchanged.
type UpdateParams struct {
	Name *string
	Type *string
	Date *string
}

// Repo defines persistence operations for entities. Deleting an entity also
// removes its document associations; the documents themselves remain.
type Repo interface {
	List(ctx context.Context, page, limit int) ([]Entity, int, error)
	Search(ctx context.Context, query string, page, limit int) ([]Entity, int, error)
	ByType(ctx context.Context, entityType string, page, limit int) ([]Entity, int, error)
	GetByID(ctx context.Context, entityID string) (Entity, error)
	Update(ctx context.Context, entityID string, params UpdateParams) (Entity, error)
	Delete(ctx context.Context, entityID string) error
	CountsByType(ctx context.Context) (map[string]int, error)
}
