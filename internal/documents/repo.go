package documents

import (
	"context"
	"errors"
	"time"

	"archive-backend/internal/entities"
	"archive-backend/internal/query"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for malformed create or update input.
	ErrInvalidInput = errors.New("invalid document input")
)

// UpdateParams carries the optional fields of a partial update. Nil means
// leave unchanged.
type UpdateParams struct {
	Title        *string
	Content      *string
	ImageURL     *string
	DocumentType *string
}

// StatsRow is one per-type bucket of the archive statistics.
type StatsRow struct {
	DocumentType string `json:"documentType"`
	Count        int    `json:"count"`
}

// Stats summarizes the archive.
type Stats struct {
	Total      int        `json:"total"`
	ByType     []StatsRow `json:"byType"`
	MostRecent []Document `json:"mostRecent"`
}

// Repo is the persistence boundary for archived documents. Create resolves
// and associates the given entity specs atomically with the insert.
type Repo interface {
	Create(ctx context.Context, doc Document, specs []entities.Spec) (Document, error)
	GetByID(ctx context.Context, documentID string) (Document, error)
	List(ctx context.Context, filters query.Filters, page, limit int) ([]Document, int, error)
	Search(ctx context.Context, q string, page, limit int) ([]Document, int, error)
	ListByEntity(ctx context.Context, entityID string, page, limit int) ([]Document, int, error)
	Update(ctx context.Context, documentID string, params UpdateParams) (Document, error)
	Delete(ctx context.Context, documentID string) error
	Stats(ctx context.Context, recent int) (Stats, error)
}

// Clock lets tests pin repository timestamps.
type Clock func() time.Time
