package entities

import (
	"context"
	"errors"
	"strings"

	"archive-backend/internal/query"
)

// Stats summarizes the entity catalogue.
type Stats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
}

// Service exposes catalogue operations over the entity repository.
type Service struct {
	repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// List returns a page of entities, optionally restricted to one type.
func (s *Service) List(ctx context.Context, entityType string, page, limit int) (query.Page[Entity], error) {
	page, limit = clamp(page, limit)
	var (
		items []Entity
		total int
		err   error
	)
	if entityType != "" {
		if !ValidType(entityType) {
			return query.Page[Entity]{}, ErrInvalidInput
		}
		items, total, err = s.repo.ByType(ctx, entityType, page, limit)
	} else {
		items, total, err = s.repo.List(ctx, page, limit)
	}
	if err != nil {
		return query.Page[Entity]{}, err
	}
	return query.NewPage(items, total, page, limit), nil
}

// Search returns entities matching a name fragment.
func (s *Service) Search(ctx context.Context, q string, page, limit int) (query.Page[Entity], error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return query.Page[Entity]{}, ErrInvalidInput
	}
	page, limit = clamp(page, limit)
	items, total, err := s.repo.Search(ctx, q, page, limit)
	if err != nil {
		return query.Page[Entity]{}, err
	}
	return query.NewPage(items, total, page, limit), nil
}

// Get returns one entity by ID.
func (s *Service) Get(ctx context.Context, entityID string) (Entity, error) {
	if strings.TrimSpace(entityID) == "" {
		return Entity{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, entityID)
}

// Update validates and applies a partial update.
func (s *Service) Update(ctx context.Context, entityID string, params UpdateParams) (Entity, error) {
	if strings.TrimSpace(entityID) == "" {
		return Entity{}, ErrInvalidInput
	}
	if params.Name == nil && params.Type == nil && params.Date == nil {
		return Entity{}, ErrInvalidInput
	}
	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return Entity{}, ErrInvalidInput
		}
		params.Name = &trimmed
	}
	if params.Type != nil && !ValidType(*params.Type) {
		return Entity{}, ErrInvalidInput
	}
	return s.repo.Update(ctx, entityID, params)
}

// Delete removes an entity. Documents that referenced it are kept; only the
// association edges disappear.
func (s *Service) Delete(ctx context.Context, entityID string) error {
	if strings.TrimSpace(entityID) == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, entityID)
}

// Stats returns total and per-type entity counts. Storage failures degrade
// to zeroed stats rather than an error so dashboards stay up.
func (s *Service) Stats(ctx context.Context) Stats {
	counts, err := s.repo.CountsByType(ctx)
	if err != nil || counts == nil {
		return Stats{ByType: map[string]int{}}
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return Stats{Total: total, ByType: counts}
}

func clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = query.DefaultLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}
	return page, limit
}

// IsNotFound reports whether err is the repo's not-found sentinel.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
