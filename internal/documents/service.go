package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"archive-backend/internal/entities"
	"archive-backend/internal/query"
	"archive-backend/internal/shared/cache"
	"archive-backend/internal/shared/telemetry"
)

// Read staleness bounds. Mutations purge the cache, so these only matter
// for entries written before an external change.
const (
	listTTL   = 2 * time.Minute
	detailTTL = 5 * time.Minute
	statsTTL  = 10 * time.Minute

	recentCount = 5
)

// Service orchestrates archive queries and mutations. Reads go through a
// TTL cache; each caller's pagination state is normalized by a query tracker
// so page indexes never outlive a filter or mode change.
type Service struct {
	repo    Repo
	tracker *query.Tracker
	cache   *cache.TTL
}

// NewService constructs a Service.
func NewService(repo Repo, readCache *cache.TTL) *Service {
	return &Service{
		repo:    repo,
		tracker: query.NewTracker(),
		cache:   readCache,
	}
}

// Query serves one paginated request for caller. The trimmed query string
// selects the backing path: length >= 2 searches, anything shorter lists
// with filters. Exactly one path runs per request.
func (s *Service) Query(ctx context.Context, caller string, req query.Request) (query.Page[Document], error) {
	req = s.tracker.Normalize(caller, req)

	key := cacheKey("query", req)
	if cached, ok := s.cache.Get(key); ok {
		if page, ok := cached.(query.Page[Document]); ok {
			return page, nil
		}
	}

	var (
		items []Document
		total int
		err   error
	)
	switch req.Mode() {
	case query.ModeSearching:
		items, total, err = s.repo.Search(ctx, strings.TrimSpace(req.Query), req.Page, req.Limit)
	default:
		items, total, err = s.repo.List(ctx, req.Filters, req.Page, req.Limit)
	}
	if err != nil {
		return query.Page[Document]{}, err
	}

	page := query.NewPage(items, total, req.Page, req.Limit)
	s.cache.Set(key, page, listTTL)
	return page, nil
}

// Get returns one document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrInvalidInput
	}
	key := "document:" + documentID
	if cached, ok := s.cache.Get(key); ok {
		if doc, ok := cached.(Document); ok {
			return doc, nil
		}
	}
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	s.cache.Set(key, doc, detailTTL)
	return doc, nil
}

// ListByEntity returns the documents linked to one entity.
func (s *Service) ListByEntity(ctx context.Context, entityID string, page, limit int) (query.Page[Document], error) {
	if strings.TrimSpace(entityID) == "" {
		return query.Page[Document]{}, ErrInvalidInput
	}
	req := query.Request{Page: page, Limit: limit}.Clamp()
	items, total, err := s.repo.ListByEntity(ctx, entityID, req.Page, req.Limit)
	if err != nil {
		return query.Page[Document]{}, err
	}
	return query.NewPage(items, total, req.Page, req.Limit), nil
}

// Create validates and persists a document with its entity specs, then
// drops every cached read.
func (s *Service) Create(ctx context.Context, doc Document, specs []entities.Spec) (Document, error) {
	if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Content) == "" {
		return Document{}, ErrInvalidInput
	}
	if !ValidDocumentType(doc.DocumentType) {
		return Document{}, ErrInvalidInput
	}
	if strings.TrimSpace(doc.ID) == "" {
		doc.ID = uuid.NewString()
	}
	created, err := s.repo.Create(ctx, doc, specs)
	if err != nil {
		return Document{}, err
	}
	s.cache.Purge()
	telemetry.Info("document.created", map[string]any{
		"document_id":   created.ID,
		"document_type": created.DocumentType,
		"entity_count":  len(created.Entities),
	})
	return created, nil
}

// Update applies a partial update and drops every cached read.
func (s *Service) Update(ctx context.Context, documentID string, params UpdateParams) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrInvalidInput
	}
	if params.Title == nil && params.Content == nil && params.ImageURL == nil && params.DocumentType == nil {
		return Document{}, ErrInvalidInput
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return Document{}, ErrInvalidInput
	}
	if params.DocumentType != nil && !ValidDocumentType(*params.DocumentType) {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.repo.Update(ctx, documentID, params)
	if err != nil {
		return Document{}, err
	}
	s.cache.Purge()
	return doc, nil
}

// Delete removes a document. Its entities stay in the catalogue; only the
// association edges disappear.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, documentID); err != nil {
		return err
	}
	s.cache.Purge()
	telemetry.Info("document.deleted", map[string]any{"document_id": documentID})
	return nil
}

// Stats returns archive statistics. A storage failure degrades to zeroed
// stats instead of an error so dashboards keep rendering.
func (s *Service) Stats(ctx context.Context) Stats {
	const key = "documents:stats"
	if cached, ok := s.cache.Get(key); ok {
		if stats, ok := cached.(Stats); ok {
			return stats
		}
	}
	stats, err := s.repo.Stats(ctx, recentCount)
	if err != nil {
		telemetry.Warn("document.stats.degraded", map[string]any{"error": err.Error()})
		return Stats{ByType: []StatsRow{}, MostRecent: []Document{}}
	}
	s.cache.Set(key, stats, statsTTL)
	return stats
}

func cacheKey(prefix string, req query.Request) string {
	f := req.Filters
	return fmt.Sprintf("%s:%s|%s|%s|%s|%s|%s|%s|%d|%d",
		prefix, strings.TrimSpace(req.Query),
		f.DocumentType, f.EntityName, f.Keyword, f.SortBy, f.StartDate, f.EndDate,
		req.Page, req.Limit)
}
