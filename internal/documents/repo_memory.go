package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"archive-backend/internal/entities"
	"archive-backend/internal/query"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests. It
// delegates entity resolution and the association edges to an
// entities.MemoryRepo so both repos see the same catalogue.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]Document
	entities *entities.MemoryRepo
	Now      Clock
}

// NewMemoryRepo constructs a MemoryRepo sharing the given entity store.
func NewMemoryRepo(ents *entities.MemoryRepo) *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string]Document),
		entities: ents,
		Now:      time.Now,
	}
}

// Create stores the document and links its resolved entities.
func (r *MemoryRepo) Create(ctx context.Context, doc Document, specs []entities.Spec) (Document, error) {
	resolved, err := r.entities.Resolve(ctx, specs)
	if err != nil {
		return Document{}, err
	}

	now := r.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	r.mu.Lock()
	r.data[doc.ID] = doc
	r.mu.Unlock()

	ids := make([]string, len(resolved))
	for i, ent := range resolved {
		ids[i] = ent.ID
	}
	r.entities.Link(doc.ID, ids)

	doc.Entities = r.entities.ForDocument(doc.ID)
	return doc, nil
}

// GetByID returns one document with its entities.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	doc, ok := r.data[documentID]
	r.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Entities = r.entities.ForDocument(doc.ID)
	return doc, nil
}

// List returns a filtered page, newest first unless SortBy says otherwise.
func (r *MemoryRepo) List(ctx context.Context, filters query.Filters, page, limit int) ([]Document, int, error) {
	entityName := strings.ToLower(strings.TrimSpace(filters.EntityName))
	keyword := strings.ToLower(filters.Keyword)
	return r.pageOf(ctx, page, limit, filters.SortBy, func(doc Document) bool {
		if filters.DocumentType != "" && doc.DocumentType != filters.DocumentType {
			return false
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(doc.Title), keyword) &&
			!strings.Contains(strings.ToLower(doc.Content), keyword) {
			return false
		}
		if entityName != "" && !r.linkedTo(doc.ID, entityName) {
			return false
		}
		if filters.StartDate != "" && doc.CreatedAt.Format("2006-01-02") < filters.StartDate {
			return false
		}
		if filters.EndDate != "" && doc.CreatedAt.Format("2006-01-02") > filters.EndDate {
			return false
		}
		return true
	})
}

// Search matches a text fragment against title, content, file name and the
// names of linked entities.
func (r *MemoryRepo) Search(ctx context.Context, q string, page, limit int) ([]Document, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q))
	return r.pageOf(ctx, page, limit, "", func(doc Document) bool {
		return strings.Contains(strings.ToLower(doc.Title), needle) ||
			strings.Contains(strings.ToLower(doc.Content), needle) ||
			strings.Contains(strings.ToLower(doc.FileName), needle) ||
			r.linkedNameContains(doc.ID, needle)
	})
}

func (r *MemoryRepo) linkedNameContains(docID, needle string) bool {
	for _, ent := range r.entities.ForDocument(docID) {
		if strings.Contains(strings.ToLower(ent.Name), needle) {
			return true
		}
	}
	return false
}

// ListByEntity returns the documents linked to one entity.
func (r *MemoryRepo) ListByEntity(ctx context.Context, entityID string, page, limit int) ([]Document, int, error) {
	wanted := make(map[string]struct{})
	for _, docID := range r.entities.DocumentIDsFor(entityID) {
		wanted[docID] = struct{}{}
	}
	return r.pageOf(ctx, page, limit, "", func(doc Document) bool {
		_, ok := wanted[doc.ID]
		return ok
	})
}

// Update applies the non-nil fields.
func (r *MemoryRepo) Update(ctx context.Context, documentID string, params UpdateParams) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	doc, ok := r.data[documentID]
	if !ok {
		r.mu.Unlock()
		return Document{}, ErrNotFound
	}
	if params.Title != nil {
		doc.Title = *params.Title
	}
	if params.Content != nil {
		doc.Content = *params.Content
	}
	if params.ImageURL != nil {
		doc.ImageURL = *params.ImageURL
	}
	if params.DocumentType != nil {
		doc.DocumentType = *params.DocumentType
	}
	doc.UpdatedAt = r.now()
	r.data[documentID] = doc
	r.mu.Unlock()

	doc.Entities = r.entities.ForDocument(doc.ID)
	return doc, nil
}

// Delete removes the document and its association edges; entities stay.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	_, ok := r.data[documentID]
	delete(r.data, documentID)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.entities.Unlink(documentID)
	return nil
}

// Stats returns total, per-type counts and the most recent documents.
func (r *MemoryRepo) Stats(ctx context.Context, recent int) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	all := make([]Document, 0, len(r.data))
	counts := make(map[string]int)
	for _, doc := range r.data {
		all = append(all, doc)
		counts[doc.DocumentType]++
	}
	r.mu.RUnlock()

	sortNewestFirst(all)
	if recent > len(all) {
		recent = len(all)
	}
	mostRecent := make([]Document, recent)
	copy(mostRecent, all[:recent])
	for i := range mostRecent {
		mostRecent[i].Entities = r.entities.ForDocument(mostRecent[i].ID)
	}

	byType := make([]StatsRow, 0, len(counts))
	for t, n := range counts {
		byType = append(byType, StatsRow{DocumentType: t, Count: n})
	}
	sort.Slice(byType, func(i, j int) bool {
		if byType[i].Count != byType[j].Count {
			return byType[i].Count > byType[j].Count
		}
		return byType[i].DocumentType < byType[j].DocumentType
	})
	return Stats{Total: len(all), ByType: byType, MostRecent: mostRecent}, nil
}

func (r *MemoryRepo) linkedTo(docID, lowerName string) bool {
	for _, ent := range r.entities.ForDocument(docID) {
		if strings.ToLower(ent.Name) == lowerName {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) pageOf(ctx context.Context, page, limit int, sortBy string, match func(Document) bool) ([]Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	r.mu.RLock()
	all := make([]Document, 0, len(r.data))
	for _, doc := range r.data {
		if match(doc) {
			all = append(all, doc)
		}
	}
	r.mu.RUnlock()

	switch sortBy {
	case "title":
		sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	case "oldest":
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	default:
		sortNewestFirst(all)
	}

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageItems := make([]Document, end-start)
	copy(pageItems, all[start:end])
	for i := range pageItems {
		pageItems[i].Entities = r.entities.ForDocument(pageItems[i].ID)
	}
	return pageItems, total, nil
}

func sortNewestFirst(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}

func (r *MemoryRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

var _ Repo = (*MemoryRepo)(nil)
