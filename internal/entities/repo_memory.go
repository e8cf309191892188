package entities

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests. It
// also owns the document↔entity edge set, queryable from both directions,
// so associations can never drift apart.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]Entity              // entityID -> entity
	byDoc    map[string]map[string]struct{} // documentID -> entityIDs
	byEntity map[string]map[string]struct{} // entityID -> documentIDs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string]Entity),
		byDoc:    make(map[string]map[string]struct{}),
		byEntity: make(map[string]map[string]struct{}),
	}
}

// List returns a page of entities ordered by name.
func (r *MemoryRepo) List(ctx context.Context, page, limit int) ([]Entity, int, error) {
	return r.pageOf(ctx, page, limit, func(Entity) bool { return true })
}

// Search returns entities whose name contains query, case-insensitive.
func (r *MemoryRepo) Search(ctx context.Context, query string, page, limit int) ([]Entity, int, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	return r.pageOf(ctx, page, limit, func(e Entity) bool {
		return strings.Contains(strings.ToLower(e.Name), needle)
	})
}

// ByType returns entities of one type.
func (r *MemoryRepo) ByType(ctx context.Context, entityType string, page, limit int) ([]Entity, int, error) {
	return r.pageOf(ctx, page, limit, func(e Entity) bool {
		return e.Type == entityType
	})
}

// GetByID returns a single entity.
func (r *MemoryRepo) GetByID(ctx context.Context, entityID string) (Entity, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entity, ok := r.data[entityID]
	if !ok {
		return Entity{}, ErrNotFound
	}
	entity.DocumentCount = len(r.byEntity[entityID])
	return entity, nil
}

// Update applies the non-nil fields and returns the updated entity.
func (r *MemoryRepo) Update(ctx context.Context, entityID string, params UpdateParams) (Entity, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entity, ok := r.data[entityID]
	if !ok {
		return Entity{}, ErrNotFound
	}
	if params.Name != nil {
		entity.Name = *params.Name
	}
	if params.Type != nil {
		entity.Type = *params.Type
	}
	if params.Date != nil {
		entity.Date = *params.Date
	}
	r.data[entityID] = entity
	entity.DocumentCount = len(r.byEntity[entityID])
	return entity, nil
}

// Delete removes the entity and its side of the edge set.
func (r *MemoryRepo) Delete(ctx context.Context, entityID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[entityID]; !ok {
		return ErrNotFound
	}
	delete(r.data, entityID)
	for docID := range r.byEntity[entityID] {
		delete(r.byDoc[docID], entityID)
	}
	delete(r.byEntity, entityID)
	return nil
}

// CountsByType returns entity counts grouped by type.
func (r *MemoryRepo) CountsByType(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int)
	for _, entity := range r.data {
		counts[entity.Type]++
	}
	return counts, nil
}

// Resolve maps entity specs to existing or newly created entities using the
// archive-wide case-insensitive (name, type) policy.
func (r *MemoryRepo) Resolve(ctx context.Context, specs []Spec) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	resolved := make([]Entity, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" || !ValidType(spec.Type) {
			return nil, ErrInvalidInput
		}
		key := strings.ToLower(name) + "|" + spec.Type
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entity, ok := r.findLocked(name, spec.Type)
		if !ok {
			entity = Entity{ID: uuid.NewString(), Name: name, Type: spec.Type, Date: spec.Date}
			r.data[entity.ID] = entity
		}
		resolved = append(resolved, entity)
	}
	return resolved, nil
}

// Link records edges between a document and the given entities.
func (r *MemoryRepo) Link(docID string, entityIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byDoc[docID] == nil {
		r.byDoc[docID] = make(map[string]struct{})
	}
	for _, entityID := range entityIDs {
		r.byDoc[docID][entityID] = struct{}{}
		if r.byEntity[entityID] == nil {
			r.byEntity[entityID] = make(map[string]struct{})
		}
		r.byEntity[entityID][docID] = struct{}{}
	}
}

// Unlink removes all edges touching a document; the entities remain.
func (r *MemoryRepo) Unlink(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for entityID := range r.byDoc[docID] {
		delete(r.byEntity[entityID], docID)
	}
	delete(r.byDoc, docID)
}

// ForDocument returns the entities linked to a document, sorted by name.
func (r *MemoryRepo) ForDocument(docID string) []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entity, 0, len(r.byDoc[docID]))
	for entityID := range r.byDoc[docID] {
		entity, ok := r.data[entityID]
		if !ok {
			continue
		}
		entity.DocumentCount = len(r.byEntity[entityID])
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DocumentIDsFor returns the documents linked to an entity.
func (r *MemoryRepo) DocumentIDsFor(entityID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byEntity[entityID]))
	for docID := range r.byEntity[entityID] {
		out = append(out, docID)
	}
	sort.Strings(out)
	return out
}

func (r *MemoryRepo) findLocked(name, entityType string) (Entity, bool) {
	for _, entity := range r.data {
		if entity.Type == entityType && strings.EqualFold(entity.Name, name) {
			return entity, true
		}
	}
	return Entity{}, false
}

func (r *MemoryRepo) pageOf(ctx context.Context, page, limit int, match func(Entity) bool) ([]Entity, int, error) {
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
	all := make([]Entity, 0, len(r.data))
	for id, entity := range r.data {
		if match(entity) {
			entity.DocumentCount = len(r.byEntity[id])
			all = append(all, entity)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

var _ Repo = (*MemoryRepo)(nil)
