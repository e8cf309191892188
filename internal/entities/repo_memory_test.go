package entities

import (
	"context"
	"errors"
	"testing"
)

func resolveOne(t *testing.T, repo *MemoryRepo, name, entityType string) Entity {
	t.Helper()
	ents, err := repo.Resolve(context.Background(), []Spec{{Name: name, Type: entityType}})
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}
	if len(ents) != 1 {
		t.Fatalf("expected one entity, got %d", len(ents))
	}
	return ents[0]
}

func TestResolveReusesCaseInsensitiveMatch(t *testing.T) {
	repo := NewMemoryRepo()

	first := resolveOne(t, repo, "Margaret Hale", TypePerson)
	second := resolveOne(t, repo, "MARGARET HALE", TypePerson)

	if first.ID != second.ID {
		t.Fatalf("expected the same entity, got %q and %q", first.ID, second.ID)
	}
	if second.Name != "Margaret Hale" {
		t.Fatalf("canonical casing must be kept, got %q", second.Name)
	}

	// Same name with a different type is a different entity.
	other := resolveOne(t, repo, "Margaret Hale", TypeLocation)
	if other.ID == first.ID {
		t.Fatal("type is part of the identity")
	}
}

func TestResolveDeduplicatesWithinBatch(t *testing.T) {
	repo := NewMemoryRepo()

	ents, err := repo.Resolve(context.Background(), []Spec{
		{Name: "Third Regiment", Type: TypeUnit},
		{Name: "third regiment", Type: TypeUnit},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ents) != 1 {
		t.Fatalf("duplicate mentions must collapse, got %d entities", len(ents))
	}
}

func TestLinkAndForDocument(t *testing.T) {
	repo := NewMemoryRepo()
	person := resolveOne(t, repo, "Margaret Hale", TypePerson)
	place := resolveOne(t, repo, "Antwerp", TypeLocation)

	repo.Link("doc-1", []string{person.ID, place.ID})
	repo.Link("doc-2", []string{person.ID})

	linked := repo.ForDocument("doc-1")
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked entities, got %d", len(linked))
	}
	// Sorted by name, with document counts from the association edges.
	if linked[0].Name != "Antwerp" || linked[1].Name != "Margaret Hale" {
		t.Fatalf("expected name order, got %q, %q", linked[0].Name, linked[1].Name)
	}
	if linked[1].DocumentCount != 2 {
		t.Fatalf("expected document count 2, got %d", linked[1].DocumentCount)
	}

	docs := repo.DocumentIDsFor(person.ID)
	if len(docs) != 2 || docs[0] != "doc-1" || docs[1] != "doc-2" {
		t.Fatalf("unexpected document ids: %v", docs)
	}
}

func TestUnlinkKeepsEntities(t *testing.T) {
	repo := NewMemoryRepo()
	person := resolveOne(t, repo, "Margaret Hale", TypePerson)
	repo.Link("doc-1", []string{person.ID})

	repo.Unlink("doc-1")

	if got := repo.ForDocument("doc-1"); len(got) != 0 {
		t.Fatalf("expected no links, got %d", len(got))
	}
	if _, err := repo.GetByID(context.Background(), person.ID); err != nil {
		t.Fatalf("entity must survive unlink: %v", err)
	}
}

func TestDeleteRemovesEdgesBothWays(t *testing.T) {
	repo := NewMemoryRepo()
	person := resolveOne(t, repo, "Margaret Hale", TypePerson)
	place := resolveOne(t, repo, "Antwerp", TypeLocation)
	repo.Link("doc-1", []string{person.ID, place.ID})

	if err := repo.Delete(context.Background(), person.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), person.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	linked := repo.ForDocument("doc-1")
	if len(linked) != 1 || linked[0].ID != place.ID {
		t.Fatalf("expected only the remaining entity, got %+v", linked)
	}
	if err := repo.Delete(context.Background(), person.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete must be ErrNotFound, got %v", err)
	}
}

func TestSearchAndByType(t *testing.T) {
	repo := NewMemoryRepo()
	resolveOne(t, repo, "Margaret Hale", TypePerson)
	resolveOne(t, repo, "Marga Schmidt", TypePerson)
	resolveOne(t, repo, "Antwerp", TypeLocation)

	items, total, err := repo.Search(context.Background(), "marga", 1, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", total, len(items))
	}

	items, total, err = repo.ByType(context.Background(), TypeLocation, 1, 10)
	if err != nil {
		t.Fatalf("by type: %v", err)
	}
	if total != 1 || items[0].Name != "Antwerp" {
		t.Fatalf("unexpected by-type result: total=%d %+v", total, items)
	}
}

func TestCountsByType(t *testing.T) {
	repo := NewMemoryRepo()
	resolveOne(t, repo, "Margaret Hale", TypePerson)
	resolveOne(t, repo, "Marga Schmidt", TypePerson)
	resolveOne(t, repo, "Antwerp", TypeLocation)

	counts, err := repo.CountsByType(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[TypePerson] != 2 || counts[TypeLocation] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestUpdateRenameChangesIdentity(t *testing.T) {
	repo := NewMemoryRepo()
	person := resolveOne(t, repo, "M. Hale", TypePerson)

	name := "Margaret Hale"
	updated, err := repo.Update(context.Background(), person.ID, UpdateParams{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected renamed entity, got %q", updated.Name)
	}

	// Resolution against the new name reuses the renamed row.
	again := resolveOne(t, repo, "margaret hale", TypePerson)
	if again.ID != person.ID {
		t.Fatalf("expected reuse after rename, got %q and %q", again.ID, person.ID)
	}
}
