package documents

import (
	"context"
	"errors"
	"testing"

	"archive-backend/internal/entities"
	"archive-backend/internal/query"
	"archive-backend/internal/shared/cache"
)

type countingRepo struct {
	Repo
	listCalls   int
	searchCalls int
	statsErr    error
}

func (r *countingRepo) List(ctx context.Context, filters query.Filters, page, limit int) ([]Document, int, error) {
	r.listCalls++
	return r.Repo.List(ctx, filters, page, limit)
}

func (r *countingRepo) Search(ctx context.Context, q string, page, limit int) ([]Document, int, error) {
	r.searchCalls++
	return r.Repo.Search(ctx, q, page, limit)
}

func (r *countingRepo) Stats(ctx context.Context, recent int) (Stats, error) {
	if r.statsErr != nil {
		return Stats{}, r.statsErr
	}
	return r.Repo.Stats(ctx, recent)
}

func newTestService(t *testing.T) (*Service, *countingRepo) {
	t.Helper()
	repo := &countingRepo{Repo: NewMemoryRepo(entities.NewMemoryRepo())}
	return NewService(repo, cache.NewTTL(nil)), repo
}

func seedDocument(t *testing.T, svc *Service, title, docType string, specs []entities.Spec) Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), Document{
		Title:        title,
		Content:      "content of " + title,
		DocumentType: docType,
	}, specs)
	if err != nil {
		t.Fatalf("seed %q: %v", title, err)
	}
	return doc
}

func TestQuerySelectsListOrSearchPath(t *testing.T) {
	svc, repo := newTestService(t)
	seedDocument(t, svc, "Supply ledger", TypeList, nil)

	if _, err := svc.Query(context.Background(), "caller", query.Request{}); err != nil {
		t.Fatalf("list query: %v", err)
	}
	if repo.listCalls != 1 || repo.searchCalls != 0 {
		t.Fatalf("expected list path, got list=%d search=%d", repo.listCalls, repo.searchCalls)
	}

	if _, err := svc.Query(context.Background(), "caller", query.Request{Query: "ledger"}); err != nil {
		t.Fatalf("search query: %v", err)
	}
	if repo.searchCalls != 1 {
		t.Fatalf("expected search path, got search=%d", repo.searchCalls)
	}

	// A single character is below the search threshold and lists instead.
	if _, err := svc.Query(context.Background(), "caller", query.Request{Query: "l"}); err != nil {
		t.Fatalf("short query: %v", err)
	}
	if repo.searchCalls != 1 || repo.listCalls != 2 {
		t.Fatalf("short query must list, got list=%d search=%d", repo.listCalls, repo.searchCalls)
	}
}

func TestQueryResetsPageWhenFingerprintChanges(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 3; i++ {
		seedDocument(t, svc, "Report "+string(rune('A'+i)), TypeReport, nil)
	}

	page, err := svc.Query(context.Background(), "caller", query.Request{Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	if page.Page != 2 {
		t.Fatalf("first request keeps its page, got %d", page.Page)
	}

	// Switching to search mode resets the page.
	page, err = svc.Query(context.Background(), "caller", query.Request{Query: "Report", Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("search query: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("mode change must reset to page 1, got %d", page.Page)
	}

	// A different caller is tracked independently.
	page, err = svc.Query(context.Background(), "other", query.Request{Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("other caller: %v", err)
	}
	if page.Page != 2 {
		t.Fatalf("other caller must keep its page, got %d", page.Page)
	}
}

func TestQueryServesRepeatsFromCache(t *testing.T) {
	svc, repo := newTestService(t)
	seedDocument(t, svc, "Harbor photo", TypePhoto, nil)

	req := query.Request{Filters: query.Filters{DocumentType: TypePhoto}}
	if _, err := svc.Query(context.Background(), "caller", req); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, err := svc.Query(context.Background(), "caller", req); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("repeat should hit the cache, got %d repo calls", repo.listCalls)
	}
}

func TestMutationsPurgeCachedReads(t *testing.T) {
	svc, repo := newTestService(t)
	seedDocument(t, svc, "First letter", TypeLetter, nil)

	if _, err := svc.Query(context.Background(), "caller", query.Request{}); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	seedDocument(t, svc, "Second letter", TypeLetter, nil)

	page, err := svc.Query(context.Background(), "caller", query.Request{})
	if err != nil {
		t.Fatalf("query after create: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("create must purge the cache, got total %d", page.Total)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected a fresh repo read after purge, got %d", repo.listCalls)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []struct {
		name string
		doc  Document
	}{
		{"empty title", Document{Content: "c", DocumentType: TypeLetter}},
		{"empty content", Document{Title: "t", DocumentType: TypeLetter}},
		{"unknown type", Document{Title: "t", Content: "c", DocumentType: "scroll"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.doc, nil); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	doc := seedDocument(t, svc, "Diary", TypeDiaryEntry, nil)

	if _, err := svc.Update(context.Background(), doc.ID, UpdateParams{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("all-nil update must be rejected, got %v", err)
	}
	empty := "  "
	if _, err := svc.Update(context.Background(), doc.ID, UpdateParams{Title: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title must be rejected, got %v", err)
	}
	bad := "scroll"
	if _, err := svc.Update(context.Background(), doc.ID, UpdateParams{DocumentType: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown type must be rejected, got %v", err)
	}

	title := "Diary, revised"
	updated, err := svc.Update(context.Background(), doc.ID, UpdateParams{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	svc, _ := newTestService(t)
	doc := seedDocument(t, svc, "Old map", TypeMap, nil)

	if err := svc.Delete(context.Background(), doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete must be ErrNotFound, got %v", err)
	}
}

func TestStatsDegradeOnRepoFailure(t *testing.T) {
	svc, repo := newTestService(t)
	seedDocument(t, svc, "Census list", TypeList, nil)
	repo.statsErr = errors.New("relation missing")

	stats := svc.Stats(context.Background())
	if stats.Total != 0 {
		t.Fatalf("degraded stats must be zeroed, got total %d", stats.Total)
	}
	if stats.ByType == nil || stats.MostRecent == nil {
		t.Fatal("degraded stats must keep non-nil slices")
	}
}

func TestStatsReportCountsByType(t *testing.T) {
	svc, _ := newTestService(t)
	seedDocument(t, svc, "Letter one", TypeLetter, nil)
	seedDocument(t, svc, "Letter two", TypeLetter, nil)
	seedDocument(t, svc, "Harbor photo", TypePhoto, nil)

	stats := svc.Stats(context.Background())
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	counts := make(map[string]int)
	for _, row := range stats.ByType {
		counts[row.DocumentType] = row.Count
	}
	if counts[TypeLetter] != 2 || counts[TypePhoto] != 1 {
		t.Fatalf("unexpected type counts: %+v", counts)
	}
	if len(stats.MostRecent) != 3 {
		t.Fatalf("expected 3 recent documents, got %d", len(stats.MostRecent))
	}
}

func TestCreateAssignsID(t *testing.T) {
	svc, _ := newTestService(t)

	first := seedDocument(t, svc, "First letter", TypeLetter, nil)
	second := seedDocument(t, svc, "Second letter", TypeLetter, nil)

	if first.ID == "" || second.ID == "" {
		t.Fatalf("expected generated IDs, got %q and %q", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatal("consecutive creates must not share an ID")
	}

	// Both survive independently and are fetchable by their key.
	for _, doc := range []Document{first, second} {
		got, err := svc.Get(context.Background(), doc.ID)
		if err != nil {
			t.Fatalf("get %q: %v", doc.ID, err)
		}
		if got.Title != doc.Title {
			t.Fatalf("expected %q, got %q", doc.Title, got.Title)
		}
	}
}

func TestCreateKeepsCallerProvidedID(t *testing.T) {
	svc, _ := newTestService(t)

	doc, err := svc.Create(context.Background(), Document{
		ID:           "doc-fixed",
		Title:        "Fixed letter",
		Content:      "c",
		DocumentType: TypeLetter,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID != "doc-fixed" {
		t.Fatalf("caller-provided ID must be kept, got %q", doc.ID)
	}
}

func TestSearchMatchesLinkedEntityNames(t *testing.T) {
	svc, _ := newTestService(t)
	seedDocument(t, svc, "Field report", TypeReport, []entities.Spec{
		{Name: "Margaret Hale", Type: entities.TypePerson},
	})
	seedDocument(t, svc, "Harbor photo", TypePhoto, nil)

	page, err := svc.Query(context.Background(), "caller", query.Request{Query: "margaret"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "Field report" {
		t.Fatalf("expected the linked document only, got %+v", page)
	}

	// The fragment matches entity names the same way it matches titles.
	page, err = svc.Query(context.Background(), "caller", query.Request{Query: "hale"})
	if err != nil {
		t.Fatalf("fragment search: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected a substring match on the entity name, got %+v", page)
	}
}
