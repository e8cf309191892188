package query

import (
	"reflect"
	"testing"
)

func TestModeSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Mode
	}{
		{name: "empty", query: "", want: ModeListing},
		{name: "whitespace only", query: "   ", want: ModeListing},
		{name: "single char", query: "a", want: ModeListing},
		{name: "single char padded", query: "  a  ", want: ModeListing},
		{name: "two chars", query: "ab", want: ModeSearching},
		{name: "two chars padded", query: " ab ", want: ModeSearching},
		{name: "full word", query: "regiment", want: ModeSearching},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Query: tt.query}
			if got := req.Mode(); got != tt.want {
				t.Fatalf("Mode(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClampDefaults(t *testing.T) {
	req := Request{Page: 0, Limit: 0}.Clamp()
	if req.Page != 1 {
		t.Fatalf("expected page 1, got %d", req.Page)
	}
	if req.Limit != DefaultLimit {
		t.Fatalf("expected limit %d, got %d", DefaultLimit, req.Limit)
	}

	req = Request{Page: 3, Limit: 500}.Clamp()
	if req.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, req.Limit)
	}
	if req.Page != 3 {
		t.Fatalf("expected page 3 preserved, got %d", req.Page)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{100, 10, 10},
		{101, 10, 11},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestWindowClamping(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []int
	}{
		{name: "middle", current: 5, total: 9, want: []int{3, 4, 5, 6, 7}},
		{name: "left edge", current: 1, total: 9, want: []int{1, 2, 3, 4, 5}},
		{name: "near left edge", current: 2, total: 9, want: []int{1, 2, 3, 4, 5}},
		{name: "right edge", current: 9, total: 9, want: []int{5, 6, 7, 8, 9}},
		{name: "near right edge", current: 8, total: 9, want: []int{5, 6, 7, 8, 9}},
		{name: "fewer pages than window", current: 2, total: 3, want: []int{1, 2, 3}},
		{name: "single page", current: 1, total: 1, want: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(tt.current, tt.total, WindowSize)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Window(%d, %d, %d) = %v, want %v", tt.current, tt.total, WindowSize, got, tt.want)
			}
		})
	}

	if got := Window(1, 0, WindowSize); got != nil {
		t.Fatalf("expected nil window for zero pages, got %v", got)
	}
}

func TestTrackerResetsPageOnModeChange(t *testing.T) {
	tracker := NewTracker()

	first := tracker.Normalize("caller-1", Request{Page: 4, Limit: 10})
	if first.Page != 4 {
		t.Fatalf("first request should keep page 4, got %d", first.Page)
	}

	// Same listing request again keeps the page.
	again := tracker.Normalize("caller-1", Request{Page: 5, Limit: 10})
	if again.Page != 5 {
		t.Fatalf("same fingerprint should keep page 5, got %d", again.Page)
	}

	// Switching to search resets to page 1.
	searched := tracker.Normalize("caller-1", Request{Query: "somme", Page: 5, Limit: 10})
	if searched.Page != 1 {
		t.Fatalf("mode change should reset page to 1, got %d", searched.Page)
	}
}

func TestTrackerResetsPageOnFilterChange(t *testing.T) {
	tracker := NewTracker()

	tracker.Normalize("caller-1", Request{Filters: Filters{DocumentType: "letter"}, Page: 3, Limit: 10})
	changed := tracker.Normalize("caller-1", Request{Filters: Filters{DocumentType: "report"}, Page: 3, Limit: 10})
	if changed.Page != 1 {
		t.Fatalf("filter change should reset page to 1, got %d", changed.Page)
	}
}

func TestTrackerIsolatesCallers(t *testing.T) {
	tracker := NewTracker()

	tracker.Normalize("caller-1", Request{Filters: Filters{DocumentType: "letter"}, Page: 3, Limit: 10})
	other := tracker.Normalize("caller-2", Request{Filters: Filters{DocumentType: "report"}, Page: 3, Limit: 10})
	if other.Page != 3 {
		t.Fatalf("different caller should keep its page, got %d", other.Page)
	}
}

func TestTrackerQueryBelowThresholdIsListing(t *testing.T) {
	tracker := NewTracker()

	tracker.Normalize("caller-1", Request{Page: 2, Limit: 10})
	// A one-char query is still listing mode, so the fingerprint is unchanged.
	short := tracker.Normalize("caller-1", Request{Query: "a", Page: 2, Limit: 10})
	if short.Page != 2 {
		t.Fatalf("sub-threshold query should not reset the page, got %d", short.Page)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 17, 2, 5)
	if page.TotalPages != 4 {
		t.Fatalf("expected 4 total pages, got %d", page.TotalPages)
	}
	if page.Total != 17 || page.Page != 2 || page.Limit != 5 {
		t.Fatalf("unexpected page shape: %+v", page)
	}

	empty := NewPage[string](nil, 0, 1, 10)
	if empty.Items == nil {
		t.Fatal("expected non-nil items slice for empty page")
	}
}
