package query

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultLimit applies when the caller sends no page size.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
	// WindowSize is the number of page-number entries in the UI window.
	WindowSize = 5

	minSearchLength = 2
)

// Mode selects which backing path serves a request. The two paths are
// mutually exclusive per request and never raced concurrently.
type Mode int

const (
	ModeListing Mode = iota
	ModeSearching
)

func (m Mode) String() string {
	if m == ModeSearching {
		return "searching"
	}
	return "listing"
}

// Filters narrow a listing-mode request.
type Filters struct {
	DocumentType string
	EntityName   string
	Keyword      string
	SortBy       string
	StartDate    string
	EndDate      string
}

// Request is one paginated query against the archive.
type Request struct {
	Query   string
	Filters Filters
	Page    int
	Limit   int
}

// Mode returns the backing path for this request: a trimmed query of length
// >= 2 selects the search path, anything shorter the listing path.
func (r Request) Mode() Mode {
	if len(strings.TrimSpace(r.Query)) >= minSearchLength {
		return ModeSearching
	}
	return ModeListing
}

// Clamp normalizes page and limit into their valid ranges.
func (r Request) Clamp() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

func (r Request) fingerprint() string {
	mode := r.Mode()
	q := ""
	if mode == ModeSearching {
		q = strings.TrimSpace(r.Query)
	}
	f := r.Filters
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		mode, q, f.DocumentType, f.EntityName, f.Keyword, f.SortBy, f.StartDate, f.EndDate)
}

// Tracker resets the page to 1 whenever a caller's query mode or any filter
// value changes between consecutive requests, so a stale page index is never
// applied to a different result set.
type Tracker struct {
	mu   sync.Mutex
	last map[string]string
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]string)}
}

// Normalize clamps the request and applies the page-reset rules for caller.
func (t *Tracker) Normalize(caller string, req Request) Request {
	req = req.Clamp()
	if t == nil {
		return req
	}
	fp := req.fingerprint()
	t.mu.Lock()
	prev, seen := t.last[caller]
	t.last[caller] = fp
	t.mu.Unlock()
	if seen && prev != fp {
		req.Page = 1
	}
	return req
}

// TotalPages computes ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Window returns a fixed-size sliding window of page numbers centered on
// current, clamped so it never starts below 1 or extends past totalPages.
func Window(current, totalPages, size int) []int {
	if totalPages < 1 || size < 1 {
		return nil
	}
	if size > totalPages {
		size = totalPages
	}
	start := current - size/2
	if start < 1 {
		start = 1
	}
	if start+size-1 > totalPages {
		start = totalPages - size + 1
	}
	pages := make([]int, size)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// Page is the uniform paginated result shape shared by the listing and
// search paths.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage assembles the uniform shape, deriving TotalPages.
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}
