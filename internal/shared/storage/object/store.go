package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the provider has no file for the given ID.
var ErrNotFound = errors.New("file not found")

// FileInfo describes a file held by the external storage provider.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path,omitempty"`
	MimeType   string    `json:"mimeType,omitempty"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt,omitempty"`
}

// FileList is a page of provider files in the uniform paginated shape.
type FileList struct {
	Items []FileInfo `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ProviderInfo identifies the configured storage backend.
type ProviderInfo struct {
	Provider string `json:"provider"`
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
}

// Store is the read-only gateway to the external object-storage provider.
// File lifecycle (upload, move, permissions) is out of scope; callers only
// browse, stat and download. No call retries automatically.
type Store interface {
	List(ctx context.Context, folder string, page, limit int) (FileList, error)
	Search(ctx context.Context, query, folder string, page, limit int) (FileList, error)
	Stat(ctx context.Context, fileID string) (FileInfo, error)
	Open(ctx context.Context, fileID string) (io.ReadCloser, error)
	Info(ctx context.Context) ProviderInfo
	Healthy(ctx context.Context) error
}

// Paginate slices infos into the uniform page shape. Page numbering is 1-based.
func Paginate(infos []FileInfo, page, limit int) FileList {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(infos)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return FileList{
		Items: infos[start:end],
		Total: total,
		Page:  page,
		Limit: limit,
	}
}
