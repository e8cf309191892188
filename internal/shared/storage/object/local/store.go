package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"archive-backend/internal/shared/storage/object"
)

// Store implements the storage gateway over a local directory tree.
// Relative paths under baseDir act as file IDs; used in dev and tests.
type Store struct {
	baseDir string
}

// New creates a gateway rooted at baseDir.
func New(baseDir string) object.Store {
	return &Store{baseDir: baseDir}
}

// List returns a page of files under the given folder, newest first.
func (s *Store) List(ctx context.Context, folder string, page, limit int) (object.FileList, error) {
	infos, err := s.collect(ctx, folder)
	if err != nil {
		return object.FileList{}, err
	}
	return object.Paginate(infos, page, limit), nil
}

// Search returns a page of files whose name contains query, case-insensitive.
func (s *Store) Search(ctx context.Context, query, folder string, page, limit int) (object.FileList, error) {
	infos, err := s.collect(ctx, folder)
	if err != nil {
		return object.FileList{}, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	matched := infos[:0]
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name), needle) {
			matched = append(matched, info)
		}
	}
	return object.Paginate(matched, page, limit), nil
}

// Stat returns metadata for a single file.
func (s *Store) Stat(ctx context.Context, fileID string) (object.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return object.FileInfo{}, err
	}
	fullPath, err := s.resolve(fileID)
	if err != nil {
		return object.FileInfo{}, err
	}
	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return object.FileInfo{}, object.ErrNotFound
		}
		return object.FileInfo{}, err
	}
	if stat.IsDir() {
		return object.FileInfo{}, object.ErrNotFound
	}
	return fileInfo(fileID, stat), nil
}

// Open opens a stored file for reading.
func (s *Store) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(fileID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Info identifies the local backend.
func (s *Store) Info(ctx context.Context) object.ProviderInfo {
	return object.ProviderInfo{Provider: "local", Prefix: s.baseDir}
}

// Healthy checks the base directory is readable.
func (s *Store) Healthy(ctx context.Context) error {
	if _, err := os.Stat(s.baseDir); err != nil {
		return fmt.Errorf("local store dir %s: %w", s.baseDir, err)
	}
	return nil
}

func (s *Store) collect(ctx context.Context, folder string) ([]object.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := s.baseDir
	if cleaned := strings.Trim(folder, "/"); cleaned != "" {
		resolved, err := s.resolve(cleaned)
		if err != nil {
			return nil, err
		}
		root = resolved
	}

	var infos []object.FileInfo
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.baseDir, p)
		if relErr != nil {
			return relErr
		}
		stat, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		infos = append(infos, fileInfo(filepath.ToSlash(rel), stat))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

func (s *Store) resolve(fileID string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(fileID))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file id")
	}
	return filepath.Join(s.baseDir, clean), nil
}

func fileInfo(id string, stat fs.FileInfo) object.FileInfo {
	return object.FileInfo{
		ID:         id,
		Name:       path.Base(id),
		Path:       path.Dir(id),
		MimeType:   mime.TypeByExtension(path.Ext(id)),
		Size:       stat.Size(),
		ModifiedAt: stat.ModTime(),
	}
}

var _ object.Store = (*Store)(nil)
