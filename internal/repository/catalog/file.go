package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/okonechnikov/chromesnap/internal/catalog"
	"github.com/okonechnikov/chromesnap/internal/config"
)

// Repository defines persistence operations for the build catalog.
type Repository interface {
	Load(ctx context.Context) (catalog.Catalog, error)
	Save(ctx context.Context, c catalog.Catalog) error
}

// ErrNotFound is returned when no catalog has been persisted yet.
var ErrNotFound = errors.New("catalog not found")

// FileRepository persists the catalog as a single JSON array on disk.
// Every save replaces the file wholly; there is no incremental merge.
type FileRepository struct {
	// path is the filesystem location of the catalog file.
	path string
	// mu protects concurrent access to the catalog file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the
// provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the catalog from disk. Corrupted content surfaces as a
// decode error, never as an empty catalog.
func (r *FileRepository) Load(_ context.Context) (catalog.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var c catalog.Catalog
	if err = json.Unmarshal(contents, &c); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	return c, nil
}

// Save replaces the persisted catalog with the provided one.
func (r *FileRepository) Save(_ context.Context, c catalog.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c == nil {
		c = catalog.Catalog{}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("prepare catalog dir: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}

	return nil
}
