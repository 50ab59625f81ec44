package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okonechnikov/chromesnap/internal/config"
)

// Record describes one installed build, keyed in the registry by its
// install key (version when known, revision otherwise).
type Record struct {
	// Revision is the snapshot identifier the build came from.
	Revision string `json:"revision"`
	// Path is the installation directory.
	Path string `json:"path"`
	// InstalledAt is when the install completed.
	InstalledAt time.Time `json:"installed_at"`
	// Size is the on-disk size of the installation in bytes.
	Size int64 `json:"size"`
}

// Repository defines persistence operations for the installed registry.
type Repository interface {
	Load(ctx context.Context) (map[string]Record, error)
	Get(ctx context.Context, key string) (*Record, error)
	Put(ctx context.Context, key string, record Record) error
	Delete(ctx context.Context, key string) error
}

// ErrNotFound is returned when no record exists for an install key.
var ErrNotFound = errors.New("build is not installed")

// FileRepository persists the installed registry as a JSON object on
// disk, keyed by install key. Mutations are read-modify-write; callers
// must hold the cross-process lock around them.
type FileRepository struct {
	// path is the filesystem location of the registry file.
	path string
	// mu protects concurrent access to the registry file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the
// provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads all records. A missing file is an empty registry;
// corrupted content surfaces as a decode error.
func (r *FileRepository) Load(_ context.Context) (map[string]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadLocked()
}

// Get returns the record for key, or ErrNotFound.
func (r *FileRepository) Get(ctx context.Context, key string) (*Record, error) {
	records, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	record, ok := records[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return &record, nil
}

// Put inserts or replaces the record for key.
func (r *FileRepository) Put(_ context.Context, key string, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return err
	}

	records[key] = record

	return r.saveLocked(records)
}

// Delete removes the record for key; deleting an absent key is a no-op.
func (r *FileRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return err
	}

	if _, ok := records[key]; !ok {
		return nil
	}

	delete(records, key)

	return r.saveLocked(records)
}

func (r *FileRepository) loadLocked() (map[string]Record, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Record{}, nil
		}

		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var records map[string]Record
	if err = json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("decode registry file: %w", err)
	}

	if records == nil {
		records = map[string]Record{}
	}

	return records, nil
}

func (r *FileRepository) saveLocked(records map[string]Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("prepare registry dir: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}

	return nil
}
