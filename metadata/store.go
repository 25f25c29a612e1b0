package metadata

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the persistence surface for serialized caches. The
// catalogue only needs get/set-by-key semantics and is agnostic to the
// storage medium. Load failures (missing key, corrupt value) are
// recoverable errors, not fatal.
type Store interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error)
}

// FileStore keeps each key as a file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created
// on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *FileStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return data, nil
}

// SaveTo exports the cache and writes it under key.
func (c *Catalogue) SaveTo(store Store, key string) error {
	data, err := c.ExportCache()
	if err != nil {
		return err
	}
	return store.Save(key, data)
}

// LoadFrom reads the cache under key and imports it. A missing or
// corrupt value surfaces as a recoverable error with the catalogue
// unchanged.
func (c *Catalogue) LoadFrom(store Store, key string) error {
	data, err := store.Load(key)
	if err != nil {
		return err
	}
	return c.ImportCache(data)
}
