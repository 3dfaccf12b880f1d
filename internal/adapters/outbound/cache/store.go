package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plcqa/plcqa/internal/domain"
)

// Store is a file-based implementation of domain.ResultStore.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads a result cache from disk. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.ResultCache, error) {
	path := cachePath(projectPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var cache domain.ResultCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cache, nil
}

// Save writes a result cache to disk, creating directories as needed.
func (s *Store) Save(cache *domain.ResultCache) error {
	dir := cacheDir(cache.ProjectPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(cache.ProjectPath), data, 0644)
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	path := cachePath(projectPath)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".plcqa", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "results.json")
}
