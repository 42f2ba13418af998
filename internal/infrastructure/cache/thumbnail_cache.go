package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"virtualitems/internal/infrastructure/metrics"
	"virtualitems/pkg/errors"
)

const DefaultMemoryEntries = 128

// ThumbnailCache keeps thumbnail bytes on disk as {dir}/{id} with a small in-memory LRU in front.
// There is no TTL; an entry changes only when it is overwritten or invalidated.
// Concurrent writes for the same id are not serialized.
type ThumbnailCache struct {
	dir    string
	memory *lru.Cache[string, []byte]
}

func NewThumbnailCache(dir string, memoryEntries int) (*ThumbnailCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("thumbnail cache directory is required")
	}
	if memoryEntries <= 0 {
		memoryEntries = DefaultMemoryEntries
	}

	memory, err := lru.New[string, []byte](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail memory cache: %w", err)
	}

	return &ThumbnailCache{
		dir:    dir,
		memory: memory,
	}, nil
}

// ValidateKey rejects ids that would escape the cache directory.
func ValidateKey(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Validation("virtual item id is required")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || filepath.Base(id) != id {
		return errors.Validation("virtual item id is not a valid cache key")
	}
	return nil
}

// Get returns the cached bytes for id. A missing entry is not an error.
func (c *ThumbnailCache) Get(id string) ([]byte, bool, error) {
	if err := ValidateKey(id); err != nil {
		return nil, false, err
	}

	if data, ok := c.memory.Get(id); ok {
		metrics.ThumbnailLookups.WithLabelValues(metrics.TierMemory).Inc()
		return data, true, nil
	}

	data, err := os.ReadFile(c.path(id))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Internal("failed to read cached thumbnail", err)
	}

	c.memory.Add(id, data)
	metrics.ThumbnailLookups.WithLabelValues(metrics.TierDisk).Inc()
	return data, true, nil
}

// Put writes data for id, creating the cache directory on first use.
func (c *ThumbnailCache) Put(id string, data []byte) error {
	if err := ValidateKey(id); err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Internal("failed to create thumbnail cache directory", err)
	}
	if err := os.WriteFile(c.path(id), data, 0o644); err != nil {
		return errors.Internal("failed to write cached thumbnail", err)
	}

	c.memory.Add(id, data)
	return nil
}

func (c *ThumbnailCache) Invalidate(id string) error {
	if err := ValidateKey(id); err != nil {
		return err
	}

	c.memory.Remove(id)
	if err := os.Remove(c.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Internal("failed to remove cached thumbnail", err)
	}
	return nil
}

func (c *ThumbnailCache) path(id string) string {
	return filepath.Join(c.dir, id)
}
