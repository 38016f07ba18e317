package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"

	"fx-converter/internal/domain/ports"
)

// MemoryStore keeps values in a freecache ring buffer. Entries never expire but the
// store does not survive restarts; use it for tests or throwaway deployments.
type MemoryStore struct {
	cache *freecache.Cache
}

// NewMemoryStore allocates sizeBytes up front. A single value must stay below
// sizeBytes/1024 or Set fails with freecache.ErrLargeEntry.
func NewMemoryStore(sizeBytes int) *MemoryStore {
	return &MemoryStore{cache: freecache.NewCache(sizeBytes)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	data, err := m.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return string(data), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value string) error {
	if err := m.cache.Set([]byte(key), []byte(value), 0); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
