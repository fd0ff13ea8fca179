package storage

import (
	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory only. Used when no state file
// is configured and as the store in tests.
type MemoryStore struct {
	c *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, cache.NoExpiration)}
}

func (s *MemoryStore) GetItem(key string) (string, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *MemoryStore) SetItem(key, value string) error {
	s.c.Set(key, value, cache.NoExpiration)
	return nil
}
