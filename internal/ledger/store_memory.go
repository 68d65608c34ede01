package ledger

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps ledger entries in process memory. It backs local
// development and tests where Redis is not available.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore builds an in-process ledger store. defaultTTL bounds how long
// entries linger when Put is called with a zero ttl.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &MemoryStore{
		cache: gocache.New(defaultTTL, 10*time.Minute),
	}
}

func (s *MemoryStore) Put(_ context.Context, buyerID string, payload []byte, ttl time.Duration) error {
	s.cache.Set(buyerID, payload, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, buyerID string) ([]byte, bool, error) {
	value, found := s.cache.Get(buyerID)
	if !found {
		return nil, false, nil
	}
	payload, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, buyerID string) error {
	s.cache.Delete(buyerID)
	return nil
}
