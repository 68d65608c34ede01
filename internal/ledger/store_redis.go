package ledger

import (
	"context"
	"time"

	"github.com/sokoplace/sokoplace-backend/pkg/redis"
)

// RedisStore keeps ledger entries in Redis so they survive restarts and are
// shared across instances.
type RedisStore struct {
	kv redis.KVStore
}

// NewRedisStore wires a ledger store over the shared Redis client.
func NewRedisStore(kv redis.KVStore) *RedisStore {
	return &RedisStore{kv: kv}
}

func (s *RedisStore) Put(ctx context.Context, buyerID string, payload []byte, ttl time.Duration) error {
	return s.kv.Set(ctx, s.kv.LedgerKey(buyerID), payload, ttl)
}

func (s *RedisStore) Get(ctx context.Context, buyerID string) ([]byte, bool, error) {
	value, err := s.kv.Get(ctx, s.kv.LedgerKey(buyerID))
	if err != nil {
		if redis.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *RedisStore) Delete(ctx context.Context, buyerID string) error {
	return s.kv.Del(ctx, s.kv.LedgerKey(buyerID))
}
