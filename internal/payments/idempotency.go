package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sokoplace/sokoplace-backend/pkg/redis"
)

// ReferenceGuard ensures each payment reference is processed at most once.
// The mark is taken before any side effect and released again when the
// attempt fails, so a retry with the same reference can go through.
type ReferenceGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewReferenceGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*ReferenceGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &ReferenceGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark marks the reference and reports whether it was already marked.
func (g *ReferenceGuard) CheckAndMark(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, errors.New("payment reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, reference)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release removes the mark so a later retry is not treated as a duplicate.
func (g *ReferenceGuard) Release(ctx context.Context, reference string) error {
	if reference == "" {
		return errors.New("payment reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, reference)
	return g.store.Del(ctx, key)
}
