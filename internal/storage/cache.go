package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnmchuo/llm-compare/internal/compare"
)

const cacheTTL = 5 * time.Minute

// CachedStore adds a Redis read-through cache in front of another Store.
// Comparisons are immutable after creation, so cached entries never go
// stale; the TTL only bounds memory. Only GetByID is cached — Recent
// changes with every write.
type CachedStore struct {
	inner Store
	cache *redis.Client
}

func NewCachedStore(inner Store, cache *redis.Client) Store {
	return &CachedStore{inner: inner, cache: cache}
}

func (s *CachedStore) Save(ctx context.Context, prompt string, results []compare.ModelResult) (string, error) {
	return s.inner.Save(ctx, prompt, results)
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (*ComparisonDetail, error) {
	key := fmt.Sprintf("comparison:%s", id)

	var detail ComparisonDetail
	err := s.cache.Get(ctx, key).Scan(&detail)
	if err == nil {
		return &detail, nil
	}
	if err != redis.Nil {
		log.Printf("[Storage] redis error, falling through to postgres: %v", err)
	}

	fresh, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, fresh, cacheTTL).Err(); err != nil {
		log.Printf("[Storage] failed to cache comparison %s: %v", id, err)
	}
	return fresh, nil
}

func (s *CachedStore) Recent(ctx context.Context, limit int) ([]ComparisonDetail, error) {
	return s.inner.Recent(ctx, limit)
}
