package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/redis"
)

// RedisStore keeps the latest report per screener in Redis with a TTL
type RedisStore struct {
	cache *redis.Cache
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &RedisStore{
		cache: redis.NewCache(client, "screener"),
		ttl:   ttl,
	}
}

// Save stores the report under snapshot:<screener>:latest
func (s *RedisStore) Save(ctx context.Context, report *contracts.Report) error {
	if err := s.cache.Set(ctx, redis.SnapshotKey(string(report.Screener)), report, s.ttl); err != nil {
		return fmt.Errorf("redis snapshot: %w", err)
	}
	return nil
}

// Latest returns (nil, nil) on a miss or after expiry
func (s *RedisStore) Latest(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	var report contracts.Report
	found, err := s.cache.Get(ctx, redis.SnapshotKey(string(id)), &report)
	if err != nil {
		return nil, fmt.Errorf("redis snapshot: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &report, nil
}
