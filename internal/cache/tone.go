package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/redis/go-redis/v9"
)

const toneKeyPrefix = "tone:"

// ToneCache stores tone verdicts in Redis. It satisfies toneguard.Cache.
type ToneCache struct {
	cache *Cache
	ttl   time.Duration
}

func NewToneCache(c *Cache, ttl time.Duration) *ToneCache {
	return &ToneCache{cache: c, ttl: ttl}
}

// GetVerdict returns nil, nil on a miss.
func (t *ToneCache) GetVerdict(ctx context.Context, key string) (*toneguard.Verdict, error) {
	raw, err := t.cache.client.Get(ctx, toneKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var v toneguard.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode cached verdict: %w", err)
	}
	return &v, nil
}

func (t *ToneCache) SetVerdict(ctx context.Context, key string, v toneguard.Verdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}
	if err := t.cache.client.Set(ctx, toneKeyPrefix+key, raw, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache verdict: %w", err)
	}
	return nil
}
