// Package redis stores finished analyses in Redis as JSON.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// AnalysisCache implements port.AnalysisCache.
type AnalysisCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewAnalysisCache returns a cache that namespaces its keys with
// "videoab:".
func NewAnalysisCache(client goredis.UniversalClient) *AnalysisCache {
	return &AnalysisCache{client: client, prefix: "videoab:"}
}

var _ port.AnalysisCache = (*AnalysisCache)(nil)

func (c *AnalysisCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, port.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var res domain.AnalysisResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &res, nil
}

func (c *AnalysisCache) Set(ctx context.Context, key string, result domain.AnalysisResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
