package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "site:results:" // site:results:{ref}:{page_size}:{escaped_query}
	DefaultCacheTTL = 5 * time.Minute
)

// CacheKey identifies a query result. The ref is part of the key, so a new
// publish never reads results cached for the previous one.
func CacheKey(ref string, pageSize int, q string) string {
	return fmt.Sprintf("%s%s:%d:%s", resultKeyPrefix, ref, pageSize, url.QueryEscape(q))
}

// ResultCache stores query responses in Redis.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a ResultCache. A non-positive ttl uses DefaultCacheTTL.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Get loads a cached response.
func (c *ResultCache) Get(ctx context.Context, key string) (*Response, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached results: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached results: %w", err)
	}
	return &resp, nil
}

// Set stores resp under key for the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache results: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
