// Package cache provides a Redis-backed query result cache with
// singleflight deduplication of concurrent identical queries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/docsearch-labs/docsearch/internal/searcher"
	pkgredis "github.com/docsearch-labs/docsearch/pkg/redis"
)

const keyPrefix = "docsearch:query:"

// QueryCache caches ranked search results keyed by normalised query, mode,
// and limit.
type QueryCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over an established Redis client.
func New(client *pkgredis.Client, ttl time.Duration) *QueryCache {
	return &QueryCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns cached results for the query, or ok=false on a miss.
func (c *QueryCache) Get(ctx context.Context, query string, mode searcher.Mode, limit int) ([]searcher.Result, bool) {
	key := c.buildKey(query, mode, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []searcher.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return results, true
}

// Set stores results under the query's cache key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, mode searcher.Mode, limit int, results []searcher.Result) {
	key := c.buildKey(query, mode, limit)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns cached results when present; otherwise it runs
// computeFn exactly once per key across concurrent callers and caches the
// outcome. The second return reports whether the value came from cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	mode searcher.Mode,
	limit int,
	computeFn func() ([]searcher.Result, error),
) ([]searcher.Result, bool, error) {
	if results, ok := c.Get(ctx, query, mode, limit); ok {
		return results, true, nil
	}
	key := c.buildKey(query, mode, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, mode, limit); ok {
			return results, nil
		}
		results, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, mode, limit, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]searcher.Result), false, nil
}

// Invalidate drops every cached query result. Called after index mutations.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, mode searcher.Mode, limit int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("%s|%s|limit=%d", mode, normalized, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
