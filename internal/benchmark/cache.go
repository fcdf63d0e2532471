package benchmark

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/perfstat/internal/series"
	"github.com/wonny/perfstat/pkg/logger"
	"github.com/wonny/perfstat/pkg/redis"
)

// CachedProvider memoizes closes in Redis, or in process when Redis is off
type CachedProvider struct {
	provider Provider
	cache    *redis.Cache
	ttl      time.Duration
	logger   *logger.Logger

	mu    sync.Mutex
	local map[string]localEntry
	now   func() time.Time
}

type localEntry struct {
	closes    series.Series
	expiresAt time.Time
}

// NewCachedProvider wraps p with a TTL cache
func NewCachedProvider(p Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &CachedProvider{
		provider: p,
		cache:    cache,
		ttl:      ttl,
		logger:   log.Component("benchmark.cache"),
		local:    make(map[string]localEntry),
		now:      time.Now,
	}
}

// Name returns the wrapped provider's name
func (c *CachedProvider) Name() string {
	return c.provider.Name()
}

// Closes returns cached closes or downloads them
func (c *CachedProvider) Closes(ctx context.Context, index string, start time.Time) (series.Series, error) {
	key := redis.BenchmarkKey(c.provider.Name(), index, start)

	if closes, ok := c.lookup(ctx, key); ok {
		c.logger.WithField("key", key).Debug("Benchmark cache hit")
		return closes, nil
	}

	return c.Refresh(ctx, index, start)
}

// Refresh downloads closes bypassing the cache and stores the result
func (c *CachedProvider) Refresh(ctx context.Context, index string, start time.Time) (series.Series, error) {
	key := redis.BenchmarkKey(c.provider.Name(), index, start)

	closes, err := c.provider.Closes(ctx, index, start)
	if err != nil {
		return series.Series{}, err
	}

	c.store(ctx, key, closes)
	return closes, nil
}

func (c *CachedProvider) lookup(ctx context.Context, key string) (series.Series, bool) {
	if c.cache != nil && c.cache.Enabled() {
		var closes series.Series
		found, err := c.cache.Get(ctx, key, &closes)
		if err != nil {
			c.logger.WithError(err).Warn("Benchmark cache read failed")
		}
		if found {
			return closes, true
		}
		return series.Series{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.local[key]
	if !ok || c.now().After(entry.expiresAt) {
		delete(c.local, key)
		return series.Series{}, false
	}
	return entry.closes, true
}

func (c *CachedProvider) store(ctx context.Context, key string, closes series.Series) {
	if c.cache != nil && c.cache.Enabled() {
		if err := c.cache.Set(ctx, key, closes, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Benchmark cache write failed")
		}
		return
	}

	c.mu.Lock()
	c.local[key] = localEntry{closes: closes, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Purge drops expired in-process entries and returns how many were removed.
// Redis expires keys on its own.
func (c *CachedProvider) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.local {
		if now.After(entry.expiresAt) {
			delete(c.local, key)
			removed++
		}
	}
	return removed
}
