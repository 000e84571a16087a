package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache namespaces and their TTLs.
const (
	CacheMarketData     = "market_data"
	CacheHistoricalData = "historical_data"

	MarketDataTTL     = 60 * time.Second
	HistoricalDataTTL = 300 * time.Second
)

type cacheEntry struct {
	value     interface{}
	timestamp time.Time
}

// TTLCache is a namespaced in-memory cache with lazy expiry. Entries are
// replaced wholesale on refresh and never swept. There is no single-flight:
// concurrent misses for one key each issue their own fetch.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	logger  *zap.Logger
	timeNow func() time.Time // for testing
}

func NewTTLCache(logger *zap.Logger) *TTLCache {
	return &TTLCache{
		entries: make(map[string]cacheEntry),
		logger:  logger,
		timeNow: time.Now,
	}
}

// FetchFunc loads a fresh value on a cache miss.
type FetchFunc func(ctx context.Context) (interface{}, error)

// GetOrFetch returns the cached value for namespace/key if younger than ttl.
// On a miss or expiry it invokes fetch and stores the result under a new
// timestamp. If fetch fails, the previous value is served with stale=true,
// or (nil, true) when nothing was ever cached. Fetch errors never propagate
// on this path; they are logged and absorbed.
func (c *TTLCache) GetOrFetch(ctx context.Context, namespace, key string, ttl time.Duration, fetch FetchFunc) (interface{}, bool) {
	full := namespace + ":" + key

	c.mu.Lock()
	entry, ok := c.entries[full]
	now := c.timeNow()
	c.mu.Unlock()

	if ok && now.Sub(entry.timestamp) < ttl {
		return entry.value, false
	}

	value, err := fetch(ctx)
	if err != nil {
		c.logger.Error("fetch failed, serving stale data",
			zap.String("namespace", namespace),
			zap.String("key", key),
			zap.Bool("have_previous", ok),
			zap.Error(err))
		if ok {
			return entry.value, true
		}
		return nil, true
	}

	c.mu.Lock()
	c.entries[full] = cacheEntry{value: value, timestamp: c.timeNow()}
	c.mu.Unlock()

	return value, false
}
