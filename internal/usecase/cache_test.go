package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache() (*TTLCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewTTLCache(zap.NewNop())
	cache.timeNow = clock.Now
	return cache, clock
}

func TestTTLCache_FreshHitSkipsFetch(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return "snapshot", nil
	}

	value, stale := cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, fetch)
	assert.Equal(t, "snapshot", value)
	assert.False(t, stale)

	value, stale = cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, fetch)
	assert.Equal(t, "snapshot", value)
	assert.False(t, stale)
	assert.Equal(t, 1, calls)
}

func TestTTLCache_ExpiryRefetchesAndResetsTimestamp(t *testing.T) {
	cache, clock := newTestCache()
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, fetch)
	clock.Advance(MarketDataTTL + time.Second)

	value, stale := cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, fetch)
	assert.Equal(t, 2, value)
	assert.False(t, stale)
	assert.Equal(t, 2, calls)

	// The refresh reset the timestamp, so the next read inside the TTL
	// is served from cache again.
	clock.Advance(MarketDataTTL / 2)
	value, _ = cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, fetch)
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, calls)
}

func TestTTLCache_ServesStaleOnFetchError(t *testing.T) {
	cache, clock := newTestCache()
	ctx := context.Background()

	cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return "old", nil
	})
	clock.Advance(MarketDataTTL + time.Second)

	value, stale := cache.GetOrFetch(ctx, CacheMarketData, "top", MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("provider down")
	})
	assert.Equal(t, "old", value)
	assert.True(t, stale)
}

func TestTTLCache_NothingCachedOnError(t *testing.T) {
	cache, _ := newTestCache()

	value, stale := cache.GetOrFetch(context.Background(), CacheMarketData, "top", MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("provider down")
	})
	assert.Nil(t, value)
	assert.True(t, stale)
}

func TestTTLCache_NamespacesDoNotCollide(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	cache.GetOrFetch(ctx, CacheMarketData, "bitcoin", MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return "market", nil
	})
	value, _ := cache.GetOrFetch(ctx, CacheHistoricalData, "bitcoin", HistoricalDataTTL, func(ctx context.Context) (interface{}, error) {
		return "historical", nil
	})
	assert.Equal(t, "historical", value)
}
