package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

type mockProvider struct {
	markets      []domain.MarketRow
	chart        *domain.HistoricalSeries
	detail       domain.CoinDetail
	prices       domain.MultiPrice
	err          error
	marketCalls  int
	chartCalls   int
	detailCalls  int
	priceCalls   int
}

func (m *mockProvider) TopMarkets(ctx context.Context, limit int) ([]domain.MarketRow, error) {
	m.marketCalls++
	return m.markets, m.err
}

func (m *mockProvider) MarketChart(ctx context.Context, coinID, days string) (*domain.HistoricalSeries, error) {
	m.chartCalls++
	return m.chart, m.err
}

func (m *mockProvider) CoinDetail(ctx context.Context, coinID string) (domain.CoinDetail, error) {
	m.detailCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *mockProvider) SimplePrice(ctx context.Context, coinIDs []string) (domain.MultiPrice, error) {
	m.priceCalls++
	return m.prices, m.err
}

type fixedAnalyzer struct{}

func (fixedAnalyzer) Label(context.Context, domain.MarketRow) (string, float64) {
	return domain.RegimeTrending, 80
}

func (fixedAnalyzer) Correlate(_ context.Context, baseID string, others []domain.MarketRow) ([]domain.Correlation, error) {
	var out []domain.Correlation
	for _, o := range others {
		if o.ID == baseID {
			continue
		}
		out = append(out, domain.Correlation{ID: o.ID, CorrelationScore: 0.9})
	}
	return out, nil
}

func newTestMarketService(provider *mockProvider) (*MarketService, *fakeClock) {
	svc := NewMarketService(provider, fixedAnalyzer{}, zap.NewNop())
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc.cache.timeNow = clock.Now
	return svc, clock
}

func TestMarketService_TopMarketsLabelsAndCaches(t *testing.T) {
	provider := &mockProvider{markets: []domain.MarketRow{
		{ID: "bitcoin", Symbol: "btc", CurrentPrice: 35000},
		{ID: "ethereum", Symbol: "eth", CurrentPrice: 1800},
	}}
	svc, _ := newTestMarketService(provider)
	ctx := context.Background()

	records, stale := svc.TopMarkets(ctx, 2)
	require.Len(t, records, 2)
	assert.False(t, stale)
	assert.Equal(t, domain.RegimeTrending, records[0].Regime)
	assert.Equal(t, 80.0, records[0].Confidence)

	svc.TopMarkets(ctx, 2)
	assert.Equal(t, 1, provider.marketCalls)
}

func TestMarketService_TopMarketsServesStaleAfterOutage(t *testing.T) {
	provider := &mockProvider{markets: []domain.MarketRow{{ID: "bitcoin"}}}
	svc, clock := newTestMarketService(provider)
	ctx := context.Background()

	svc.TopMarkets(ctx, 1)

	provider.err = errors.New("upstream down")
	clock.Advance(MarketDataTTL + time.Second)

	records, stale := svc.TopMarkets(ctx, 1)
	require.Len(t, records, 1)
	assert.True(t, stale)
	assert.Equal(t, "bitcoin", records[0].ID)
}

func TestMarketService_TopMarketsEmptyWhenNothingCached(t *testing.T) {
	provider := &mockProvider{err: errors.New("upstream down")}
	svc, _ := newTestMarketService(provider)

	records, stale := svc.TopMarkets(context.Background(), 10)
	assert.Empty(t, records)
	assert.True(t, stale)
}

func TestMarketService_HistoricalFallsBackToEmptySeries(t *testing.T) {
	provider := &mockProvider{err: errors.New("upstream down")}
	svc, _ := newTestMarketService(provider)

	series, stale := svc.Historical(context.Background(), "bitcoin", "7")
	require.NotNil(t, series)
	assert.True(t, stale)
	assert.Empty(t, series.Prices)
}

func TestMarketService_CoinDetailNilWhenUnknown(t *testing.T) {
	provider := &mockProvider{err: domain.ErrNotFound}
	svc, _ := newTestMarketService(provider)

	detail, _ := svc.CoinDetail(context.Background(), "nope")
	assert.Nil(t, detail)
}

func TestMarketService_HistoricalCachesPerCoinAndSpan(t *testing.T) {
	provider := &mockProvider{chart: &domain.HistoricalSeries{
		Prices: []domain.PricePoint{{Time: "2025-06-01T00:00:00Z", Value: 100}},
	}}
	svc, _ := newTestMarketService(provider)
	ctx := context.Background()

	svc.Historical(ctx, "bitcoin", "7")
	svc.Historical(ctx, "bitcoin", "7")
	assert.Equal(t, 1, provider.chartCalls)

	svc.Historical(ctx, "bitcoin", "30")
	assert.Equal(t, 2, provider.chartCalls)
}

func TestMarketService_CorrelationsExcludeBase(t *testing.T) {
	provider := &mockProvider{markets: []domain.MarketRow{
		{ID: "bitcoin"}, {ID: "ethereum"}, {ID: "solana"},
	}}
	svc, _ := newTestMarketService(provider)

	correlations, stale := svc.Correlations(context.Background(), "bitcoin")
	assert.False(t, stale)
	require.Len(t, correlations, 2)
	for _, c := range correlations {
		assert.NotEqual(t, "bitcoin", c.ID)
	}
}
