package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

// MarketService is the market-data gateway: every read goes through the TTL
// cache, and upstream failures degrade to stale or empty results instead of
// erroring the request.
type MarketService struct {
	provider domain.MarketDataProvider
	analyzer domain.MarketAnalyzer
	cache    *TTLCache
	logger   *zap.Logger
}

func NewMarketService(provider domain.MarketDataProvider, analyzer domain.MarketAnalyzer, logger *zap.Logger) *MarketService {
	return &MarketService{
		provider: provider,
		analyzer: analyzer,
		cache:    NewTTLCache(logger),
		logger:   logger,
	}
}

// TopMarkets returns the top coins by market cap, each labeled with a regime
// by the configured analyzer. Stale reports whether the snapshot outlived its
// TTL because the provider was unreachable.
func (s *MarketService) TopMarkets(ctx context.Context, limit int) ([]domain.MarketRecord, bool) {
	key := fmt.Sprintf("top_markets_%d", limit)
	value, stale := s.cache.GetOrFetch(ctx, CacheMarketData, key, MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		rows, err := s.provider.TopMarkets(ctx, limit)
		if err != nil {
			return nil, err
		}
		records := make([]domain.MarketRecord, 0, len(rows))
		for _, row := range rows {
			regime, confidence := s.analyzer.Label(ctx, row)
			records = append(records, domain.MarketRecord{
				MarketRow:  row,
				Regime:     regime,
				Confidence: confidence,
			})
		}
		return records, nil
	})

	records, ok := value.([]domain.MarketRecord)
	if !ok {
		return []domain.MarketRecord{}, stale
	}
	return records, stale
}

// Historical returns charting series for one coin over the given day span.
func (s *MarketService) Historical(ctx context.Context, coinID, days string) (*domain.HistoricalSeries, bool) {
	key := coinID + "_" + days
	value, stale := s.cache.GetOrFetch(ctx, CacheHistoricalData, key, HistoricalDataTTL, func(ctx context.Context) (interface{}, error) {
		return s.provider.MarketChart(ctx, coinID, days)
	})

	series, ok := value.(*domain.HistoricalSeries)
	if !ok || series == nil {
		return &domain.HistoricalSeries{
			Prices:       []domain.PricePoint{},
			MarketCaps:   []domain.PricePoint{},
			TotalVolumes: []domain.PricePoint{},
		}, stale
	}
	return series, stale
}

// CoinDetail proxies the provider's coin detail payload. Returns nil when the
// coin is unknown and nothing is cached.
func (s *MarketService) CoinDetail(ctx context.Context, coinID string) (domain.CoinDetail, bool) {
	key := "coin_details_" + coinID
	value, stale := s.cache.GetOrFetch(ctx, CacheMarketData, key, MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return s.provider.CoinDetail(ctx, coinID)
	})

	detail, _ := value.(domain.CoinDetail)
	return detail, stale
}

// MultiPrice returns current prices for a set of coins.
func (s *MarketService) MultiPrice(ctx context.Context, coinIDs []string) (domain.MultiPrice, bool) {
	if len(coinIDs) == 0 {
		return domain.MultiPrice{}, false
	}
	key := "multiple_prices_" + strings.Join(coinIDs, "_")
	value, stale := s.cache.GetOrFetch(ctx, CacheMarketData, key, MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		return s.provider.SimplePrice(ctx, coinIDs)
	})

	prices, ok := value.(domain.MultiPrice)
	if !ok {
		return domain.MultiPrice{}, stale
	}
	return prices, stale
}

// Correlations scores the rest of the top 100 against a base coin using the
// configured analyzer.
func (s *MarketService) Correlations(ctx context.Context, baseID string) ([]domain.Correlation, bool) {
	key := "correlations_" + baseID
	value, stale := s.cache.GetOrFetch(ctx, CacheMarketData, key, MarketDataTTL, func(ctx context.Context) (interface{}, error) {
		rows, err := s.provider.TopMarkets(ctx, 100)
		if err != nil {
			return nil, err
		}
		return s.analyzer.Correlate(ctx, baseID, rows)
	})

	correlations, ok := value.([]domain.Correlation)
	if !ok {
		return []domain.Correlation{}, stale
	}
	return correlations, stale
}

// HistoricalPrices extracts the raw price values for analysis code.
func (s *MarketService) HistoricalPrices(ctx context.Context, coinID, days string) []float64 {
	series, _ := s.Historical(ctx, coinID, days)
	prices := make([]float64, 0, len(series.Prices))
	for _, p := range series.Prices {
		prices = append(prices, p.Value)
	}
	return prices
}
