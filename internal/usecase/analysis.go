package usecase

import (
	"context"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	cacheRegimeDetection   = "regime_detection"
	cacheTechnicalAnalysis = "technical_analysis"
	analysisTTL            = 300 * time.Second
)

// AnalysisService computes real regime detection and technical analysis from
// 30-day historical prices, cached for five minutes per symbol.
type AnalysisService struct {
	market  *MarketService
	cache   *TTLCache
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewAnalysisService(market *MarketService, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		market:  market,
		cache:   NewTTLCache(logger),
		logger:  logger,
		timeNow: time.Now,
	}
}

// AnalyzeMarket detects the market regime for a symbol. With no usable data
// the regime is "unknown" with zero confidence; the request never fails.
func (s *AnalysisService) AnalyzeMarket(ctx context.Context, symbol string) *domain.MarketAnalysis {
	value, _ := s.cache.GetOrFetch(ctx, cacheRegimeDetection, "regime_"+symbol, analysisTTL, func(ctx context.Context) (interface{}, error) {
		prices := s.market.HistoricalPrices(ctx, symbol, "30")
		if len(prices) == 0 {
			return nil, domain.ErrNotFound
		}

		vol := volatility(prices)
		trend := trendStrength(prices)
		regime := detectRegime(vol, trend)

		return &domain.MarketAnalysis{
			Symbol:        symbol,
			Regime:        regime,
			Volatility:    vol,
			TrendStrength: trend,
			Confidence:    regimeConfidence(vol, trend, regime),
			Timestamp:     s.timeNow(),
		}, nil
	})

	analysis, ok := value.(*domain.MarketAnalysis)
	if !ok || analysis == nil {
		return &domain.MarketAnalysis{
			Symbol:    symbol,
			Regime:    domain.RegimeUnknown,
			Timestamp: s.timeNow(),
		}
	}
	return analysis
}

// AnalyzeTechnicals computes the indicator set for a symbol. With no usable
// data it returns a neutral zero analysis.
func (s *AnalysisService) AnalyzeTechnicals(ctx context.Context, symbol string) *domain.Technicals {
	value, _ := s.cache.GetOrFetch(ctx, cacheTechnicalAnalysis, "technicals_"+symbol, analysisTTL, func(ctx context.Context) (interface{}, error) {
		prices := s.market.HistoricalPrices(ctx, symbol, "30")
		if len(prices) == 0 {
			return nil, domain.ErrNotFound
		}
		technicals := computeTechnicals(symbol, prices)
		technicals.Timestamp = s.timeNow()
		return technicals, nil
	})

	technicals, ok := value.(*domain.Technicals)
	if !ok || technicals == nil {
		return &domain.Technicals{
			Symbol:    symbol,
			Signal:    "neutral",
			Timestamp: s.timeNow(),
		}
	}
	return technicals
}

// RecommendedStrategy maps a regime to the strategy best suited to it.
func (s *AnalysisService) RecommendedStrategy(regime string) domain.StrategyRecommendation {
	switch regime {
	case domain.RegimeTrending:
		return domain.StrategyRecommendation{
			Name: "Trend Following",
			Type: domain.StrategyTrend,
			Parameters: map[string]float64{
				"short_ema": emaShortPeriod,
				"long_ema":  emaMediumPeriod,
			},
		}
	case domain.RegimeSideways:
		return domain.StrategyRecommendation{
			Name: "Mean Reversion",
			Type: domain.StrategyMeanReversion,
			Parameters: map[string]float64{
				"width":  2.0,
				"levels": 10,
			},
		}
	case domain.RegimeVolatile:
		return domain.StrategyRecommendation{
			Name: "Market Making",
			Type: domain.StrategyMarketMaking,
			Parameters: map[string]float64{
				"spread":     0.5,
				"order_size": 5,
			},
		}
	default:
		return domain.StrategyRecommendation{
			Name: "Conservative",
			Type: domain.StrategyTrend,
			Parameters: map[string]float64{
				"short_ema": emaShortPeriod,
				"long_ema":  emaLongPeriod,
			},
		}
	}
}
