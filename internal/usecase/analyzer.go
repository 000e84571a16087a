package usecase

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

// Regime detection thresholds.
const (
	volatilityHighThreshold = 0.02
	volatilityLowThreshold  = 0.005
	trendStrongThreshold    = 50.0
	trendWeakThreshold      = 20.0
)

var regimes = []string{domain.RegimeTrending, domain.RegimeSideways, domain.RegimeVolatile}

// RandomAnalyzer assigns regimes and correlation scores by coin toss. This is
// the reference placeholder behavior, not analysis: regime labels, confidence
// values, correlation scores in [0.5, 1.0) and performance deltas in
// [-20, 20) are all uniformly random. Swap in PearsonAnalyzer for real
// statistics.
type RandomAnalyzer struct {
	rng *lockedRand
}

func NewRandomAnalyzer(rng *rand.Rand) *RandomAnalyzer {
	return &RandomAnalyzer{rng: newLockedRand(rng)}
}

func (a *RandomAnalyzer) Label(_ context.Context, _ domain.MarketRow) (string, float64) {
	return regimes[a.rng.Intn(len(regimes))], math.Round(a.rng.Float64() * 100)
}

func (a *RandomAnalyzer) Correlate(_ context.Context, baseID string, others []domain.MarketRow) ([]domain.Correlation, error) {
	correlations := make([]domain.Correlation, 0, len(others))
	for _, coin := range others {
		if coin.ID == baseID {
			continue
		}
		correlations = append(correlations, domain.Correlation{
			ID:               coin.ID,
			Symbol:           strings.ToUpper(coin.Symbol),
			Name:             coin.Name,
			CorrelationScore: 0.5 + a.rng.Float64()*0.5,
			PerformanceDelta: a.rng.Float64()*40 - 20,
			CurrentPrice:     coin.CurrentPrice,
			Volume:           coin.TotalVolume,
			MarketCap:        coin.MarketCap,
		})
	}
	sort.Slice(correlations, func(i, j int) bool {
		return correlations[i].CorrelationScore > correlations[j].CorrelationScore
	})
	return correlations, nil
}

// PearsonAnalyzer derives regimes from 30-day price history and scores
// correlations with the Pearson coefficient over daily return series. It
// keeps its own historical cache so labeling a market snapshot does not
// hammer the provider.
type PearsonAnalyzer struct {
	provider domain.MarketDataProvider
	cache    *TTLCache
	logger   *zap.Logger
}

// pearsonMaxCoins caps how many coins a correlation request fetches history
// for; the public provider rate-limits well below one call per top-100 coin.
const pearsonMaxCoins = 25

func NewPearsonAnalyzer(provider domain.MarketDataProvider, logger *zap.Logger) *PearsonAnalyzer {
	return &PearsonAnalyzer{
		provider: provider,
		cache:    NewTTLCache(logger),
		logger:   logger,
	}
}

func (a *PearsonAnalyzer) prices(ctx context.Context, coinID string) []float64 {
	value, _ := a.cache.GetOrFetch(ctx, CacheHistoricalData, coinID+"_30", HistoricalDataTTL, func(ctx context.Context) (interface{}, error) {
		series, err := a.provider.MarketChart(ctx, coinID, "30")
		if err != nil {
			return nil, err
		}
		prices := make([]float64, 0, len(series.Prices))
		for _, p := range series.Prices {
			prices = append(prices, p.Value)
		}
		return prices, nil
	})
	prices, _ := value.([]float64)
	return prices
}

func (a *PearsonAnalyzer) Label(ctx context.Context, row domain.MarketRow) (string, float64) {
	prices := a.prices(ctx, row.ID)
	if len(prices) < 2 {
		return domain.RegimeUnknown, 0
	}
	vol := volatility(prices)
	trend := trendStrength(prices)
	regime := detectRegime(vol, trend)
	return regime, regimeConfidence(vol, trend, regime)
}

func (a *PearsonAnalyzer) Correlate(ctx context.Context, baseID string, others []domain.MarketRow) ([]domain.Correlation, error) {
	basePrices := a.prices(ctx, baseID)
	if len(basePrices) < 2 {
		return nil, domain.ErrNotFound
	}
	baseReturns := simpleReturns(basePrices)
	baseChange := periodChange(basePrices)

	correlations := make([]domain.Correlation, 0, len(others))
	for _, coin := range others {
		if coin.ID == baseID {
			continue
		}
		if len(correlations) >= pearsonMaxCoins {
			break
		}
		prices := a.prices(ctx, coin.ID)
		if len(prices) < 2 {
			continue
		}
		correlations = append(correlations, domain.Correlation{
			ID:               coin.ID,
			Symbol:           strings.ToUpper(coin.Symbol),
			Name:             coin.Name,
			CorrelationScore: pearson(baseReturns, simpleReturns(prices)),
			PerformanceDelta: periodChange(prices) - baseChange,
			CurrentPrice:     coin.CurrentPrice,
			Volume:           coin.TotalVolume,
			MarketCap:        coin.MarketCap,
		})
	}
	sort.Slice(correlations, func(i, j int) bool {
		return correlations[i].CorrelationScore > correlations[j].CorrelationScore
	})
	return correlations, nil
}

// periodChange is the percentage change over a whole price series.
func periodChange(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	return (prices[len(prices)-1] - prices[0]) / prices[0] * 100
}

func detectRegime(vol, trend float64) string {
	switch {
	case vol > volatilityHighThreshold:
		return domain.RegimeVolatile
	case trend > trendStrongThreshold:
		return domain.RegimeTrending
	default:
		return domain.RegimeSideways
	}
}

// regimeConfidence scores how characteristic the measurements are for the
// detected regime, on a 0-100 scale.
func regimeConfidence(vol, trend float64, regime string) float64 {
	switch regime {
	case domain.RegimeVolatile:
		return math.Min(vol/(volatilityHighThreshold*2), 1) * 100
	case domain.RegimeTrending:
		return math.Min(trend, 100)
	case domain.RegimeSideways:
		volFactor := 1 - math.Min(vol/volatilityHighThreshold, 1)
		trendFactor := 1 - math.Min(trend/trendStrongThreshold, 1)
		return volFactor * trendFactor * 100
	default:
		return 0
	}
}
