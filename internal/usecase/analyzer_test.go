package usecase

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

func TestRandomAnalyzer_LabelRanges(t *testing.T) {
	analyzer := NewRandomAnalyzer(rand.New(rand.NewSource(1)))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		regime, confidence := analyzer.Label(ctx, domain.MarketRow{ID: "bitcoin"})
		assert.Contains(t, regimes, regime)
		assert.GreaterOrEqual(t, confidence, 0.0)
		assert.LessOrEqual(t, confidence, 100.0)
	}
}

func TestRandomAnalyzer_ConcurrentLabels(t *testing.T) {
	analyzer := NewRandomAnalyzer(rand.New(rand.NewSource(2)))
	ctx := context.Background()

	// Labeling a market snapshot fans out across rows. Run with -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				regime, _ := analyzer.Label(ctx, domain.MarketRow{ID: "bitcoin"})
				assert.Contains(t, regimes, regime)
			}
		}()
	}
	wg.Wait()
}

func TestRandomAnalyzer_CorrelateSortedAndBounded(t *testing.T) {
	analyzer := NewRandomAnalyzer(rand.New(rand.NewSource(7)))
	others := []domain.MarketRow{
		{ID: "bitcoin", Symbol: "btc"},
		{ID: "ethereum", Symbol: "eth"},
		{ID: "solana", Symbol: "sol"},
		{ID: "cardano", Symbol: "ada"},
	}

	correlations, err := analyzer.Correlate(context.Background(), "bitcoin", others)
	require.NoError(t, err)
	require.Len(t, correlations, 3)

	for i, c := range correlations {
		assert.NotEqual(t, "bitcoin", c.ID)
		assert.GreaterOrEqual(t, c.CorrelationScore, 0.5)
		assert.Less(t, c.CorrelationScore, 1.0)
		assert.GreaterOrEqual(t, c.PerformanceDelta, -20.0)
		assert.Less(t, c.PerformanceDelta, 20.0)
		if i > 0 {
			assert.LessOrEqual(t, c.CorrelationScore, correlations[i-1].CorrelationScore)
		}
	}
	assert.Equal(t, "ETH", uppercaseSymbol(correlations, "ethereum"))
}

func uppercaseSymbol(correlations []domain.Correlation, id string) string {
	for _, c := range correlations {
		if c.ID == id {
			return c.Symbol
		}
	}
	return ""
}

// chartProvider serves canned per-coin price histories.
type chartProvider struct {
	series map[string][]float64
}

func (p *chartProvider) TopMarkets(ctx context.Context, limit int) ([]domain.MarketRow, error) {
	return nil, nil
}

func (p *chartProvider) MarketChart(ctx context.Context, coinID, days string) (*domain.HistoricalSeries, error) {
	prices, ok := p.series[coinID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	points := make([]domain.PricePoint, len(prices))
	for i, v := range prices {
		points[i] = domain.PricePoint{Value: v}
	}
	return &domain.HistoricalSeries{Prices: points}, nil
}

func (p *chartProvider) CoinDetail(ctx context.Context, coinID string) (domain.CoinDetail, error) {
	return nil, domain.ErrNotFound
}

func (p *chartProvider) SimplePrice(ctx context.Context, coinIDs []string) (domain.MultiPrice, error) {
	return nil, nil
}

func TestPearsonAnalyzer_CorrelateKnownSeries(t *testing.T) {
	provider := &chartProvider{series: map[string][]float64{
		"bitcoin":  {100, 110, 105, 115, 120},
		"tracking": {10, 11, 10.5, 11.5, 12},
		"inverse":  {100, 90, 95, 85, 80},
	}}
	analyzer := NewPearsonAnalyzer(provider, zap.NewNop())

	correlations, err := analyzer.Correlate(context.Background(), "bitcoin", []domain.MarketRow{
		{ID: "tracking", Symbol: "trk"},
		{ID: "inverse", Symbol: "inv"},
	})
	require.NoError(t, err)
	require.Len(t, correlations, 2)

	// Sorted by score, so the tracker comes first.
	assert.Equal(t, "tracking", correlations[0].ID)
	assert.InDelta(t, 1.0, correlations[0].CorrelationScore, 1e-6)
	assert.Equal(t, "inverse", correlations[1].ID)
	assert.Less(t, correlations[1].CorrelationScore, 0.0)
}

func TestPearsonAnalyzer_CorrelateUnknownBase(t *testing.T) {
	analyzer := NewPearsonAnalyzer(&chartProvider{series: map[string][]float64{}}, zap.NewNop())

	_, err := analyzer.Correlate(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPearsonAnalyzer_LabelRegimes(t *testing.T) {
	provider := &chartProvider{series: map[string][]float64{
		"steady": constantPrices(30, 100),
		"trendy": risingPrices(30),
	}}
	analyzer := NewPearsonAnalyzer(provider, zap.NewNop())
	ctx := context.Background()

	regime, confidence := analyzer.Label(ctx, domain.MarketRow{ID: "steady"})
	assert.Equal(t, domain.RegimeSideways, regime)
	assert.Equal(t, 100.0, confidence)

	regime, confidence = analyzer.Label(ctx, domain.MarketRow{ID: "trendy"})
	assert.Equal(t, domain.RegimeTrending, regime)
	assert.Equal(t, 100.0, confidence)

	regime, confidence = analyzer.Label(ctx, domain.MarketRow{ID: "unknown"})
	assert.Equal(t, domain.RegimeUnknown, regime)
	assert.Equal(t, 0.0, confidence)
}

func TestDetectRegime(t *testing.T) {
	assert.Equal(t, domain.RegimeVolatile, detectRegime(0.05, 80))
	assert.Equal(t, domain.RegimeTrending, detectRegime(0.01, 80))
	assert.Equal(t, domain.RegimeSideways, detectRegime(0.01, 40))
}
