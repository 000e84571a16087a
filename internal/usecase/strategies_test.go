package usecase

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

func TestNewStrategy_UnknownType(t *testing.T) {
	_, err := NewStrategy("martingale", "nope", nil, nil)
	assert.Error(t, err)
}

func TestNewStrategy_AllKnownTypes(t *testing.T) {
	for _, typ := range []string{
		domain.StrategyTrend,
		domain.StrategyMeanReversion,
		domain.StrategyMarketMaking,
		domain.StrategyArbitrage,
	} {
		strategy, err := NewStrategy(typ, typ+" test", nil, newLockedRand(rand.New(rand.NewSource(1))))
		require.NoError(t, err)
		assert.Equal(t, typ, strategy.Type())
		assert.Equal(t, typ+" test", strategy.Name())
	}
}

func TestTrendFollowing_Signals(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyTrend, "trend", nil, nil)
	require.NoError(t, err)

	bullish := &domain.Technicals{Symbol: "BTC", EMA: domain.EMASet{Short: 110, Medium: 100}}
	signal := strategy.Signal(120, bullish)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideBuy, signal.Action)
	assert.Equal(t, "BTC", signal.Symbol)
	assert.Equal(t, 120.0, signal.Price)

	bearish := &domain.Technicals{Symbol: "BTC", EMA: domain.EMASet{Short: 100, Medium: 110}}
	signal = strategy.Signal(90, bearish)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideSell, signal.Action)

	// Price between the EMAs gives no conviction.
	assert.Nil(t, strategy.Signal(105, bullish))
	assert.Nil(t, strategy.Signal(0, nil))
}

func TestMeanReversion_OversoldAndOverbought(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyMeanReversion, "grid", nil, nil)
	require.NoError(t, err)

	technicals := &domain.Technicals{
		Symbol:    "ETH",
		RSI:       20,
		Bollinger: domain.BollingerBands{Upper: 2100, Middle: 2000, Lower: 1900},
	}
	signal := strategy.Signal(1850, technicals)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideBuy, signal.Action)

	technicals.RSI = 85
	signal = strategy.Signal(2200, technicals)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideSell, signal.Action)
}

func TestMeanReversion_GridLevelHit(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyMeanReversion, "grid", map[string]float64{"levels": 10}, nil)
	require.NoError(t, err)

	technicals := &domain.Technicals{
		Symbol:    "ETH",
		RSI:       50,
		Bollinger: domain.BollingerBands{Upper: 2100, Middle: 2000, Lower: 1900},
	}

	// Grid width is 20, so the first buy level sits at 1980.
	signal := strategy.Signal(1980, technicals)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideBuy, signal.Action)

	signal = strategy.Signal(2040, technicals)
	require.NotNil(t, signal)
	assert.Equal(t, domain.SideSell, signal.Action)
}

func TestMeanReversion_ConcurrentSignals(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyMeanReversion, "grid", nil, nil)
	require.NoError(t, err)

	// One instance serves many symbols at once, so first-use grid builds and
	// grid reads overlap. Run with -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			technicals := &domain.Technicals{
				Symbol:    fmt.Sprintf("COIN%d", i%3),
				RSI:       50,
				Bollinger: domain.BollingerBands{Upper: 2100, Middle: 2000, Lower: 1900},
			}
			for j := 0; j < 50; j++ {
				strategy.Signal(1980, technicals)
			}
		}(i)
	}
	wg.Wait()
}

func TestArbitrage_ConcurrentSignals(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyArbitrage, "arb", nil,
		newLockedRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)

	technicals := &domain.Technicals{Symbol: "BTC"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				strategy.Signal(30000, technicals)
			}
		}()
	}
	wg.Wait()
}

func TestArbitrage_RespectsMinSpread(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyArbitrage, "arb",
		map[string]float64{"min_spread": 100}, newLockedRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)

	// The simulated venue never deviates more than 1%, so a 100% minimum
	// spread can never trigger.
	technicals := &domain.Technicals{Symbol: "BTC"}
	for i := 0; i < 100; i++ {
		assert.Nil(t, strategy.Signal(30000, technicals))
	}
}

func TestSetRiskPropagates(t *testing.T) {
	strategy, err := NewStrategy(domain.StrategyTrend, "trend", nil, nil)
	require.NoError(t, err)

	custom := domain.RiskSettings{MaxPositionPct: 2, StopLossPct: 1, TakeProfitPct: 3}
	strategy.SetRisk(custom)

	trend, ok := strategy.(*TrendFollowing)
	require.True(t, ok)
	assert.Equal(t, custom, trend.risk)
}
