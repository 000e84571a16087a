package usecase

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Strategy produces trade signals from a price and fresh technicals.
type Strategy interface {
	Name() string
	Type() string
	Signal(price float64, technicals *domain.Technicals) *domain.TradeSignal
	SetRisk(settings domain.RiskSettings)
}

type baseStrategy struct {
	name    string
	typ     string
	params  map[string]float64
	risk    domain.RiskSettings
	timeNow func() time.Time
}

func (b *baseStrategy) Name() string                         { return b.name }
func (b *baseStrategy) Type() string                         { return b.typ }
func (b *baseStrategy) SetRisk(settings domain.RiskSettings) { b.risk = settings }

func (b *baseStrategy) param(key string, def float64) float64 {
	if v, ok := b.params[key]; ok {
		return v
	}
	return def
}

func newBase(name, typ string, params map[string]float64) baseStrategy {
	if params == nil {
		params = map[string]float64{}
	}
	return baseStrategy{
		name:    name,
		typ:     typ,
		params:  params,
		risk:    domain.DefaultRiskSettings(),
		timeNow: time.Now,
	}
}

func (b *baseStrategy) signal(action domain.Side, symbol string, price float64, reason string) *domain.TradeSignal {
	return &domain.TradeSignal{
		Action:    action,
		Symbol:    symbol,
		Price:     price,
		Quantity:  1,
		Reason:    reason,
		Timestamp: b.timeNow(),
	}
}

// NewStrategy builds a strategy of the given type. Unknown types error.
func NewStrategy(typ, name string, params map[string]float64, rng *lockedRand) (Strategy, error) {
	switch typ {
	case domain.StrategyTrend:
		return &TrendFollowing{baseStrategy: newBase(name, typ, params)}, nil
	case domain.StrategyMeanReversion:
		return &MeanReversion{
			baseStrategy: newBase(name, typ, params),
			gridLevels:   make(map[string][]gridLevel),
		}, nil
	case domain.StrategyMarketMaking:
		return &MarketMaking{baseStrategy: newBase(name, typ, params)}, nil
	case domain.StrategyArbitrage:
		if rng == nil {
			rng = newLockedRand(nil)
		}
		return &Arbitrage{baseStrategy: newBase(name, typ, params), rng: rng}, nil
	default:
		return nil, fmt.Errorf("strategy type %s not found", typ)
	}
}

// TrendFollowing trades EMA crossovers confirmed by price position.
type TrendFollowing struct {
	baseStrategy
}

func (s *TrendFollowing) Signal(price float64, t *domain.Technicals) *domain.TradeSignal {
	if t == nil {
		return nil
	}
	shortEMA, longEMA := t.EMA.Short, t.EMA.Medium

	if shortEMA > longEMA && price > shortEMA {
		return s.signal(domain.SideBuy, t.Symbol, price, "EMA crossover (bullish)")
	}
	if shortEMA < longEMA && price < shortEMA {
		return s.signal(domain.SideSell, t.Symbol, price, "EMA crossover (bearish)")
	}
	return nil
}

type gridLevel struct {
	level  int
	price  float64
	action domain.Side
}

// MeanReversion trades a grid derived from the Bollinger range, plus RSI
// extremes outside the bands. Grids build lazily per symbol; the mutex keeps
// that safe when one instance serves several symbols concurrently.
type MeanReversion struct {
	baseStrategy
	mu         sync.Mutex
	gridLevels map[string][]gridLevel
}

func (s *MeanReversion) Signal(price float64, t *domain.Technicals) *domain.TradeSignal {
	if t == nil {
		return nil
	}
	bands := t.Bollinger

	s.mu.Lock()
	if _, ok := s.gridLevels[t.Symbol]; !ok {
		s.buildGrid(t.Symbol, bands)
	}
	levels := s.gridLevels[t.Symbol]
	s.mu.Unlock()

	for _, level := range levels {
		if level.price != 0 && math.Abs(price-level.price)/level.price < 0.001 {
			return s.signal(level.action, t.Symbol, price,
				fmt.Sprintf("Grid level %d (%s)", level.level, level.action))
		}
	}

	if t.RSI < rsiOversold && price < bands.Lower {
		return s.signal(domain.SideBuy, t.Symbol, price, "Oversold condition (RSI + Bollinger)")
	}
	if t.RSI > rsiOverbought && price > bands.Upper {
		return s.signal(domain.SideSell, t.Symbol, price, "Overbought condition (RSI + Bollinger)")
	}
	return nil
}

func (s *MeanReversion) buildGrid(symbol string, bands domain.BollingerBands) {
	count := int(s.param("levels", 10))
	if count <= 0 {
		count = 10
	}
	width := (bands.Upper - bands.Lower) / float64(count)

	levels := make([]gridLevel, 0, count)
	for i := 1; i <= count/2; i++ {
		levels = append(levels, gridLevel{
			level:  -i,
			price:  bands.Middle - float64(i)*width,
			action: domain.SideBuy,
		})
	}
	for i := 1; i <= count/2; i++ {
		levels = append(levels, gridLevel{
			level:  i,
			price:  bands.Middle + float64(i)*width,
			action: domain.SideSell,
		})
	}
	s.gridLevels[symbol] = levels
}

// MarketMaking emulates quoting both sides of the book with market orders
// when price reaches the quote bands.
type MarketMaking struct {
	baseStrategy
}

func (s *MarketMaking) Signal(price float64, t *domain.Technicals) *domain.TradeSignal {
	if t == nil {
		return nil
	}
	spread := price * s.param("spread", 0.5) / 100
	bid := price - spread
	ask := price + spread

	if math.Abs(price-bid)/price < 0.001 {
		return s.signal(domain.SideBuy, t.Symbol, price, "Market making bid")
	}
	if math.Abs(price-ask)/price < 0.001 {
		return s.signal(domain.SideSell, t.Symbol, price, "Market making ask")
	}
	return nil
}

// Arbitrage simulates a second venue's price and trades the spread when it
// clears the configured minimum.
type Arbitrage struct {
	baseStrategy
	rng *lockedRand
}

func (s *Arbitrage) Signal(price float64, t *domain.Technicals) *domain.TradeSignal {
	if t == nil {
		return nil
	}
	otherPrice := price * (1 + (s.rng.Float64()*0.02 - 0.01))
	spreadPct := math.Abs(otherPrice-price) / price * 100

	if spreadPct < s.param("min_spread", 0.5) {
		return nil
	}
	reason := fmt.Sprintf("Arbitrage opportunity (%.2f%% spread)", spreadPct)
	if otherPrice > price {
		return s.signal(domain.SideBuy, t.Symbol, price, reason)
	}
	return s.signal(domain.SideSell, t.Symbol, price, reason)
}
