package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

// StrategyManager owns strategy activation, signal generation and execution
// bookkeeping for the dashboard's strategy cards.
type StrategyManager struct {
	mu          sync.Mutex
	analysis    *AnalysisService
	trades      *TradeService
	tradeRepo   domain.TradeRepository
	active      map[string]Strategy
	performance map[string]*domain.StrategyPerformance
	risk        domain.RiskSettings
	rng         *lockedRand
	logger      *zap.Logger
	timeNow     func() time.Time
}

func NewStrategyManager(analysis *AnalysisService, trades *TradeService, tradeRepo domain.TradeRepository, logger *zap.Logger) *StrategyManager {
	return &StrategyManager{
		analysis:    analysis,
		trades:      trades,
		tradeRepo:   tradeRepo,
		active:      make(map[string]Strategy),
		performance: make(map[string]*domain.StrategyPerformance),
		risk:        domain.DefaultRiskSettings(),
		rng:         newLockedRand(nil),
		logger:      logger,
		timeNow:     time.Now,
	}
}

func strategyKey(typ, symbol string) string {
	return typ + "|" + symbol
}

// Activate creates a strategy and enables it for each symbol.
func (m *StrategyManager) Activate(name, typ string, params map[string]float64, symbols []string) bool {
	strategy, err := NewStrategy(typ, name, params, m.rng)
	if err != nil {
		m.logger.Error("failed to activate strategy", zap.String("type", typ), zap.Error(err))
		return false
	}
	strategy.SetRisk(m.risk)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, symbol := range symbols {
		key := strategyKey(typ, symbol)
		m.active[key] = strategy
		if _, ok := m.performance[key]; !ok {
			m.performance[key] = &domain.StrategyPerformance{}
		}
	}
	m.logger.Info("strategy activated", zap.String("name", name), zap.Strings("symbols", symbols))
	return true
}

// Deactivate disables a strategy type for the given symbols. Reports whether
// any active strategy was actually removed.
func (m *StrategyManager) Deactivate(typ string, symbols []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := false
	for _, symbol := range symbols {
		key := strategyKey(typ, symbol)
		if _, ok := m.active[key]; ok {
			delete(m.active, key)
			removed = true
		}
	}
	return removed
}

// OptimalStrategy recommends a strategy for current conditions, with
// parameters adjusted for measured volatility and trend strength.
func (m *StrategyManager) OptimalStrategy(ctx context.Context, symbol string) *domain.StrategyRecommendation {
	analysis := m.analysis.AnalyzeMarket(ctx, symbol)
	rec := m.analysis.RecommendedStrategy(analysis.Regime)
	rec.Parameters = m.adjustParameters(rec.Type, rec.Parameters, analysis)
	rec.Confidence = analysis.Confidence
	return &rec
}

// adjustParameters tunes strategy defaults to the measured market character.
func (m *StrategyManager) adjustParameters(typ string, base map[string]float64, analysis *domain.MarketAnalysis) map[string]float64 {
	switch typ {
	case domain.StrategyTrend:
		if analysis.Volatility > 0.03 {
			return map[string]float64{
				"short_ema": max(5, base["short_ema"]-2),
				"long_ema":  max(15, base["long_ema"]-5),
			}
		}
		if analysis.TrendStrength > 70 {
			return map[string]float64{
				"short_ema": base["short_ema"] + 1,
				"long_ema":  base["long_ema"] + 2,
			}
		}
		return base

	case domain.StrategyMeanReversion:
		width, levels := 1.5, 12.0
		switch {
		case analysis.Volatility > 0.03:
			width, levels = 3.0, 6
		case analysis.Volatility > 0.01:
			width, levels = 2.0, 10
		}
		return map[string]float64{"width": width, "levels": levels}

	case domain.StrategyMarketMaking:
		spread := 0.3
		switch {
		case analysis.Volatility > 0.03:
			spread = 0.8
		case analysis.Volatility > 0.01:
			spread = 0.5
		}
		orderSize := base["order_size"]
		if orderSize == 0 {
			orderSize = 5
		}
		return map[string]float64{"spread": spread, "order_size": orderSize}

	default:
		return base
	}
}

// Signal runs the active strategy for a symbol against fresh technicals. If
// none is active, the optimal strategy is activated first.
func (m *StrategyManager) Signal(ctx context.Context, symbol string, price float64) *domain.TradeSignal {
	m.mu.Lock()
	var strategy Strategy
	for _, typ := range []string{domain.StrategyTrend, domain.StrategyMeanReversion, domain.StrategyMarketMaking, domain.StrategyArbitrage} {
		if s, ok := m.active[strategyKey(typ, symbol)]; ok {
			strategy = s
			break
		}
	}
	m.mu.Unlock()

	if strategy == nil {
		optimal := m.OptimalStrategy(ctx, symbol)
		if !m.Activate(optimal.Name, optimal.Type, optimal.Parameters, []string{symbol}) {
			return nil
		}
		m.mu.Lock()
		strategy = m.active[strategyKey(optimal.Type, symbol)]
		m.mu.Unlock()
	}

	technicals := m.analysis.AnalyzeTechnicals(ctx, symbol)
	return strategy.Signal(price, technicals)
}

// ExecuteSignal executes a trading signal. In simulation the trade is only
// logged and recorded; live execution goes through the trade service.
func (m *StrategyManager) ExecuteSignal(ctx context.Context, signal *domain.TradeSignal, simulation bool) (*domain.TradeResult, error) {
	if !signal.Action.Valid() {
		return nil, fmt.Errorf("invalid action: %s", signal.Action)
	}

	var result *domain.TradeResult
	if simulation {
		m.logger.Info("simulated trade",
			zap.String("action", string(signal.Action)),
			zap.String("symbol", signal.Symbol),
			zap.Float64("price", signal.Price))
		result = &domain.TradeResult{
			Success:    true,
			Simulation: true,
			Symbol:     signal.Symbol,
			Side:       signal.Action,
			Quantity:   signal.Quantity,
			Price:      signal.Price,
			Value:      signal.Price * signal.Quantity,
			Timestamp:  m.timeNow(),
		}
	} else {
		var err error
		result, err = m.trades.Execute(ctx, signal.Symbol, signal.Action, signal.Quantity, false)
		if err != nil {
			return nil, err
		}
	}

	m.recordTrade(ctx, signal)
	return result, nil
}

// recordTrade updates performance counters and appends to the persisted
// trade history.
func (m *StrategyManager) recordTrade(ctx context.Context, signal *domain.TradeSignal) {
	m.mu.Lock()
	var strategyType string
	for _, typ := range []string{domain.StrategyTrend, domain.StrategyMeanReversion, domain.StrategyMarketMaking, domain.StrategyArbitrage} {
		if _, ok := m.active[strategyKey(typ, signal.Symbol)]; ok {
			strategyType = typ
			break
		}
	}
	if strategyType != "" {
		key := strategyKey(strategyType, signal.Symbol)
		perf, ok := m.performance[key]
		if !ok {
			perf = &domain.StrategyPerformance{}
			m.performance[key] = perf
		}
		perf.Trades++
	}
	m.mu.Unlock()

	record := &domain.TradeRecord{
		ID:        "trade_" + uuid.NewString(),
		Symbol:    signal.Symbol,
		Side:      signal.Action,
		Price:     signal.Price,
		Quantity:  signal.Quantity,
		Strategy:  strategyType,
		CreatedAt: m.timeNow(),
	}
	if err := m.tradeRepo.SaveTrade(ctx, record); err != nil {
		m.logger.Error("failed to record trade", zap.Error(err))
	}
}

// Performance returns metrics for one strategy+symbol pair, or nil.
func (m *StrategyManager) Performance(typ, symbol string) *domain.StrategyPerformance {
	m.mu.Lock()
	defer m.mu.Unlock()
	perf, ok := m.performance[strategyKey(typ, symbol)]
	if !ok {
		return nil
	}
	copied := *perf
	return &copied
}

// UpdateRisk merges new risk settings into the manager and every active
// strategy.
func (m *StrategyManager) UpdateRisk(settings domain.RiskSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.risk = settings
	for _, strategy := range m.active {
		strategy.SetRisk(settings)
	}
}

// Risk returns the current risk settings.
func (m *StrategyManager) Risk() domain.RiskSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.risk
}
