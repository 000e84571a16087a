package domain

import "time"

// Strategy types.
const (
	StrategyTrend         = "trend"
	StrategyMeanReversion = "mean_reversion"
	StrategyMarketMaking  = "market_making"
	StrategyArbitrage     = "arbitrage"
)

// TradeSignal is a buy/sell recommendation produced by a strategy.
type TradeSignal struct {
	Action    Side      `json:"action"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// RiskSettings bound position sizing and exits. Percentages throughout.
type RiskSettings struct {
	MaxPositionPct     float64 `json:"max_position_size"`
	StopLossPct        float64 `json:"stop_loss"`
	TakeProfitPct      float64 `json:"take_profit"`
	MaxConcurrent      int     `json:"max_concurrent_trades"`
	EmergencyStopPct   float64 `json:"emergency_stop_threshold"`
}

// DefaultRiskSettings mirrors the dashboard defaults.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		MaxPositionPct:   10,
		StopLossPct:      5,
		TakeProfitPct:    10,
		MaxConcurrent:    5,
		EmergencyStopPct: 15,
	}
}

// StrategyPerformance accumulates per strategy+symbol metrics.
type StrategyPerformance struct {
	Trades     int     `json:"trades"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	ProfitLoss float64 `json:"profit_loss"`
	Return     float64 `json:"return"`
}

// StrategyRecommendation names the strategy best suited to current conditions.
type StrategyRecommendation struct {
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Parameters map[string]float64 `json:"parameters"`
	Confidence float64            `json:"confidence"`
}
