package domain

// BacktestTrade is one closed position from a backtest run.
type BacktestTrade struct {
	EntryTime  string  `json:"entry_time"`
	ExitTime   string  `json:"exit_time"`
	Side       Side    `json:"side"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Quantity   float64 `json:"quantity"`
	ProfitLoss float64 `json:"profit_loss"`
	ExitReason string  `json:"exit_reason"`
}

// BacktestResult summarizes a strategy replay over historical prices.
type BacktestResult struct {
	Strategy       string          `json:"strategy"`
	Symbol         string          `json:"symbol"`
	Days           int             `json:"days"`
	InitialBalance float64         `json:"initial_balance"`
	FinalBalance   float64         `json:"final_balance"`
	Return         float64         `json:"return_pct"`
	Trades         []BacktestTrade `json:"trades"`
	TotalTrades    int             `json:"total_trades"`
	WinRate        float64         `json:"win_rate"`
	ProfitFactor   float64         `json:"profit_factor"`
	MaxDrawdown    float64         `json:"max_drawdown_pct"`
	EquityCurve    []float64       `json:"equity_curve"`
}
