package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	backtestWindow  = 50
	backtestBalance = 10000
)

// Backtester replays a strategy over historical prices. Indicators are
// recomputed on a rolling window at every step, so the replay never sees
// future data.
type Backtester struct {
	market *MarketService
	logger *zap.Logger
	rng    *lockedRand
}

func NewBacktester(market *MarketService, logger *zap.Logger) *Backtester {
	return &Backtester{
		market: market,
		logger: logger,
		rng:    newLockedRand(nil),
	}
}

type openPosition struct {
	side      domain.Side
	entryTime string
	entry     float64
	quantity  float64
}

// Run fetches up to days of history for coinID and replays the given
// strategy with the supplied risk settings, starting from a fixed balance.
func (b *Backtester) Run(ctx context.Context, strategyType, coinID, symbol string, days int, risk domain.RiskSettings) (*domain.BacktestResult, error) {
	strat, err := NewStrategy(strategyType, strategyType+" backtest", nil, b.rng)
	if err != nil {
		return nil, err
	}
	strat.SetRisk(risk)

	series, _ := b.market.Historical(ctx, coinID, strconv.Itoa(days))
	points := series.Prices
	if len(points) <= backtestWindow {
		return nil, fmt.Errorf("not enough history for %s: have %d points, need more than %d", coinID, len(points), backtestWindow)
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Value
	}

	balance := float64(backtestBalance)
	equity := []float64{balance}
	var position *openPosition
	var trades []domain.BacktestTrade

	closePosition := func(exitPrice float64, exitTime, reason string) {
		pl := (exitPrice - position.entry) * position.quantity
		if position.side == domain.SideSell {
			pl = -pl
		}
		balance += pl
		trades = append(trades, domain.BacktestTrade{
			EntryTime:  position.entryTime,
			ExitTime:   exitTime,
			Side:       position.side,
			EntryPrice: position.entry,
			ExitPrice:  exitPrice,
			Quantity:   position.quantity,
			ProfitLoss: pl,
			ExitReason: reason,
		})
		position = nil
	}

	for i := backtestWindow; i < len(prices); i++ {
		price := prices[i]
		at := points[i].Time
		technicals := computeTechnicals(symbol, prices[i-backtestWindow:i])

		if position != nil {
			if reason, hit := exitTriggered(position, price, risk); hit {
				closePosition(price, at, reason)
			}
		}

		signal := strat.Signal(price, technicals)
		if signal != nil {
			if position != nil && signal.Action != position.side {
				closePosition(price, at, "signal")
			}
			if position == nil {
				quantity := balance * (risk.MaxPositionPct / 100) / price
				position = &openPosition{
					side:      signal.Action,
					entryTime: at,
					entry:     price,
					quantity:  quantity,
				}
			}
		}

		equity = append(equity, markToMarket(balance, position, price))
	}

	if position != nil {
		closePosition(prices[len(prices)-1], points[len(points)-1].Time, "end_of_data")
		equity[len(equity)-1] = balance
	}

	result := &domain.BacktestResult{
		Strategy:       strategyType,
		Symbol:         symbol,
		Days:           days,
		InitialBalance: backtestBalance,
		FinalBalance:   balance,
		Return:         (balance - backtestBalance) / backtestBalance * 100,
		Trades:         trades,
		TotalTrades:    len(trades),
		EquityCurve:    equity,
	}
	fillTradeStats(result)

	b.logger.Info("backtest finished",
		zap.String("strategy", strategyType),
		zap.String("coin", coinID),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("return_pct", result.Return))
	return result, nil
}

func exitTriggered(p *openPosition, price float64, risk domain.RiskSettings) (string, bool) {
	stop := risk.StopLossPct / 100
	take := risk.TakeProfitPct / 100
	if p.side == domain.SideBuy {
		if price <= p.entry*(1-stop) {
			return "stop_loss", true
		}
		if price >= p.entry*(1+take) {
			return "take_profit", true
		}
		return "", false
	}
	if price >= p.entry*(1+stop) {
		return "stop_loss", true
	}
	if price <= p.entry*(1-take) {
		return "take_profit", true
	}
	return "", false
}

func markToMarket(balance float64, p *openPosition, price float64) float64 {
	if p == nil {
		return balance
	}
	pl := (price - p.entry) * p.quantity
	if p.side == domain.SideSell {
		pl = -pl
	}
	return balance + pl
}

func fillTradeStats(r *domain.BacktestResult) {
	var wins int
	var grossProfit, grossLoss float64
	for _, t := range r.Trades {
		if t.ProfitLoss > 0 {
			wins++
			grossProfit += t.ProfitLoss
		} else {
			grossLoss += -t.ProfitLoss
		}
	}
	if r.TotalTrades > 0 {
		r.WinRate = float64(wins) / float64(r.TotalTrades) * 100
	}
	switch {
	case grossLoss > 0:
		r.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		r.ProfitFactor = grossProfit
	}

	peak := r.EquityCurve[0]
	for _, eq := range r.EquityCurve {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			dd := (peak - eq) / peak * 100
			if dd > r.MaxDrawdown {
				r.MaxDrawdown = dd
			}
		}
	}
}
