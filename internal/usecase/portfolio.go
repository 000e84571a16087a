package usecase

import (
	"context"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	portfolioSeedValue = 10000
	portfolioPoints    = 100
)

// Fixed demo allocation until real exchange balances are wired in.
var portfolioAllocation = map[string]float64{
	"BTC":  40,
	"ETH":  30,
	"USDT": 20,
	"SOL":  10,
}

// PortfolioService produces a synthetic portfolio view. The value history is
// a random walk regenerated per request; only the trade history is real.
type PortfolioService struct {
	trades  domain.TradeRepository
	rng     *lockedRand
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewPortfolioService(trades domain.TradeRepository, logger *zap.Logger) *PortfolioService {
	return &PortfolioService{
		trades:  trades,
		rng:     newLockedRand(nil),
		logger:  logger,
		timeNow: time.Now,
	}
}

// Snapshot returns the current synthetic portfolio value, an hourly value
// history and the fixed asset allocation.
func (s *PortfolioService) Snapshot(ctx context.Context) *domain.PortfolioSnapshot {
	now := s.timeNow()
	history := make([]domain.PricePoint, 0, portfolioPoints)
	value := float64(portfolioSeedValue)
	for i := portfolioPoints - 1; i >= 0; i-- {
		value *= 1 + (s.rng.Float64()*2-1)*0.01
		history = append(history, domain.PricePoint{
			Time:  now.Add(-time.Duration(i) * time.Hour).Format(time.RFC3339),
			Value: value,
		})
	}

	current := history[len(history)-1].Value
	dayAgo := history[max(0, len(history)-25)].Value
	var change float64
	if dayAgo != 0 {
		change = (current - dayAgo) / dayAgo * 100
	}

	return &domain.PortfolioSnapshot{
		TotalValue: current,
		Change24h:  change,
		History:    history,
		Allocation: portfolioAllocation,
	}
}

// Trades lists the most recent executed trades, newest first.
func (s *PortfolioService) Trades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	return s.trades.ListTrades(ctx, limit)
}
