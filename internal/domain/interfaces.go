package domain

import (
	"context"
	"errors"
)

var (
	// ErrNoActiveExchange is returned when a live trade is requested without
	// an enabled, active exchange credential.
	ErrNoActiveExchange = errors.New("no active exchange configured for trading")

	// ErrNotFound is returned by repositories and fetchers for missing entities.
	ErrNotFound = errors.New("not found")
)

// MarketDataProvider fetches raw market data from the upstream provider.
// Implementations issue one outbound call per invocation; caching sits above.
type MarketDataProvider interface {
	TopMarkets(ctx context.Context, limit int) ([]MarketRow, error)
	MarketChart(ctx context.Context, coinID, days string) (*HistoricalSeries, error)
	CoinDetail(ctx context.Context, coinID string) (CoinDetail, error)
	SimplePrice(ctx context.Context, coinIDs []string) (MultiPrice, error)
}

// MarketAnalyzer labels coins with a regime and scores correlations against a
// base coin. The default implementation is a documented random placeholder;
// a statistical implementation can be swapped in without touching callers.
type MarketAnalyzer interface {
	Label(ctx context.Context, row MarketRow) (regime string, confidence float64)
	Correlate(ctx context.Context, baseID string, others []MarketRow) ([]Correlation, error)
}

// ExchangeClient is a per-exchange order gateway. Live order submission is a
// stub across every implementation: the signed request is prepared and logged
// but never sent.
type ExchangeClient interface {
	Name() string
	PlaceOrder(ctx context.Context, apiKey, apiSecret, symbol string, side Side, quantity float64) (*TradeResult, error)
}

// UserRepository persists dashboard accounts.
type UserRepository interface {
	SaveUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

// TradeRepository persists the trade history shown on the dashboard.
type TradeRepository interface {
	SaveTrade(ctx context.Context, t *TradeRecord) error
	ListTrades(ctx context.Context, limit int) ([]*TradeRecord, error)
}
