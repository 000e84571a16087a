package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

// Reference prices for simulated fills. BTC pairs use the fixed lookup;
// anything else gets a bounded random price.
var simulationPrices = map[string]float64{
	"BTC": 35000,
}

const (
	simPriceMin = 1000
	simPriceMax = 2000
)

// TradeService is the execution shim. Simulation fabricates a fill locally;
// live mode requires an active credential and forwards to the exchange
// gateway, whose submission path is a stub.
type TradeService struct {
	creds     *CredentialStore
	exchanges map[string]domain.ExchangeClient
	rng       *lockedRand
	logger    *zap.Logger
	timeNow   func() time.Time
}

func NewTradeService(creds *CredentialStore, exchanges map[string]domain.ExchangeClient, logger *zap.Logger) *TradeService {
	return &TradeService{
		creds:     creds,
		exchanges: exchanges,
		rng:       newLockedRand(nil),
		logger:    logger,
		timeNow:   time.Now,
	}
}

// Execute runs one trade. The default path is simulation; live requires an
// active, enabled exchange credential and otherwise fails with
// ErrNoActiveExchange before touching the network. No retries, no partial
// fills, no idempotency key.
func (s *TradeService) Execute(ctx context.Context, symbol string, side domain.Side, quantity float64, simulation bool) (*domain.TradeResult, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("invalid side: %s", side)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", quantity)
	}

	if simulation {
		price := s.simulatedPrice(symbol)
		return &domain.TradeResult{
			Success:    true,
			Simulation: true,
			Symbol:     symbol,
			Side:       side,
			Quantity:   quantity,
			Price:      price,
			Value:      price * quantity,
			Timestamp:  s.timeNow(),
		}, nil
	}

	exchange, apiKey, apiSecret, err := s.creds.ActiveCredentials()
	if err != nil {
		return nil, err
	}
	client, ok := s.exchanges[exchange]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway for %s", domain.ErrNoActiveExchange, exchange)
	}

	s.logger.Info("executing live trade",
		zap.String("exchange", exchange),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("quantity", quantity))

	return client.PlaceOrder(ctx, apiKey, apiSecret, symbol, side, quantity)
}

func (s *TradeService) simulatedPrice(symbol string) float64 {
	for pair, price := range simulationPrices {
		if strings.Contains(symbol, pair) {
			return price
		}
	}
	return simPriceMin + s.rng.Float64()*(simPriceMax-simPriceMin)
}
