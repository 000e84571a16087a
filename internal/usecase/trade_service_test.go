package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

type mockExchangeClient struct {
	called    bool
	apiKey    string
	apiSecret string
	symbol    string
	side      domain.Side
	quantity  float64
}

func (m *mockExchangeClient) Name() string { return "mock" }

func (m *mockExchangeClient) PlaceOrder(ctx context.Context, apiKey, apiSecret, symbol string, side domain.Side, quantity float64) (*domain.TradeResult, error) {
	m.called = true
	m.apiKey = apiKey
	m.apiSecret = apiSecret
	m.symbol = symbol
	m.side = side
	m.quantity = quantity
	return &domain.TradeResult{Success: true, Symbol: symbol, Side: side, Quantity: quantity}, nil
}

func newTestTradeService(t *testing.T) (*TradeService, *CredentialStore, *mockExchangeClient) {
	t.Helper()
	creds := newTestCredentialStore(t)
	client := &mockExchangeClient{}
	svc := NewTradeService(creds, map[string]domain.ExchangeClient{
		domain.ExchangeBinance: client,
	}, zap.NewNop())
	svc.timeNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, creds, client
}

func TestTradeService_SimulatedBTCUsesFixedPrice(t *testing.T) {
	svc, _, client := newTestTradeService(t)

	result, err := svc.Execute(context.Background(), "BTCUSDT", domain.SideBuy, 0.5, true)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Simulation)
	assert.Equal(t, 35000.0, result.Price)
	assert.Equal(t, 17500.0, result.Value)
	assert.False(t, client.called)
}

func TestTradeService_SimulatedOtherSymbolsBoundedPrice(t *testing.T) {
	svc, _, _ := newTestTradeService(t)

	for i := 0; i < 50; i++ {
		result, err := svc.Execute(context.Background(), "DOGEUSDT", domain.SideSell, 1, true)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Price, 1000.0)
		assert.Less(t, result.Price, 2000.0)
		assert.Equal(t, result.Price, result.Value)
	}
}

func TestTradeService_ConcurrentSimulatedExecutes(t *testing.T) {
	svc, _, _ := newTestTradeService(t)

	// Simulated fills for non-BTC symbols draw from a shared generator. Run
	// with -race.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result, err := svc.Execute(context.Background(), "DOGEUSDT", domain.SideBuy, 1, true)
				assert.NoError(t, err)
				assert.GreaterOrEqual(t, result.Price, 1000.0)
				assert.Less(t, result.Price, 2000.0)
			}
		}()
	}
	wg.Wait()
}

func TestTradeService_RejectsBadInput(t *testing.T) {
	svc, _, _ := newTestTradeService(t)
	ctx := context.Background()

	_, err := svc.Execute(ctx, "BTCUSDT", domain.SideBuy, 0, true)
	assert.Error(t, err)

	_, err = svc.Execute(ctx, "BTCUSDT", domain.SideBuy, -1, true)
	assert.Error(t, err)

	_, err = svc.Execute(ctx, "BTCUSDT", "hold", 1, true)
	assert.Error(t, err)
}

func TestTradeService_LiveWithoutCredentials(t *testing.T) {
	svc, _, client := newTestTradeService(t)

	_, err := svc.Execute(context.Background(), "BTCUSDT", domain.SideBuy, 1, false)
	assert.ErrorIs(t, err, domain.ErrNoActiveExchange)
	assert.False(t, client.called)
}

func TestTradeService_LiveForwardsDecryptedCredentials(t *testing.T) {
	svc, creds, client := newTestTradeService(t)
	require.True(t, creds.Set(domain.ExchangeBinance, "live-key", "live-secret"))

	result, err := svc.Execute(context.Background(), "ETHUSDT", domain.SideSell, 2, false)
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.True(t, client.called)
	assert.Equal(t, "live-key", client.apiKey)
	assert.Equal(t, "live-secret", client.apiSecret)
	assert.Equal(t, "ETHUSDT", client.symbol)
	assert.Equal(t, domain.SideSell, client.side)
	assert.Equal(t, 2.0, client.quantity)
}

func TestTradeService_LiveWithoutGatewayForActiveExchange(t *testing.T) {
	creds := newTestCredentialStore(t)
	svc := NewTradeService(creds, map[string]domain.ExchangeClient{}, zap.NewNop())
	require.True(t, creds.Set(domain.ExchangeKraken, "k", "s"))

	_, err := svc.Execute(context.Background(), "BTCUSDT", domain.SideBuy, 1, false)
	assert.ErrorIs(t, err, domain.ErrNoActiveExchange)
}
