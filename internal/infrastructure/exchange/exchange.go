package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	BinanceBaseURL  = "https://api.binance.com/api/v3"
	KrakenBaseURL   = "https://api.kraken.com/0"
	CoinbaseBaseURL = "https://api.exchange.coinbase.com"
)

// RESTClient is a minimal order gateway for one exchange. Order submission is
// a stub: the signed request is assembled and logged, but never sent. The
// HTTP client and fixed timeout are kept so a real submission path can be
// wired without changing the type.
type RESTClient struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewRESTClient(name, baseURL string, logger *zap.Logger) *RESTClient {
	return &RESTClient{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		timeNow: time.Now,
	}
}

// NewClients builds gateways for every supported exchange.
func NewClients(logger *zap.Logger) map[string]domain.ExchangeClient {
	return map[string]domain.ExchangeClient{
		domain.ExchangeBinance:  NewRESTClient(domain.ExchangeBinance, BinanceBaseURL, logger),
		domain.ExchangeKraken:   NewRESTClient(domain.ExchangeKraken, KrakenBaseURL, logger),
		domain.ExchangeCoinbase: NewRESTClient(domain.ExchangeCoinbase, CoinbaseBaseURL, logger),
	}
}

func (c *RESTClient) Name() string { return c.name }

func (c *RESTClient) sign(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// PlaceOrder prepares a signed order request for the exchange and acknowledges
// it without submitting. No order reaches the exchange.
func (c *RESTClient) PlaceOrder(ctx context.Context, apiKey, apiSecret, symbol string, side domain.Side, quantity float64) (*domain.TradeResult, error) {
	now := c.timeNow()

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	params.Set("timestamp", strconv.FormatInt(now.UnixMilli(), 10))
	signature := c.sign(apiSecret, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", nil)
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.URL.RawQuery = params.Encode() + "&signature=" + signature
	req.Header.Set("X-API-KEY", apiKey)

	c.logger.Info("live order submission is not implemented, acknowledging without sending",
		zap.String("exchange", c.name),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("quantity", quantity))

	return &domain.TradeResult{
		Success:    true,
		Simulation: false,
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Timestamp:  now,
	}, nil
}
