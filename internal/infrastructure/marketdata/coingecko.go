package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient issues REST calls to a CoinGecko-compatible provider.
// One outbound call per method invocation; the TTL cache sits above it.
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CoinGeckoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CoinGeckoClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func (c *CoinGeckoClient) TopMarkets(ctx context.Context, limit int) ([]domain.MarketRow, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	var rows []domain.MarketRow
	if err := c.get(ctx, "/coins/markets", params, &rows); err != nil {
		return nil, fmt.Errorf("fetch top markets: %w", err)
	}
	return rows, nil
}

// chartPayload is the provider's [[millis, value], ...] triple.
type chartPayload struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func toSeries(pairs [][2]float64) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(pairs))
	for _, p := range pairs {
		points = append(points, domain.PricePoint{
			Time:  time.UnixMilli(int64(p[0])).UTC().Format(time.RFC3339),
			Value: p[1],
		})
	}
	return points
}

func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID, days string) (*domain.HistoricalSeries, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", days)

	var payload chartPayload
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch market chart for %s: %w", coinID, err)
	}
	return &domain.HistoricalSeries{
		Prices:       toSeries(payload.Prices),
		MarketCaps:   toSeries(payload.MarketCaps),
		TotalVolumes: toSeries(payload.TotalVolumes),
	}, nil
}

func (c *CoinGeckoClient) CoinDetail(ctx context.Context, coinID string) (domain.CoinDetail, error) {
	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	var detail domain.CoinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), params, &detail); err != nil {
		return nil, fmt.Errorf("fetch coin detail for %s: %w", coinID, err)
	}
	return detail, nil
}

func (c *CoinGeckoClient) SimplePrice(ctx context.Context, coinIDs []string) (domain.MultiPrice, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_market_cap", "true")
	params.Set("include_24hr_vol", "true")
	params.Set("include_24hr_change", "true")

	var prices domain.MultiPrice
	if err := c.get(ctx, "/simple/price", params, &prices); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	return prices, nil
}
