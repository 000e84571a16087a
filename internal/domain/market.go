package domain

import "time"

// Market regimes.
const (
	RegimeTrending = "trending"
	RegimeSideways = "sideways"
	RegimeVolatile = "volatile"
	RegimeUnknown  = "unknown"
)

// MarketRow is one coin row as returned by the market-data provider.
type MarketRow struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	TotalVolume    float64 `json:"total_volume"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// MarketRecord is a provider row enriched with a regime label for the dashboard.
type MarketRecord struct {
	MarketRow
	Regime     string  `json:"regime"`
	Confidence float64 `json:"confidence"`
}

// PricePoint is one sample of a charted series.
type PricePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// HistoricalSeries holds the charting series for one coin.
type HistoricalSeries struct {
	Prices       []PricePoint `json:"prices"`
	MarketCaps   []PricePoint `json:"market_caps"`
	TotalVolumes []PricePoint `json:"total_volumes"`
}

// CoinDetail is the provider's detail payload, passed through untouched.
type CoinDetail map[string]interface{}

// MultiPrice maps coin id -> currency -> value, as served by the provider.
type MultiPrice map[string]map[string]float64

// Correlation scores one coin against a base coin.
type Correlation struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	CorrelationScore float64 `json:"correlation_score"`
	PerformanceDelta float64 `json:"performance_delta"`
	CurrentPrice     float64 `json:"current_price"`
	Volume           float64 `json:"volume"`
	MarketCap        float64 `json:"market_cap"`
}

// MarketAnalysis is the regime detection result for one symbol.
type MarketAnalysis struct {
	Symbol        string    `json:"symbol"`
	Regime        string    `json:"regime"`
	Volatility    float64   `json:"volatility"`
	TrendStrength float64   `json:"trend_strength"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}

// EMASet holds short/medium/long exponential moving averages.
type EMASet struct {
	Short  float64 `json:"short"`
	Medium float64 `json:"medium"`
	Long   float64 `json:"long"`
}

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerBands holds the three band values.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Technicals is the technical analysis result for one symbol.
type Technicals struct {
	Symbol    string         `json:"symbol"`
	Price     float64        `json:"price"`
	EMA       EMASet         `json:"ema"`
	RSI       float64        `json:"rsi"`
	MACD      MACDResult     `json:"macd"`
	Bollinger BollingerBands `json:"bollinger"`
	Signal    string         `json:"signal"`
	Timestamp time.Time      `json:"timestamp"`
}
