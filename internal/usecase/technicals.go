package usecase

import (
	"math"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Indicator configuration. Values mirror the dashboard's charting defaults.
const (
	emaShortPeriod  = 9
	emaMediumPeriod = 21
	emaLongPeriod   = 50

	rsiPeriod     = 14
	rsiOversold   = 30
	rsiOverbought = 70

	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9

	bollingerPeriod     = 20
	bollingerDeviations = 2
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// simpleReturns computes period-over-period fractional returns.
func simpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	return returns
}

// volatility is the standard deviation of simple returns.
func volatility(prices []float64) float64 {
	return stddev(simpleReturns(prices))
}

// trendStrength measures directional consistency on a 0-100 scale: the share
// of moves in the dominant direction.
func trendStrength(prices []float64) float64 {
	if len(prices) < 14 {
		return 0
	}
	var up, down float64
	for i := 1; i < len(prices); i++ {
		switch {
		case prices[i] > prices[i-1]:
			up++
		case prices[i] < prices[i-1]:
			down++
		}
	}
	total := up + down
	if total == 0 {
		return 0
	}
	return math.Max(up, down) / total * 100
}

// ema seeds with an SMA over the first period, then applies the standard
// multiplier recurrence. With fewer samples than period it degrades to the
// last price.
func ema(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}
	value := mean(prices[:period])
	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		value = (prices[i]-value)*multiplier + value
	}
	return value
}

// rsi uses Wilder smoothing. Returns 50 when there is not enough data.
func rsi(prices []float64, period int) float64 {
	if len(prices) <= period {
		return 50
	}
	deltas := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		deltas[i-1] = prices[i] - prices[i-1]
	}

	var avgGain, avgLoss float64
	for _, d := range deltas[:period] {
		if d > 0 {
			avgGain += d
		} else {
			avgLoss += -d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period; i < len(deltas); i++ {
		gain, loss := 0.0, 0.0
		if deltas[i] > 0 {
			gain = deltas[i]
		} else {
			loss = -deltas[i]
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func macd(prices []float64, fastPeriod, slowPeriod, signalPeriod int) domain.MACDResult {
	if len(prices) < max(fastPeriod, slowPeriod)+signalPeriod {
		return domain.MACDResult{}
	}

	line := ema(prices, fastPeriod) - ema(prices, slowPeriod)

	// Rebuild the MACD history so the signal line is a true EMA of it.
	history := make([]float64, 0, len(prices)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(prices); i++ {
		history = append(history, ema(prices[:i+1], fastPeriod)-ema(prices[:i+1], slowPeriod))
	}
	signal := ema(history, signalPeriod)

	return domain.MACDResult{
		Value:     line,
		Signal:    signal,
		Histogram: line - signal,
	}
}

func bollinger(prices []float64, period int, deviations float64) domain.BollingerBands {
	if len(prices) == 0 {
		return domain.BollingerBands{}
	}
	if len(prices) < period {
		price := prices[len(prices)-1]
		return domain.BollingerBands{
			Upper:  price * 1.02,
			Middle: price,
			Lower:  price * 0.98,
		}
	}
	recent := prices[len(prices)-period:]
	sma := mean(recent)
	sd := stddev(recent)
	return domain.BollingerBands{
		Upper:  sma + sd*deviations,
		Middle: sma,
		Lower:  sma - sd*deviations,
	}
}

// pearson computes the Pearson correlation coefficient over the shorter of
// the two series. Returns 0 when either side is degenerate.
func pearson(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 2 {
		return 0
	}
	a, b = a[:n], b[:n]
	ma, mb := mean(a), mean(b)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// determineSignal tallies four indicator checks; three or more agreeing
// votes produce a buy or sell, anything else is neutral.
func determineSignal(price float64, e domain.EMASet, rsiValue float64, m domain.MACDResult) string {
	bullish, bearish := 0, 0

	if e.Short > e.Medium {
		bullish++
	} else if e.Short < e.Medium {
		bearish++
	}

	if rsiValue < rsiOversold {
		bullish++
	} else if rsiValue > rsiOverbought {
		bearish++
	}

	if m.Histogram > 0 {
		bullish++
	} else if m.Histogram < 0 {
		bearish++
	}

	if price > e.Short && price > e.Medium {
		bullish++
	} else if price < e.Short && price < e.Medium {
		bearish++
	}

	switch {
	case bullish > bearish && bullish >= 3:
		return "buy"
	case bearish > bullish && bearish >= 3:
		return "sell"
	default:
		return "neutral"
	}
}

// computeTechnicals derives the full indicator set from a price window.
func computeTechnicals(symbol string, prices []float64) *domain.Technicals {
	price := prices[len(prices)-1]
	emas := domain.EMASet{
		Short:  ema(prices, emaShortPeriod),
		Medium: ema(prices, emaMediumPeriod),
		Long:   ema(prices, emaLongPeriod),
	}
	rsiValue := rsi(prices, rsiPeriod)
	macdValue := macd(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	bands := bollinger(prices, bollingerPeriod, bollingerDeviations)

	return &domain.Technicals{
		Symbol:    symbol,
		Price:     price,
		EMA:       emas,
		RSI:       rsiValue,
		MACD:      macdValue,
		Bollinger: bands,
		Signal:    determineSignal(price, emas, rsiValue, macdValue),
	}
}
