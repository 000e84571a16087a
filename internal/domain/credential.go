package domain

// Supported exchange identifiers.
const (
	ExchangeBinance  = "binance"
	ExchangeKraken   = "kraken"
	ExchangeCoinbase = "coinbase"
)

// SupportedExchanges lists every exchange the dashboard can hold credentials for.
var SupportedExchanges = []string{ExchangeBinance, ExchangeKraken, ExchangeCoinbase}

func IsSupportedExchange(name string) bool {
	for _, e := range SupportedExchanges {
		if e == name {
			return true
		}
	}
	return false
}

// ExchangeCredential holds one exchange's API credentials.
// APIKey and APISecret are stored encrypted; they are only decrypted on read.
type ExchangeCredential struct {
	Exchange  string
	APIKey    string
	APISecret string
	Enabled   bool
}
