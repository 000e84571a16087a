package domain

import "time"

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeResult is the outcome of one execution request. It is ephemeral;
// only TradeRecord entries are persisted.
type TradeResult struct {
	Success    bool      `json:"success"`
	Simulation bool      `json:"simulation"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// TradeRecord is one entry of the persisted trade history.
type TradeRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"action"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"timestamp"`
}
