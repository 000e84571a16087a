package domain

// PortfolioSnapshot is the aggregate portfolio view served to the dashboard.
type PortfolioSnapshot struct {
	TotalValue float64            `json:"total_value"`
	Change24h  float64            `json:"change_24h_pct"`
	History    []PricePoint       `json:"history"`
	Allocation map[string]float64 `json:"allocation"`
}
