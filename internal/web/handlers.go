package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultMarketLimit = 50
	maxMarketLimit     = 250
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultMarketLimit)
	if limit <= 0 || limit > maxMarketLimit {
		limit = defaultMarketLimit
	}
	records, stale := s.market.TopMarkets(r.Context(), limit)
	s.respondCached(w, records, stale)
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	coinID := r.PathValue("id")
	days := r.URL.Query().Get("days")
	if days == "" {
		days = "7"
	}
	series, stale := s.market.Historical(r.Context(), coinID, days)
	s.respondCached(w, series, stale)
}

func (s *Server) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	detail, stale := s.market.CoinDetail(r.Context(), r.PathValue("id"))
	if detail == nil {
		s.respondError(w, http.StatusNotFound, "coin not found")
		return
	}
	s.respondCached(w, detail, stale)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	var coinIDs []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			coinIDs = append(coinIDs, id)
		}
	}
	if len(coinIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}
	prices, stale := s.market.MultiPrice(r.Context(), coinIDs)
	s.respondCached(w, prices, stale)
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	correlations, stale := s.market.Correlations(r.Context(), r.PathValue("id"))
	s.respondCached(w, correlations, stale)
}

func (s *Server) handleAnalyzeMarket(w http.ResponseWriter, r *http.Request) {
	analysis := s.analysis.AnalyzeMarket(r.Context(), r.PathValue("symbol"))
	s.respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleTechnicals(w http.ResponseWriter, r *http.Request) {
	technicals := s.analysis.AnalyzeTechnicals(r.Context(), r.PathValue("symbol"))
	s.respondJSON(w, http.StatusOK, technicals)
}

func (s *Server) handleOptimalStrategy(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.respondError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}
	s.respondJSON(w, http.StatusOK, s.strategies.OptimalStrategy(r.Context(), symbol))
}

func (s *Server) handleActivateStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string             `json:"name"`
		Type    string             `json:"type"`
		Params  map[string]float64 `json:"params"`
		Symbols []string           `json:"symbols"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Type == "" || len(req.Symbols) == 0 {
		s.respondError(w, http.StatusBadRequest, "type and symbols are required")
		return
	}
	if !s.strategies.Activate(req.Name, req.Type, req.Params, req.Symbols) {
		s.respondError(w, http.StatusBadRequest, "unknown strategy type: "+req.Type)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"activated": true})
}

func (s *Server) handleDeactivateStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string   `json:"type"`
		Symbols []string `json:"symbols"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.strategies.Deactivate(req.Type, req.Symbols) {
		s.respondError(w, http.StatusNotFound, "no matching active strategy")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
}

func (s *Server) handleStrategyPerformance(w http.ResponseWriter, r *http.Request) {
	perf := s.strategies.Performance(r.PathValue("type"), r.PathValue("symbol"))
	if perf == nil {
		s.respondError(w, http.StatusNotFound, "no performance recorded for strategy")
		return
	}
	s.respondJSON(w, http.StatusOK, perf)
}

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.strategies.Risk())
}

func (s *Server) handleUpdateRisk(w http.ResponseWriter, r *http.Request) {
	var settings domain.RiskSettings
	if err := decodeJSON(r, &settings); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.strategies.UpdateRisk(settings)
	s.respondJSON(w, http.StatusOK, s.strategies.Risk())
}

func (s *Server) handleTradeSignal(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	price, ok := s.currentPrice(r, symbol)
	if !ok {
		s.respondError(w, http.StatusNotFound, "no market data for "+symbol)
		return
	}
	signal := s.strategies.Signal(r.Context(), symbol, price)
	if signal == nil {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"symbol": symbol, "signal": nil})
		return
	}
	s.respondJSON(w, http.StatusOK, signal)
}

func (s *Server) currentPrice(r *http.Request, symbol string) (float64, bool) {
	records, _ := s.market.TopMarkets(r.Context(), maxMarketLimit)
	for _, rec := range records {
		if strings.EqualFold(rec.Symbol, symbol) {
			return rec.CurrentPrice, true
		}
	}
	return 0, false
}

func (s *Server) handleTradeExecute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol     string  `json:"symbol"`
		Side       string  `json:"side"`
		Quantity   float64 `json:"quantity"`
		Simulation *bool   `json:"simulation"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	simulation := s.simulation
	if req.Simulation != nil {
		simulation = *req.Simulation
	}

	result, err := s.trader.Execute(r.Context(), req.Symbol, domain.Side(req.Side), req.Quantity, simulation)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveExchange) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy string               `json:"strategy"`
		CoinID   string               `json:"coin_id"`
		Symbol   string               `json:"symbol"`
		Days     int                  `json:"days"`
		Risk     *domain.RiskSettings `json:"risk"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Strategy == "" || req.CoinID == "" {
		s.respondError(w, http.StatusBadRequest, "strategy and coin_id are required")
		return
	}
	if req.Days <= 0 {
		req.Days = 30
	}
	if req.Symbol == "" {
		req.Symbol = strings.ToUpper(req.CoinID)
	}
	risk := s.strategies.Risk()
	if req.Risk != nil {
		risk = *req.Risk
	}

	result, err := s.backtester.Run(r.Context(), req.Strategy, req.CoinID, req.Symbol, req.Days, risk)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.portfolio.Snapshot(r.Context()))
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	trades, err := s.portfolio.Trades(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list trades", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	s.respondJSON(w, http.StatusOK, trades)
}

func (s *Server) handleExchangeConfig(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.creds.Statuses())
}

func (s *Server) handleSetExchangeConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exchange  string `json:"exchange"`
		APIKey    string `json:"api_key"`
		APISecret string `json:"api_secret"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.APIKey == "" || req.APISecret == "" {
		s.respondError(w, http.StatusBadRequest, "api_key and api_secret are required")
		return
	}
	if !s.creds.Set(req.Exchange, req.APIKey, req.APISecret) {
		s.respondError(w, http.StatusBadRequest, "unsupported exchange: "+req.Exchange)
		return
	}
	s.respondJSON(w, http.StatusOK, s.creds.Statuses())
}

func (s *Server) handleGetActiveExchange(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"active": s.creds.Active()})
}

func (s *Server) handleSetActiveExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exchange string `json:"exchange"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.creds.SetActive(req.Exchange) {
		s.respondError(w, http.StatusBadRequest, "exchange has no enabled credentials: "+req.Exchange)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"active": s.creds.Active()})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
