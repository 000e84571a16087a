package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/crypto_dashboard/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router     *http.ServeMux
	server     *http.Server
	market     *usecase.MarketService
	analysis   *usecase.AnalysisService
	strategies *usecase.StrategyManager
	trader     *usecase.TradeService
	backtester *usecase.Backtester
	auth       *usecase.AuthService
	portfolio  *usecase.PortfolioService
	creds      *usecase.CredentialStore
	simulation bool
	logger     *zap.Logger
}

func NewServer(
	port int,
	market *usecase.MarketService,
	analysis *usecase.AnalysisService,
	strategies *usecase.StrategyManager,
	trader *usecase.TradeService,
	backtester *usecase.Backtester,
	auth *usecase.AuthService,
	portfolio *usecase.PortfolioService,
	creds *usecase.CredentialStore,
	simulation bool,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:     http.NewServeMux(),
		market:     market,
		analysis:   analysis,
		strategies: strategies,
		trader:     trader,
		backtester: backtester,
		auth:       auth,
		portfolio:  portfolio,
		creds:      creds,
		simulation: simulation,
		logger:     logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Health
	s.router.HandleFunc("GET /health", s.handleHealth)

	// Auth
	s.router.HandleFunc("POST /auth/register", s.handleRegister)
	s.router.HandleFunc("POST /auth/login", s.handleLogin)
	s.router.HandleFunc("GET /auth/profile", s.requireAuth(s.handleProfile))
	s.router.HandleFunc("PUT /auth/update", s.requireAuth(s.handleUpdateProfile))
	s.router.HandleFunc("POST /auth/logout", s.requireAuth(s.handleLogout))

	// Market data
	s.router.HandleFunc("GET /api/markets", s.handleMarkets)
	s.router.HandleFunc("GET /api/historical/{id}", s.handleHistorical)
	s.router.HandleFunc("GET /api/coin/{id}", s.handleCoinDetail)
	s.router.HandleFunc("GET /api/prices", s.handlePrices)
	s.router.HandleFunc("GET /api/correlations/{id}", s.handleCorrelations)

	// Analysis
	s.router.HandleFunc("GET /api/market/analyze/{symbol}", s.handleAnalyzeMarket)
	s.router.HandleFunc("GET /api/market/technicals/{symbol}", s.handleTechnicals)

	// Strategies
	s.router.HandleFunc("GET /api/strategy/optimal", s.handleOptimalStrategy)
	s.router.HandleFunc("POST /api/strategy/activate", s.handleActivateStrategy)
	s.router.HandleFunc("POST /api/strategy/deactivate", s.handleDeactivateStrategy)
	s.router.HandleFunc("GET /api/strategy/performance/{type}/{symbol}", s.handleStrategyPerformance)
	s.router.HandleFunc("GET /api/strategy/risk", s.handleGetRisk)
	s.router.HandleFunc("POST /api/strategy/risk", s.handleUpdateRisk)

	// Trading
	s.router.HandleFunc("GET /api/trade/signal/{symbol}", s.handleTradeSignal)
	s.router.HandleFunc("POST /api/trade/execute", s.handleTradeExecute)
	s.router.HandleFunc("POST /api/backtest", s.handleBacktest)

	// Portfolio
	s.router.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	s.router.HandleFunc("GET /api/trades", s.handleTrades)

	// Exchange configuration
	s.router.HandleFunc("GET /api/exchange/config", s.handleExchangeConfig)
	s.router.HandleFunc("POST /api/exchange/config", s.handleSetExchangeConfig)
	s.router.HandleFunc("GET /api/exchange/active", s.handleGetActiveExchange)
	s.router.HandleFunc("POST /api/exchange/active", s.handleSetActiveExchange)

	// Live price stream
	s.router.HandleFunc("GET /api/ws/prices", s.handlePriceStream)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
