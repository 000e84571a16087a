package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/exchange"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/logger"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/marketdata"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/secret"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/storage"
	"github.com/vitos/crypto_dashboard/internal/usecase"
	"github.com/vitos/crypto_dashboard/internal/web"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Market struct {
		ProviderURL string `yaml:"provider_url"`
		Analyzer    string `yaml:"analyzer"`
	} `yaml:"market"`
	Auth struct {
		Secret string `yaml:"secret"`
	} `yaml:"auth"`
	Trading struct {
		Simulation bool `yaml:"simulation"`
	} `yaml:"trading"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 1. Load Config
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "dashboard.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Credential store
	cipher, err := secret.FromEnv(log)
	if err != nil {
		log.Fatal("Failed to init credential cipher", zap.Error(err))
	}
	creds := usecase.NewCredentialStore(cipher, log)
	creds.LoadFromEnv()

	// 5. Market data + analysis
	providerURL := cfg.Market.ProviderURL
	if providerURL == "" {
		providerURL = marketdata.DefaultBaseURL
	}
	provider := marketdata.NewCoinGeckoClient(providerURL)

	var analyzer domain.MarketAnalyzer
	switch cfg.Market.Analyzer {
	case "pearson":
		analyzer = usecase.NewPearsonAnalyzer(provider, log)
	default:
		analyzer = usecase.NewRandomAnalyzer(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	marketService := usecase.NewMarketService(provider, analyzer, log)
	analysisService := usecase.NewAnalysisService(marketService, log)

	// 6. Trading
	trader := usecase.NewTradeService(creds, exchange.NewClients(log), log)
	strategies := usecase.NewStrategyManager(analysisService, trader, store, log)
	backtester := usecase.NewBacktester(marketService, log)
	portfolio := usecase.NewPortfolioService(store, log)

	// 7. Auth
	authSecret := cfg.Auth.Secret
	if env := os.Getenv("AUTH_SECRET"); env != "" {
		authSecret = env
	}
	if authSecret == "" {
		authSecret = "dev-secret-change-me"
		log.Warn("No auth secret configured, using development default")
	}
	authService := usecase.NewAuthService(store, authSecret, log)

	// 8. Web Server
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	server := web.NewServer(
		port,
		marketService,
		analysisService,
		strategies,
		trader,
		backtester,
		authService,
		portfolio,
		creds,
		cfg.Trading.Simulation,
		log,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	// 9. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
