package usecase

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vitos/crypto_dashboard/internal/domain"
	"github.com/vitos/crypto_dashboard/internal/infrastructure/secret"
	"go.uber.org/zap"
)

// CredentialStore holds per-exchange API credentials, encrypted at rest in
// process memory. At most one exchange is active at a time. Nothing is
// persisted across restarts; the only bootstrap is environment variables.
type CredentialStore struct {
	mu     sync.Mutex
	cipher *secret.Cipher
	creds  map[string]*domain.ExchangeCredential
	active string
	logger *zap.Logger
}

func NewCredentialStore(cipher *secret.Cipher, logger *zap.Logger) *CredentialStore {
	creds := make(map[string]*domain.ExchangeCredential, len(domain.SupportedExchanges))
	for _, name := range domain.SupportedExchanges {
		creds[name] = &domain.ExchangeCredential{Exchange: name}
	}
	return &CredentialStore{
		cipher: cipher,
		creds:  creds,
		logger: logger,
	}
}

// LoadFromEnv seeds credentials from <EXCHANGE>_API_KEY / <EXCHANGE>_API_SECRET.
// Called once at startup.
func (s *CredentialStore) LoadFromEnv() {
	for _, name := range domain.SupportedExchanges {
		prefix := strings.ToUpper(name)
		key := os.Getenv(prefix + "_API_KEY")
		apiSecret := os.Getenv(prefix + "_API_SECRET")
		if key != "" && apiSecret != "" {
			s.Set(name, key, apiSecret)
		}
	}
}

// Set encrypts and stores credentials for an exchange, overwriting any prior
// entry. Unknown exchange names are rejected and logged, never fatal. If no
// exchange is active yet, this one is promoted.
func (s *CredentialStore) Set(exchange, apiKey, apiSecret string) bool {
	if !domain.IsSupportedExchange(exchange) {
		s.logger.Error("exchange not supported", zap.String("exchange", exchange))
		return false
	}

	encKey, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		s.logger.Error("failed to encrypt api key", zap.String("exchange", exchange), zap.Error(err))
		return false
	}
	encSecret, err := s.cipher.Encrypt(apiSecret)
	if err != nil {
		s.logger.Error("failed to encrypt api secret", zap.String("exchange", exchange), zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[exchange] = &domain.ExchangeCredential{
		Exchange:  exchange,
		APIKey:    encKey,
		APISecret: encSecret,
		Enabled:   true,
	}
	if s.active == "" {
		s.active = exchange
	}
	return true
}

// Get returns decrypted credentials, or ok=false when the exchange has no
// enabled entry.
func (s *CredentialStore) Get(exchange string) (apiKey, apiSecret string, ok bool) {
	s.mu.Lock()
	cred, exists := s.creds[exchange]
	if !exists || !cred.Enabled || cred.APIKey == "" || cred.APISecret == "" {
		s.mu.Unlock()
		return "", "", false
	}
	encKey, encSecret := cred.APIKey, cred.APISecret
	s.mu.Unlock()

	key, err := s.cipher.Decrypt(encKey)
	if err != nil {
		s.logger.Error("failed to decrypt api key", zap.String("exchange", exchange), zap.Error(err))
		return "", "", false
	}
	sec, err := s.cipher.Decrypt(encSecret)
	if err != nil {
		s.logger.Error("failed to decrypt api secret", zap.String("exchange", exchange), zap.Error(err))
		return "", "", false
	}
	return key, sec, true
}

// SetActive designates the exchange used for live trading. Fails unless the
// exchange has an enabled credential.
func (s *CredentialStore) SetActive(exchange string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, exists := s.creds[exchange]
	if !exists || !cred.Enabled {
		s.logger.Error("exchange not configured", zap.String("exchange", exchange))
		return false
	}
	s.active = exchange
	return true
}

// Active returns the currently active exchange name, or "".
func (s *CredentialStore) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveCredentials returns decrypted credentials for the active exchange.
func (s *CredentialStore) ActiveCredentials() (exchange, apiKey, apiSecret string, err error) {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active == "" {
		return "", "", "", domain.ErrNoActiveExchange
	}
	key, sec, ok := s.Get(active)
	if !ok {
		return "", "", "", fmt.Errorf("%w: %s has no enabled credentials", domain.ErrNoActiveExchange, active)
	}
	return active, key, sec, nil
}

// ExchangeStatus is the secret-free view served over the config endpoint.
type ExchangeStatus struct {
	Exchange   string `json:"exchange"`
	Configured bool   `json:"configured"`
	Active     bool   `json:"active"`
}

// Statuses lists every supported exchange without exposing key material.
func (s *CredentialStore) Statuses() []ExchangeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]ExchangeStatus, 0, len(domain.SupportedExchanges))
	for _, name := range domain.SupportedExchanges {
		cred := s.creds[name]
		statuses = append(statuses, ExchangeStatus{
			Exchange:   name,
			Configured: cred != nil && cred.Enabled,
			Active:     name == s.active,
		})
	}
	return statuses
}
