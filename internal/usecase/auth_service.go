package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vitos/crypto_dashboard/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles registration, login and bearer token verification.
// Tokens are HS256 signed and expire after 24 hours.
type AuthService struct {
	users   domain.UserRepository
	secret  []byte
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewAuthService(users domain.UserRepository, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		secret:  []byte(secret),
		logger:  logger,
		timeNow: time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || len(password) < 6 {
		return nil, fmt.Errorf("username, email and a password of at least 6 characters are required")
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		RiskLevel:    "medium",
		Watchlist:    []string{"bitcoin", "ethereum"},
		CreatedAt:    s.timeNow(),
		IsActive:     true,
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.timeNow()
	user.LastLogin = &now
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", zap.String("username", username), zap.Error(err))
	}

	token, err := s.issueToken(user.ID, now)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("user logged in", zap.String("username", username))
	return token, user, nil
}

func (s *AuthService) issueToken(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the user ID it carries.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.timeNow))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile changes the mutable profile fields. Empty arguments leave
// the current value in place.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, riskLevel string, watchlist []string) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if riskLevel != "" {
		user.RiskLevel = riskLevel
	}
	if watchlist != nil {
		user.Watchlist = watchlist
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
