package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/crypto_dashboard/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			risk_level TEXT NOT NULL DEFAULT 'medium',
			watchlist TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			last_login DATETIME,
			is_active BOOLEAN NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			price REAL NOT NULL,
			quantity REAL NOT NULL,
			strategy TEXT,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_created_at ON trades(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Users ---

func (s *SQLiteStore) SaveUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, risk_level, watchlist, created_at, last_login, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.RiskLevel,
		strings.Join(u.Watchlist, ","), u.CreatedAt, u.LastLogin, u.IsActive)
	return err
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, risk_level = ?, watchlist = ?, last_login = ?, is_active = ?
		 WHERE id = ?`,
		u.Email, u.PasswordHash, u.RiskLevel, strings.Join(u.Watchlist, ","),
		u.LastLogin, u.IsActive, u.ID)
	return err
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var watchlist string
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.RiskLevel, &watchlist, &u.CreatedAt, &lastLogin, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if watchlist != "" {
		u.Watchlist = strings.Split(watchlist, ",")
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

const userColumns = `id, username, email, password_hash, risk_level, watchlist, created_at, last_login, is_active`

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// --- Trades ---

func (s *SQLiteStore) SaveTrade(ctx context.Context, t *domain.TradeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (id, symbol, side, price, quantity, strategy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Side), t.Price, t.Quantity, t.Strategy, t.CreatedAt)
	return err
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, side, price, quantity, strategy, created_at
		 FROM trades ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.TradeRecord
	for rows.Next() {
		var t domain.TradeRecord
		var side string
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.Symbol, &side, &t.Price, &t.Quantity, &t.Strategy, &createdAt); err != nil {
			return nil, err
		}
		t.Side = domain.Side(side)
		t.CreatedAt = createdAt
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}
