package stripeconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"primefit/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite. There is at most one row.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Stripe configuration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the configuration.
// PRE: none
// POST: Returns the configuration or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context) (Config, error) {
	var c Config
	var countries string
	err := s.db.QueryRowContext(ctx, "SELECT secret_key, allowed_countries FROM stripe_config WHERE id = 1").Scan(&c.SecretKey, &countries)
	if err == sql.ErrNoRows {
		return Config{}, fmt.Errorf("stripe configuration: %w", storage.ErrNotFound)
	}
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal([]byte(countries), &c.AllowedCountries); err != nil {
		return Config{}, fmt.Errorf("stripe allowed_countries: %w", err)
	}
	return c, nil
}

// Save replaces the configuration.
// PRE: value.SecretKey is non-empty
// POST: Configuration is persisted
func (s *SQLiteStore) Save(ctx context.Context, c Config) error {
	if c.AllowedCountries == nil {
		c.AllowedCountries = []string{}
	}
	countries, err := json.Marshal(c.AllowedCountries)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO stripe_config (id, secret_key, allowed_countries) VALUES (1, ?, ?) ON CONFLICT(id) DO UPDATE SET secret_key=excluded.secret_key, allowed_countries=excluded.allowed_countries",
		c.SecretKey, string(countries),
	)
	return err
}
