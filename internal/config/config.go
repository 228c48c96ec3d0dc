// Package config reads PRIMEFIT_* settings from the environment, loading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the server configuration.
type Config struct {
	Addr               string
	Env                string
	DBPath             string
	CSRFKey            string
	RedisURL           string // empty selects in-memory sessions
	SessionTTL         time.Duration
	QueryCacheTTL      time.Duration
	RenderBudget       time.Duration
	AdminName          string
	ResendKey          string // empty selects the logging sender
	ResendFrom         string
	QRKey              string
	IdentityKeySeed    string
	ExpiryCron         string
	CommRetryCron      string
	RateLimitPerSecond float64
	SlowRequest        time.Duration
	SlowQuery          time.Duration
}

// ErrMissingSecret is returned in production when a signing secret is unset.
var ErrMissingSecret = errors.New("secret must be set in production")

// IsProduction reports whether the server runs in production.
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads a .env file if present and then the environment.
// POST: Returned config is validated
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a config from a lookup function such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	r := reader{lookup: lookup}
	c := Config{
		Addr:               r.str("ADDR", ":8080"),
		Env:                r.str("ENV", EnvDevelopment),
		DBPath:             r.str("DB_PATH", "primefit.db"),
		CSRFKey:            r.str("CSRF_KEY", ""),
		RedisURL:           r.str("REDIS_URL", ""),
		SessionTTL:         r.duration("SESSION_TTL", 24*time.Hour),
		QueryCacheTTL:      r.duration("QUERY_CACHE_TTL", 30*time.Second),
		RenderBudget:       r.duration("RENDER_BUDGET", 2*time.Second),
		AdminName:          r.str("ADMIN_NAME", "Prime Fit Admin"),
		ResendKey:          r.str("RESEND_KEY", ""),
		ResendFrom:         r.str("RESEND_FROM", "Prime Fit <noreply@primefit.app>"),
		QRKey:              r.str("QR_KEY", ""),
		IdentityKeySeed:    r.str("IDENTITY_KEY_SEED", ""),
		ExpiryCron:         r.str("EXPIRY_CRON", "@hourly"),
		CommRetryCron:      r.str("COMM_RETRY_CRON", "@every 10m"),
		RateLimitPerSecond: r.float("RATE_LIMIT_PER_SECOND", 10),
		SlowRequest:        time.Duration(r.int("SLOW_REQUEST_MS", 500)) * time.Millisecond,
		SlowQuery:          time.Duration(r.int("SLOW_QUERY_MS", 100)) * time.Millisecond,
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return c, c.Validate()
}

// Validate checks cron specs and production secrets.
func (c Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("PRIMEFIT_ENV: unknown environment %q", c.Env)
	}
	for key, spec := range map[string]string{"PRIMEFIT_EXPIRY_CRON": c.ExpiryCron, "PRIMEFIT_COMM_RETRY_CRON": c.CommRetryCron} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("PRIMEFIT_RATE_LIMIT_PER_SECOND must be positive")
	}
	if c.IsProduction() {
		for key, v := range map[string]string{"PRIMEFIT_CSRF_KEY": c.CSRFKey, "PRIMEFIT_QR_KEY": c.QRKey, "PRIMEFIT_IDENTITY_KEY_SEED": c.IdentityKeySeed} {
			if v == "" {
				return fmt.Errorf("%s: %w", key, ErrMissingSecret)
			}
		}
		if len(c.CSRFKey) != 32 {
			return fmt.Errorf("PRIMEFIT_CSRF_KEY must be 32 bytes")
		}
	}
	return nil
}

// reader records the first parse error.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup("PRIMEFIT_" + key)
	return v, ok && v != ""
}

func (r *reader) str(key, fallback string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return fallback
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("PRIMEFIT_%s: %w", key, err)
	}
	return d
}

func (r *reader) int(key string, fallback int) int {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("PRIMEFIT_%s: %w", key, err)
	}
	return n
}

func (r *reader) float(key string, fallback float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("PRIMEFIT_%s: %w", key, err)
	}
	return f
}
