package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	c, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, EnvDevelopment, c.Env)
	assert.Equal(t, 30*time.Second, c.QueryCacheTTL)
	assert.Equal(t, 2*time.Second, c.RenderBudget)
	assert.Equal(t, "@hourly", c.ExpiryCron)
	assert.Equal(t, "@every 10m", c.CommRetryCron)
	assert.Equal(t, 500*time.Millisecond, c.SlowRequest)
	assert.False(t, c.IsProduction())
}

func TestFromLookup_Overrides(t *testing.T) {
	c, err := FromLookup(lookupFrom(map[string]string{
		"PRIMEFIT_ADDR":                  ":9000",
		"PRIMEFIT_RENDER_BUDGET":         "750ms",
		"PRIMEFIT_SLOW_QUERY_MS":         "25",
		"PRIMEFIT_RATE_LIMIT_PER_SECOND": "2.5",
		"PRIMEFIT_EXPIRY_CRON":           "*/5 * * * *",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, 750*time.Millisecond, c.RenderBudget)
	assert.Equal(t, 25*time.Millisecond, c.SlowQuery)
	assert.InDelta(t, 2.5, c.RateLimitPerSecond, 0.001)
	assert.Equal(t, "*/5 * * * *", c.ExpiryCron)
}

func TestFromLookup_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"PRIMEFIT_SESSION_TTL": "soon"}},
		{"bad int", map[string]string{"PRIMEFIT_SLOW_REQUEST_MS": "fast"}},
		{"bad cron", map[string]string{"PRIMEFIT_COMM_RETRY_CRON": "every tuesday"}},
		{"unknown env", map[string]string{"PRIMEFIT_ENV": "staging"}},
		{"zero rate", map[string]string{"PRIMEFIT_RATE_LIMIT_PER_SECOND": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestFromLookup_ProductionNeedsSecrets(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{"PRIMEFIT_ENV": EnvProduction}))
	assert.True(t, errors.Is(err, ErrMissingSecret))

	c, err := FromLookup(lookupFrom(map[string]string{
		"PRIMEFIT_ENV":               EnvProduction,
		"PRIMEFIT_CSRF_KEY":          "0123456789abcdef0123456789abcdef",
		"PRIMEFIT_QR_KEY":            "qr",
		"PRIMEFIT_IDENTITY_KEY_SEED": "seed",
	}))
	require.NoError(t, err)
	assert.True(t, c.IsProduction())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRIMEFIT_ADMIN_NAME=Coach\n"), 0o600))
	t.Setenv("PRIMEFIT_ADMIN_NAME", "")
	require.NoError(t, os.Unsetenv("PRIMEFIT_ADMIN_NAME"))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Coach", c.AdminName)
	require.NoError(t, os.Unsetenv("PRIMEFIT_ADMIN_NAME"))
}
