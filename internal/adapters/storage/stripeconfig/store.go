package stripeconfig

import "context"

// Config is the Stripe account the gym takes payments with.
type Config struct {
	SecretKey        string   `json:"secretKey"`
	AllowedCountries []string `json:"allowedCountries"`
}

// Store persists the single Stripe configuration.
type Store interface {
	Get(ctx context.Context) (Config, error)
	Save(ctx context.Context, value Config) error
}
