package projections

import (
	"context"
	"errors"

	"primefit/internal/adapters/storage"
)

// StripeDeps holds dependencies for payment provider queries.
type StripeDeps struct {
	ConfigStore StripeConfigStore
}

// QueryIsStripeConfigured reports whether a secret key has been saved.
// PRE: none
func QueryIsStripeConfigured(ctx context.Context, deps StripeDeps) (bool, error) {
	cfg, err := deps.ConfigStore.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return cfg.SecretKey != "", nil
}
