package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"primefit/internal/adapters/storage"
	"primefit/internal/adapters/storage/stripeconfig"
	stripeAdapter "primefit/internal/adapters/stripe"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
)

// ErrStripeNotConfigured is returned by checkout operations before an admin
// has saved a secret key.
var ErrStripeNotConfigured = errors.New("stripe is not configured")

// StripeConfigStore persists the Stripe configuration.
type StripeConfigStore interface {
	Get(ctx context.Context) (stripeconfig.Config, error)
	Save(ctx context.Context, c stripeconfig.Config) error
}

// CheckoutGateway creates and inspects checkout sessions.
type CheckoutGateway interface {
	CreateCheckoutSession(secretKey string, allowedCountries []string, items []stripeAdapter.Item, successURL, cancelURL string) (string, string, error)
	SessionStatus(secretKey, sessionID string) stripeAdapter.SessionStatus
}

// StripeDeps holds dependencies for Stripe payments.
type StripeDeps struct {
	ConfigStore StripeConfigStore
	Gateway     CheckoutGateway
}

// SetStripeConfigurationInput carries the Stripe account settings.
type SetStripeConfigurationInput struct {
	SecretKey        string   `json:"secretKey" validate:"required,startswith=sk_"`
	AllowedCountries []string `json:"allowedCountries" validate:"dive,len=2"`
}

// ExecuteSetStripeConfiguration stores the Stripe secret key and shipping countries.
// PRE: caller is an admin
// POST: Configuration persisted; country codes upper-cased
func ExecuteSetStripeConfiguration(ctx context.Context, caller account.Caller, input SetStripeConfigurationInput, deps StripeDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := validation.Struct(input); err != nil {
		return err
	}
	countries := make([]string, 0, len(input.AllowedCountries))
	for _, c := range input.AllowedCountries {
		countries = append(countries, strings.ToUpper(c))
	}
	if err := deps.ConfigStore.Save(ctx, stripeconfig.Config{SecretKey: input.SecretKey, AllowedCountries: countries}); err != nil {
		return err
	}
	slog.Info("stripe_event", "event", "configured", "countries", len(countries))
	return nil
}

// CheckoutInput carries the items to pay for and where Stripe sends the buyer back.
type CheckoutInput struct {
	Items      []stripeAdapter.Item `json:"items" validate:"required,min=1,dive"`
	SuccessURL string               `json:"successUrl" validate:"required,url"`
	CancelURL  string               `json:"cancelUrl" validate:"required,url"`
}

// CheckoutSession identifies a created checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ExecuteCreateCheckoutSession starts a Stripe checkout.
// PRE: caller is authenticated; Stripe is configured
// POST: Returns the session to redirect the buyer to
func ExecuteCreateCheckoutSession(ctx context.Context, caller account.Caller, input CheckoutInput, deps StripeDeps) (CheckoutSession, error) {
	if !caller.IsAuthenticated() {
		return CheckoutSession{}, account.ErrUnauthenticated
	}
	if err := validation.Struct(input); err != nil {
		return CheckoutSession{}, err
	}
	cfg, err := loadStripeConfig(ctx, deps)
	if err != nil {
		return CheckoutSession{}, err
	}
	id, url, err := deps.Gateway.CreateCheckoutSession(cfg.SecretKey, cfg.AllowedCountries, input.Items, input.SuccessURL, input.CancelURL)
	if err != nil {
		return CheckoutSession{}, err
	}
	return CheckoutSession{ID: id, URL: url}, nil
}

// ExecuteGetStripeSessionStatus reports a checkout session's state.
// PRE: caller is authenticated; Stripe is configured
func ExecuteGetStripeSessionStatus(ctx context.Context, caller account.Caller, sessionID string, deps StripeDeps) (stripeAdapter.SessionStatus, error) {
	if !caller.IsAuthenticated() {
		return stripeAdapter.SessionStatus{}, account.ErrUnauthenticated
	}
	if strings.TrimSpace(sessionID) == "" {
		return stripeAdapter.SessionStatus{}, validation.Invalid(errors.New("session id is required"))
	}
	cfg, err := loadStripeConfig(ctx, deps)
	if err != nil {
		return stripeAdapter.SessionStatus{}, err
	}
	return deps.Gateway.SessionStatus(cfg.SecretKey, sessionID), nil
}

func loadStripeConfig(ctx context.Context, deps StripeDeps) (stripeconfig.Config, error) {
	cfg, err := deps.ConfigStore.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return stripeconfig.Config{}, ErrStripeNotConfigured
	}
	if err != nil {
		return stripeconfig.Config{}, fmt.Errorf("stripe configuration: %w", err)
	}
	return cfg, nil
}
