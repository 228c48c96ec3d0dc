// Package stripe creates and inspects Stripe Checkout sessions.
package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Status kinds
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Errors
var (
	ErrNoItems    = errors.New("checkout needs at least one item")
	ErrBadItem    = errors.New("checkout item needs a name, currency, positive price and quantity")
	ErrNoRedirect = errors.New("success and cancel URLs are required")
)

// Item is one line of a checkout.
type Item struct {
	ProductName        string `json:"productName" validate:"required"`
	ProductDescription string `json:"productDescription"`
	Currency           string `json:"currency" validate:"required,len=3"`
	PriceInCents       int64  `json:"priceInCents,string" validate:"gt=0"`
	Quantity           int64  `json:"quantity,string" validate:"gt=0"`
}

// SessionStatus reports a checkout session lookup.
// Completed means Stripe answered; Response carries the session state as JSON.
type SessionStatus struct {
	Kind     string `json:"kind"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// sessions is the part of the Stripe client this package calls.
type sessions interface {
	New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
	Get(id string, params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
}

// Gateway talks to Stripe with a per-call secret key.
type Gateway struct {
	newSessions func(secretKey string) sessions
}

// NewGateway creates a gateway backed by the Stripe API.
func NewGateway() *Gateway {
	return &Gateway{newSessions: func(key string) sessions {
		api := &client.API{}
		api.Init(key, nil)
		return api.CheckoutSessions
	}}
}

// CreateCheckoutSession starts a payment-mode checkout and returns its URL
// as JSON {"id","url"}.
// PRE: secretKey is configured; items are non-empty
// POST: Returns the session id and redirect URL
func (g *Gateway) CreateCheckoutSession(secretKey string, allowedCountries []string, items []Item, successURL, cancelURL string) (string, string, error) {
	if len(items) == 0 {
		return "", "", ErrNoItems
	}
	if successURL == "" || cancelURL == "" {
		return "", "", ErrNoRedirect
	}
	params := &stripego.CheckoutSessionParams{
		Mode:       stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL: stripego.String(successURL),
		CancelURL:  stripego.String(cancelURL),
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductName) == "" || it.Currency == "" || it.PriceInCents <= 0 || it.Quantity <= 0 {
			return "", "", fmt.Errorf("%q: %w", it.ProductName, ErrBadItem)
		}
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripego.String(it.ProductName)}
		if it.ProductDescription != "" {
			product.Description = stripego.String(it.ProductDescription)
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(strings.ToLower(it.Currency)),
				ProductData: product,
				UnitAmount:  stripego.Int64(it.PriceInCents),
			},
			Quantity: stripego.Int64(it.Quantity),
		})
	}
	if len(allowedCountries) > 0 {
		params.ShippingAddressCollection = &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(allowedCountries),
		}
	}

	s, err := g.newSessions(secretKey).New(params)
	if err != nil {
		slog.Error("stripe_checkout_failed", "error", err, "items", len(items))
		return "", "", fmt.Errorf("stripe checkout: %w", err)
	}
	slog.Info("stripe_checkout_created", "session_id", s.ID, "items", len(items))
	return s.ID, s.URL, nil
}

// SessionStatus looks a checkout session up.
// POST: Stripe errors are reported as a failed status, not an error
func (g *Gateway) SessionStatus(secretKey, sessionID string) SessionStatus {
	s, err := g.newSessions(secretKey).Get(sessionID, nil)
	if err != nil {
		slog.Warn("stripe_session_lookup_failed", "session_id", sessionID, "error", err)
		return SessionStatus{Kind: StatusFailed, Error: err.Error()}
	}
	body, err := json.Marshal(map[string]string{
		"id":             s.ID,
		"status":         string(s.Status),
		"payment_status": string(s.PaymentStatus),
	})
	if err != nil {
		return SessionStatus{Kind: StatusFailed, Error: err.Error()}
	}
	return SessionStatus{Kind: StatusCompleted, Response: string(body)}
}
