package stripe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v76"
)

type fakeSessions struct {
	key    string
	params *stripego.CheckoutSessionParams
	err    error
}

func (f *fakeSessions) New(p *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripego.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, nil
}

func (f *fakeSessions) Get(id string, _ *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripego.CheckoutSession{ID: id, Status: stripego.CheckoutSessionStatusComplete, PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid}, nil
}

func newFakeGateway(f *fakeSessions) *Gateway {
	return &Gateway{newSessions: func(key string) sessions {
		f.key = key
		return f
	}}
}

func TestCreateCheckoutSession(t *testing.T) {
	f := &fakeSessions{}
	g := newFakeGateway(f)

	id, url, err := g.CreateCheckoutSession("sk_test", []string{"NZ"}, []Item{
		{ProductName: "Gold plan", Currency: "NZD", PriceInCents: 4999, Quantity: 1},
	}, "https://gym/ok", "https://gym/cancel")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", id)
	assert.Contains(t, url, "cs_1")
	assert.Equal(t, "sk_test", f.key)

	require.Len(t, f.params.LineItems, 1)
	li := f.params.LineItems[0]
	assert.Equal(t, "nzd", *li.PriceData.Currency)
	assert.Equal(t, int64(4999), *li.PriceData.UnitAmount)
	assert.Nil(t, li.PriceData.ProductData.Description)
	assert.Equal(t, []*string{stripego.String("NZ")}, f.params.ShippingAddressCollection.AllowedCountries)
}

func TestCreateCheckoutSession_Invalid(t *testing.T) {
	g := newFakeGateway(&fakeSessions{})
	item := Item{ProductName: "x", Currency: "usd", PriceInCents: 1, Quantity: 1}

	_, _, err := g.CreateCheckoutSession("k", nil, nil, "a", "b")
	assert.ErrorIs(t, err, ErrNoItems)
	_, _, err = g.CreateCheckoutSession("k", nil, []Item{item}, "", "b")
	assert.ErrorIs(t, err, ErrNoRedirect)
	_, _, err = g.CreateCheckoutSession("k", nil, []Item{{ProductName: "x", Currency: "usd"}}, "a", "b")
	assert.ErrorIs(t, err, ErrBadItem)

	failing := newFakeGateway(&fakeSessions{err: errors.New("card network down")})
	_, _, err = failing.CreateCheckoutSession("k", nil, []Item{item}, "a", "b")
	assert.Error(t, err)
}

func TestSessionStatus(t *testing.T) {
	ok := newFakeGateway(&fakeSessions{}).SessionStatus("k", "cs_9")
	assert.Equal(t, StatusCompleted, ok.Kind)
	assert.JSONEq(t, `{"id":"cs_9","status":"complete","payment_status":"paid"}`, ok.Response)

	bad := newFakeGateway(&fakeSessions{err: errors.New("no such session")}).SessionStatus("k", "cs_x")
	assert.Equal(t, StatusFailed, bad.Kind)
	assert.Equal(t, "no such session", bad.Error)
}
