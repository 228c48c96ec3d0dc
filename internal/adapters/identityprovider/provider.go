// Package identityprovider issues and verifies principal delegation tokens.
// A delegation is an EdDSA-signed JWT whose subject is the principal text.
package identityprovider

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"primefit/internal/domain/principal"
)

// CookieName carries the delegation token.
const CookieName = "primefit_identity"

// DefaultTTL is how long a delegation stays valid.
const DefaultTTL = 8 * time.Hour

const issuer = "primefit-identity"

// Errors
var (
	ErrInvalidToken = errors.New("invalid delegation token")
	ErrEmptyAnchor  = errors.New("anchor name cannot be empty")
)

// Signer mints and verifies delegations with one Ed25519 key pair.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	ttl  time.Duration
	now  func() time.Time
}

// NewSigner derives the signing key from seed. An empty seed generates an
// ephemeral key, so tokens do not survive a restart.
// PRE: ttl > 0 or zero for DefaultTTL
// POST: Returns a ready signer
func NewSigner(seed string, ttl time.Duration) (*Signer, error) {
	var priv ed25519.PrivateKey
	if seed == "" {
		_, k, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, fmt.Errorf("generate ed25519: %w", err)
		}
		priv = k
	} else {
		sum := sha256.Sum256([]byte(seed))
		priv = ed25519.NewKeyFromSeed(sum[:])
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey), ttl: ttl, now: time.Now}, nil
}

type delegationClaims struct {
	Anchor string `json:"anchor,omitempty"`
	jwt.RegisteredClaims
}

// Mint issues a delegation for p.
// PRE: p is not anonymous
// POST: Returns the token and its expiry
func (s *Signer) Mint(p principal.Principal, anchor string) (string, time.Time, error) {
	if p.IsAnonymous() {
		return "", time.Time{}, fmt.Errorf("mint for anonymous principal: %w", ErrInvalidToken)
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := delegationClaims{
		Anchor: anchor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.priv)
	return token, exp, err
}

// Verify checks the signature and expiry and returns the delegated principal.
// POST: Errors wrap ErrInvalidToken
func (s *Signer) Verify(token string) (principal.Principal, error) {
	var claims delegationClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return principal.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	p, err := principal.FromText(claims.Subject)
	if err != nil || p.IsAnonymous() {
		return principal.Principal{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return p, nil
}

// AnchorPrincipal returns the stable principal for a named anchor: the
// self-authenticating principal of an Ed25519 key derived from the signer
// key and the anchor name.
// PRE: anchor is non-empty
func (s *Signer) AnchorPrincipal(anchor string) (principal.Principal, error) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return principal.Principal{}, ErrEmptyAnchor
	}
	sum := sha256.Sum256(append(s.priv.Seed(), []byte("anchor:"+anchor)...))
	pub := ed25519.NewKeyFromSeed(sum[:]).Public()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return principal.Principal{}, err
	}
	return principal.SelfAuthenticating(der), nil
}

// MintForAnchor is the development login: it resolves the anchor principal
// and mints a delegation for it.
func (s *Signer) MintForAnchor(anchor string) (principal.Principal, string, time.Time, error) {
	p, err := s.AnchorPrincipal(anchor)
	if err != nil {
		return principal.Principal{}, "", time.Time{}, err
	}
	token, exp, err := s.Mint(p, strings.TrimSpace(anchor))
	return p, token, exp, err
}
