// Package qrcode issues member check-in codes and renders them as PNG.
// A code is an HS256 JWT naming the member id.
package qrcode

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultTTL is how long a generated code scans successfully.
const DefaultTTL = 365 * 24 * time.Hour

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

const audience = "primefit-checkin"

// ErrInvalidCode is returned for codes that do not verify.
var ErrInvalidCode = errors.New("invalid QR code")

// Issuer signs and validates check-in codes.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an issuer with an HMAC key.
// PRE: key is non-empty
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, now: time.Now}
}

// Generate returns a signed code for memberID.
// PRE: memberID > 0
func (q *Issuer) Generate(memberID int64) (string, error) {
	if memberID <= 0 {
		return "", fmt.Errorf("member id %d: %w", memberID, ErrInvalidCode)
	}
	now := q.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(memberID, 10),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(q.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(q.key)
}

// Validate returns the member id a code was issued for.
// POST: Errors wrap ErrInvalidCode
func (q *Issuer) Validate(code string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(code, &claims, func(*jwt.Token) (any, error) {
		return q.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(q.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidCode, claims.Subject)
	}
	return id, nil
}

// PNG renders code as a QR image.
// PRE: size > 0
func PNG(code string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return goqrcode.Encode(code, goqrcode.Medium, size)
}
