package payment

import (
	"errors"
	"time"
)

// Payment status constants
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// Domain errors
var (
	ErrNoMember      = errors.New("payment must be associated with a member")
	ErrInvalidAmount = errors.New("payment amount must be positive")
	ErrInvalidStatus = errors.New("status must be 'pending', 'paid', or 'failed'")
)

// Payment is money received (or expected) from a member.
type Payment struct {
	ID        string    `json:"id"`
	MemberID  int64     `json:"memberId,string"`
	Amount    int64     `json:"amount,string"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if p.MemberID <= 0 {
		return ErrNoMember
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsPaid reports whether the payment has settled.
func (p *Payment) IsPaid() bool {
	return p.Status == StatusPaid
}

// IsValidStatus reports whether s is a known payment status.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusPaid || s == StatusFailed
}
