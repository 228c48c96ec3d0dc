package payment_test

import (
	"testing"

	"primefit/internal/domain/payment"
)

// TestPaymentValidation tests validation of Payment.
func TestPaymentValidation(t *testing.T) {
	tests := []struct {
		name    string
		p       payment.Payment
		wantErr error
	}{
		{"valid", payment.Payment{MemberID: 1, Amount: 50, Status: payment.StatusPaid}, nil},
		{"no member", payment.Payment{Amount: 50, Status: payment.StatusPaid}, payment.ErrNoMember},
		{"zero amount", payment.Payment{MemberID: 1, Status: payment.StatusPaid}, payment.ErrInvalidAmount},
		{"bad status", payment.Payment{MemberID: 1, Amount: 5, Status: "refunded"}, payment.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
