package expense_test

import (
	"testing"

	"primefit/internal/domain/expense"
)

// TestExpenseValidation tests validation of Expense.
func TestExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		e       expense.Expense
		wantErr error
	}{
		{"valid", expense.Expense{Type: expense.TypeRent, Description: "March rent", Amount: 1200}, nil},
		{"bad type", expense.Expense{Type: "salary", Description: "x", Amount: 1}, expense.ErrInvalidType},
		{"zero amount", expense.Expense{Type: expense.TypeOther, Description: "x"}, expense.ErrInvalidAmount},
		{"blank description", expense.Expense{Type: expense.TypeOther, Description: "  ", Amount: 1}, expense.ErrDescriptionSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
