package projections

import (
	"context"

	"primefit/internal/domain/account"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/payment"
)

// PaymentsDeps holds dependencies for payment and expense queries.
type PaymentsDeps struct {
	PaymentStore PaymentStore
	ExpenseStore ExpenseStore
}

// QueryAllPayments lists every payment, newest first.
// PRE: caller is an admin
func QueryAllPayments(ctx context.Context, caller account.Caller, deps PaymentsDeps) ([]payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.PaymentStore.List(ctx)
}

// QueryPayment returns one payment.
// PRE: caller is an admin
func QueryPayment(ctx context.Context, caller account.Caller, id string, deps PaymentsDeps) (payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return payment.Payment{}, err
	}
	return deps.PaymentStore.GetByID(ctx, id)
}

// QueryMemberPayments lists one member's payments, newest first.
// PRE: caller is an admin or is the member
func QueryMemberPayments(ctx context.Context, caller account.Caller, memberID int64, deps PaymentsDeps) ([]payment.Payment, error) {
	if err := RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return deps.PaymentStore.ListByMemberID(ctx, memberID)
}

// QueryAllExpenses lists every expense, newest first.
// PRE: caller is an admin
func QueryAllExpenses(ctx context.Context, caller account.Caller, deps PaymentsDeps) ([]expense.Expense, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.ExpenseStore.List(ctx)
}

// requireOwner allows admins and the member who owns the data.
func RequireOwner(caller account.Caller, memberID int64) error {
	if !caller.IsAuthenticated() {
		return account.ErrUnauthenticated
	}
	if !caller.CanActOn(memberID) {
		return account.ErrForbidden
	}
	return nil
}
