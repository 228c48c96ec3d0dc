package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/member"
	"primefit/internal/domain/payment"
)

// PaymentDeps holds dependencies for payment bookkeeping.
type PaymentDeps struct {
	PaymentStore PaymentStore
	MemberStore  MemberStore
	Clock        Clock
}

// AddPaymentInput carries a payment against a known member.
type AddPaymentInput struct {
	MemberID int64  `json:"memberId,string" validate:"gt=0"`
	Amount   int64  `json:"amount,string" validate:"gt=0"`
	Status   string `json:"status" validate:"paymentstatus"`
}

// AddPaymentByIdentifierInput names the member by email or phone.
type AddPaymentByIdentifierInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Amount     int64  `json:"amount,string" validate:"gt=0"`
	Status     string `json:"status" validate:"paymentstatus"`
}

// ExecuteAddPayment records a payment.
// PRE: caller is an admin; member exists
// POST: Payment persisted with a fresh id and the current time
func ExecuteAddPayment(ctx context.Context, caller account.Caller, input AddPaymentInput, deps PaymentDeps) (payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return payment.Payment{}, err
	}
	if err := validation.Struct(input); err != nil {
		return payment.Payment{}, err
	}
	if _, err := deps.MemberStore.GetByID(ctx, input.MemberID); err != nil {
		return payment.Payment{}, err
	}
	return savePayment(ctx, payment.Payment{
		ID:        uuid.New().String(),
		MemberID:  input.MemberID,
		Amount:    input.Amount,
		Status:    input.Status,
		Timestamp: deps.Clock.now(),
	}, deps, "payment_added")
}

// ExecuteAddPaymentByIdentifier records a payment for the member whose email
// (identifier contains '@') or phone matches.
// PRE: caller is an admin
// POST: Payment persisted
func ExecuteAddPaymentByIdentifier(ctx context.Context, caller account.Caller, input AddPaymentByIdentifierInput, deps PaymentDeps) (payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return payment.Payment{}, err
	}
	if err := validation.Struct(input); err != nil {
		return payment.Payment{}, err
	}
	id := strings.TrimSpace(input.Identifier)
	var m member.Member
	var err error
	if strings.Contains(id, "@") {
		m, err = deps.MemberStore.GetByEmail(ctx, id)
	} else {
		m, err = deps.MemberStore.GetByPhone(ctx, id)
	}
	if err != nil {
		return payment.Payment{}, fmt.Errorf("member %q: %w", id, err)
	}
	return ExecuteAddPayment(ctx, caller, AddPaymentInput{MemberID: m.ID, Amount: input.Amount, Status: input.Status}, deps)
}

// ExecuteUpdatePayment replaces a payment's amount and status.
// PRE: caller is an admin; payment exists
// POST: Payment persisted; member and timestamp unchanged
func ExecuteUpdatePayment(ctx context.Context, caller account.Caller, p payment.Payment, deps PaymentDeps) (payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return payment.Payment{}, err
	}
	existing, err := deps.PaymentStore.GetByID(ctx, p.ID)
	if err != nil {
		return payment.Payment{}, err
	}
	existing.Amount = p.Amount
	existing.Status = p.Status
	return savePayment(ctx, existing, deps, "payment_updated")
}

// ExecuteDeletePayment removes a payment.
// PRE: caller is an admin
func ExecuteDeletePayment(ctx context.Context, caller account.Caller, id string, deps PaymentDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := deps.PaymentStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("payment_event", "event", "payment_deleted", "payment_id", id)
	return nil
}

func savePayment(ctx context.Context, p payment.Payment, deps PaymentDeps, event string) (payment.Payment, error) {
	if err := p.Validate(); err != nil {
		return payment.Payment{}, validation.Invalid(err)
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return payment.Payment{}, err
	}
	slog.Info("payment_event", "event", event, "payment_id", p.ID, "member_id", p.MemberID, "amount", p.Amount, "status", p.Status)
	return p, nil
}

// ExpenseDeps holds dependencies for expense bookkeeping.
type ExpenseDeps struct {
	ExpenseStore ExpenseStore
	Clock        Clock
}

// AddExpenseInput carries a new expense.
type AddExpenseInput struct {
	Type        string    `json:"type" validate:"expensetype"`
	Description string    `json:"description" validate:"required,max=500"`
	Amount      int64     `json:"amount,string" validate:"gt=0"`
	Timestamp   time.Time `json:"timestamp"`
}

// ExecuteAddExpense records an expense, dated now unless a time is given.
// PRE: caller is an admin
// POST: Expense persisted
func ExecuteAddExpense(ctx context.Context, caller account.Caller, input AddExpenseInput, deps ExpenseDeps) (expense.Expense, error) {
	if err := caller.RequireAdmin(); err != nil {
		return expense.Expense{}, err
	}
	if err := validation.Struct(input); err != nil {
		return expense.Expense{}, err
	}
	e := expense.Expense{
		ID:          uuid.New().String(),
		Type:        input.Type,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Timestamp:   input.Timestamp,
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = deps.Clock.now()
	}
	if err := e.Validate(); err != nil {
		return expense.Expense{}, validation.Invalid(err)
	}
	if err := deps.ExpenseStore.Save(ctx, e); err != nil {
		return expense.Expense{}, err
	}
	slog.Info("expense_event", "event", "expense_added", "expense_id", e.ID, "type", e.Type, "amount", e.Amount)
	return e, nil
}

// ExecuteDeleteExpense removes an expense.
// PRE: caller is an admin
func ExecuteDeleteExpense(ctx context.Context, caller account.Caller, id string, deps ExpenseDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := deps.ExpenseStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("expense_event", "event", "expense_deleted", "expense_id", id)
	return nil
}
