package orchestrators

import (
	"context"
	"time"

	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
)

// MemberStore is the member persistence the orchestrators need.
type MemberStore interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	GetByPhone(ctx context.Context, phone string) (member.Member, error)
	GetByPrincipal(ctx context.Context, p principal.Principal) (member.Member, error)
	Create(ctx context.Context, m member.Member) (int64, error)
	Save(ctx context.Context, m member.Member) error
	Delete(ctx context.Context, id int64) error
}

// PlanStore persists membership plans.
type PlanStore interface {
	GetByID(ctx context.Context, id string) (membership.Plan, error)
	Save(ctx context.Context, p membership.Plan) error
	Delete(ctx context.Context, id string) error
}

// PaymentStore persists payments.
type PaymentStore interface {
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	Save(ctx context.Context, p payment.Payment) error
	Delete(ctx context.Context, id string) error
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	Save(ctx context.Context, e expense.Expense) error
	Delete(ctx context.Context, id string) error
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	GetOpenByMemberID(ctx context.Context, memberID int64) (attendance.Record, error)
	Save(ctx context.Context, r attendance.Record) error
}

// BookingStore persists class bookings.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Save(ctx context.Context, b booking.Booking) error
}

// AccountStore persists principal profiles, roles and approvals.
type AccountStore interface {
	SaveProfile(ctx context.Context, u account.UserProfile) error
	LookupRole(ctx context.Context, p principal.Principal) (string, bool, error)
	SetRole(ctx context.Context, p principal.Principal, role string) error
	AdminExists(ctx context.Context) (bool, error)
	SetApproval(ctx context.Context, a account.Approval) error
}

// CommunicationStore persists the communication log.
type CommunicationStore interface {
	Save(ctx context.Context, e communication.LogEntry) error
	ListRetryable(ctx context.Context, maxAttempts int) ([]communication.LogEntry, error)
}

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
