package projections

import (
	"context"

	"primefit/internal/adapters/storage/member"
	"primefit/internal/adapters/storage/stripeconfig"
	domainAccount "primefit/internal/domain/account"
	domainAttendance "primefit/internal/domain/attendance"
	domainBooking "primefit/internal/domain/booking"
	domainCommunication "primefit/internal/domain/communication"
	domainExpense "primefit/internal/domain/expense"
	domainMember "primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	domainPayment "primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id int64) (domainMember.Member, error)
	GetByPrincipal(ctx context.Context, p principal.Principal) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
}

// PlanStore interface for membership plan queries.
type PlanStore interface {
	GetByID(ctx context.Context, id string) (membership.Plan, error)
	List(ctx context.Context) ([]membership.Plan, error)
}

// PaymentStore interface for payment queries.
type PaymentStore interface {
	GetByID(ctx context.Context, id string) (domainPayment.Payment, error)
	List(ctx context.Context) ([]domainPayment.Payment, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]domainPayment.Payment, error)
}

// ExpenseStore interface for expense queries.
type ExpenseStore interface {
	List(ctx context.Context) ([]domainExpense.Expense, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	GetOpenByMemberID(ctx context.Context, memberID int64) (domainAttendance.Record, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]domainAttendance.Record, error)
	ListByMemberStatus(ctx context.Context, status string) ([]domainAttendance.Record, error)
}

// BookingStore interface for class booking queries.
type BookingStore interface {
	ListByMemberID(ctx context.Context, memberID int64) ([]domainBooking.Booking, error)
	ListByStatus(ctx context.Context, status string) ([]domainBooking.Booking, error)
}

// AccountStore interface for principal profile, role and approval queries.
type AccountStore interface {
	GetProfile(ctx context.Context, p principal.Principal) (domainAccount.UserProfile, error)
	GetRole(ctx context.Context, p principal.Principal) (string, error)
	AdminExists(ctx context.Context) (bool, error)
	GetApproval(ctx context.Context, p principal.Principal) (domainAccount.Approval, error)
	ListApprovals(ctx context.Context) ([]domainAccount.Approval, error)
}

// CommunicationStore interface for communication log queries.
type CommunicationStore interface {
	List(ctx context.Context) ([]domainCommunication.LogEntry, error)
	ListByRecipient(ctx context.Context, recipient string) ([]domainCommunication.LogEntry, error)
}

// StripeConfigStore interface for the payment provider configuration.
type StripeConfigStore interface {
	Get(ctx context.Context) (stripeconfig.Config, error)
}
