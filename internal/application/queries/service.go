package queries

import (
	"context"
	"time"

	emailAdapter "primefit/internal/adapters/email"
	"primefit/internal/application/orchestrators"
	"primefit/internal/application/projections"
	"primefit/internal/application/querycache"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/notification"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
	"primefit/internal/domain/report"
	"primefit/internal/domain/session"
)

// Store interfaces cover both the read and the write side of each entity.
type (
	MemberStore interface {
		orchestrators.MemberStore
		projections.MemberStore
		orchestrators.MemberListStore
	}
	PlanStore interface {
		orchestrators.PlanStore
		projections.PlanStore
	}
	PaymentStore interface {
		orchestrators.PaymentStore
		projections.PaymentStore
	}
	ExpenseStore interface {
		orchestrators.ExpenseStore
		projections.ExpenseStore
	}
	AttendanceStore interface {
		orchestrators.AttendanceStore
		projections.AttendanceStore
	}
	BookingStore interface {
		orchestrators.BookingStore
		projections.BookingStore
	}
	AccountStore interface {
		orchestrators.AccountStore
		projections.AccountStore
	}
	CommunicationStore interface {
		orchestrators.CommunicationStore
		projections.CommunicationStore
	}
)

// Stores groups every store the service reads and writes.
type Stores struct {
	Members        MemberStore
	Plans          PlanStore
	Payments       PaymentStore
	Expenses       ExpenseStore
	Attendance     AttendanceStore
	Bookings       BookingStore
	Accounts       AccountStore
	Communications CommunicationStore
	StripeConfig   orchestrators.StripeConfigStore
}

// Deps holds the service's stores and outside collaborators.
type Deps struct {
	Stores  Stores
	Sender  emailAdapter.Sender // nil simulates delivery
	Gateway orchestrators.CheckoutGateway
	Codes   orchestrators.CodeIssuer
	Clock   orchestrators.Clock
}

// Service is the cached facade over orchestrators and projections.
type Service struct {
	cache *querycache.Cache
	deps  Deps
}

// New creates a service reading through cache.
// PRE: cache is non-nil; every store in deps.Stores is non-nil
func New(cache *querycache.Cache, deps Deps) *Service {
	return &Service{cache: cache, deps: deps}
}

// Cache returns the underlying query cache.
func (s *Service) Cache() *querycache.Cache { return s.cache }

func (s *Service) now() time.Time {
	if s.deps.Clock != nil {
		return s.deps.Clock()
	}
	return time.Now()
}

// --- projection deps ---

func (s *Service) membersDeps() projections.MembersDeps {
	return projections.MembersDeps{MemberStore: s.deps.Stores.Members}
}

func (s *Service) paymentsDeps() projections.PaymentsDeps {
	return projections.PaymentsDeps{PaymentStore: s.deps.Stores.Payments, ExpenseStore: s.deps.Stores.Expenses}
}

func (s *Service) attendanceDeps() projections.AttendanceDeps {
	return projections.AttendanceDeps{AttendanceStore: s.deps.Stores.Attendance, BookingStore: s.deps.Stores.Bookings}
}

func (s *Service) reportsDeps() projections.ReportsDeps {
	st := s.deps.Stores
	return projections.ReportsDeps{MemberStore: st.Members, PaymentStore: st.Payments, ExpenseStore: st.Expenses, BookingStore: st.Bookings, Now: s.now}
}

func (s *Service) profilesDeps() projections.ProfilesDeps {
	return projections.ProfilesDeps{AccountStore: s.deps.Stores.Accounts}
}

// IdentityDeps returns the dependencies for identity resolution.
func (s *Service) IdentityDeps(ping func(context.Context) error, budget time.Duration, observer projections.IdentityObserver) projections.IdentityDeps {
	return projections.IdentityDeps{
		AccountStore: s.deps.Stores.Accounts,
		MemberStore:  s.deps.Stores.Members,
		Ping:         ping,
		Budget:       budget,
		Observer:     observer,
	}
}

// --- cached reads ---
// Authorization runs before the cache so a hit never skips it.

// Members lists every member.
func (s *Service) Members(ctx context.Context, caller account.Caller) ([]member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyMembers, func(ctx context.Context) ([]member.Member, error) {
		return projections.QueryAllMembers(ctx, caller, s.membersDeps())
	})
}

// Member returns one member.
func (s *Service) Member(ctx context.Context, caller account.Caller, id int64) (member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return member.Member{}, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMembers, id), func(ctx context.Context) (member.Member, error) {
		return projections.QueryMember(ctx, caller, id, s.membersDeps())
	})
}

// MinimalMembers lists members as id/name pairs.
func (s *Service) MinimalMembers(ctx context.Context, caller account.Caller) ([]member.Minimal, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, querycache.Key(KeyMembers, "minimal"), func(ctx context.Context) ([]member.Minimal, error) {
		return projections.QueryAllMinimalMembers(ctx, caller, s.membersDeps())
	})
}

// RegisteredMembers lists members bound to a principal.
func (s *Service) RegisteredMembers(ctx context.Context, caller account.Caller) ([]member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyRegisteredMembers, func(ctx context.Context) ([]member.Member, error) {
		return projections.QueryRegisteredMembers(ctx, caller, s.membersDeps())
	})
}

// MemberProfile returns the calling member's profile. A session-cached
// profile is served as-is and bypasses the query cache.
func (s *Service) MemberProfile(ctx context.Context, caller account.Caller, cached session.Profile) (member.Member, error) {
	if cached != nil {
		return projections.QueryMemberProfile(ctx, caller, cached, s.membersDeps())
	}
	id, err := caller.RequireMember()
	if err != nil {
		return member.Member{}, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMemberProfile, id), func(ctx context.Context) (member.Member, error) {
		return projections.QueryMemberProfile(ctx, caller, nil, s.membersDeps())
	})
}

// MembershipPlans lists plans.
func (s *Service) MembershipPlans(ctx context.Context, caller account.Caller) ([]membership.Plan, error) {
	if !caller.IsAuthenticated() {
		return nil, account.ErrUnauthenticated
	}
	return querycache.Get(ctx, s.cache, KeyMembershipPlans, func(ctx context.Context) ([]membership.Plan, error) {
		return projections.QueryAllMembershipPlans(ctx, caller, projections.PlansDeps{PlanStore: s.deps.Stores.Plans})
	})
}

// MembershipPlan returns one plan.
func (s *Service) MembershipPlan(ctx context.Context, caller account.Caller, id string) (membership.Plan, error) {
	return projections.QueryMembershipPlan(ctx, caller, id, projections.PlansDeps{PlanStore: s.deps.Stores.Plans})
}

// Payments lists every payment.
func (s *Service) Payments(ctx context.Context, caller account.Caller) ([]payment.Payment, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyPayments, func(ctx context.Context) ([]payment.Payment, error) {
		return projections.QueryAllPayments(ctx, caller, s.paymentsDeps())
	})
}

// Payment returns one payment.
func (s *Service) Payment(ctx context.Context, caller account.Caller, id string) (payment.Payment, error) {
	return projections.QueryPayment(ctx, caller, id, s.paymentsDeps())
}

// MemberPayments lists one member's payments.
func (s *Service) MemberPayments(ctx context.Context, caller account.Caller, memberID int64) ([]payment.Payment, error) {
	if err := projections.RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMemberPayments, memberID), func(ctx context.Context) ([]payment.Payment, error) {
		return projections.QueryMemberPayments(ctx, caller, memberID, s.paymentsDeps())
	})
}

// Expenses lists every expense.
func (s *Service) Expenses(ctx context.Context, caller account.Caller) ([]expense.Expense, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyExpenses, func(ctx context.Context) ([]expense.Expense, error) {
		return projections.QueryAllExpenses(ctx, caller, s.paymentsDeps())
	})
}

// Reports computes the admin overview.
func (s *Service) Reports(ctx context.Context, caller account.Caller) (report.Summary, error) {
	if err := caller.RequireAdmin(); err != nil {
		return report.Summary{}, err
	}
	return querycache.Get(ctx, s.cache, KeyReports, func(ctx context.Context) (report.Summary, error) {
		return projections.QueryReports(ctx, caller, s.reportsDeps())
	})
}

// MemberAttendance lists a member's visits.
func (s *Service) MemberAttendance(ctx context.Context, caller account.Caller, memberID int64) ([]attendance.Record, error) {
	if err := projections.RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMemberAttendance, memberID), func(ctx context.Context) ([]attendance.Record, error) {
		return projections.QueryMemberAttendance(ctx, caller, memberID, s.attendanceDeps())
	})
}

// AttendanceByMemberStatus lists visits of members in one membership status.
func (s *Service) AttendanceByMemberStatus(ctx context.Context, caller account.Caller, status string) ([]attendance.Record, error) {
	return projections.QueryAttendanceByMemberStatus(ctx, caller, status, s.attendanceDeps())
}

// MemberClassBookings lists a member's bookings.
func (s *Service) MemberClassBookings(ctx context.Context, caller account.Caller, memberID int64) ([]booking.Booking, error) {
	if err := projections.RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMemberClassBookings, memberID), func(ctx context.Context) ([]booking.Booking, error) {
		return projections.QueryMemberClassBookings(ctx, caller, memberID, s.attendanceDeps())
	})
}

// ClassBookingsByStatus lists bookings in one status.
func (s *Service) ClassBookingsByStatus(ctx context.Context, caller account.Caller, status string) ([]booking.Booking, error) {
	return projections.QueryClassBookingsByStatus(ctx, caller, status, s.attendanceDeps())
}

// MemberNotifications derives a member's banners.
func (s *Service) MemberNotifications(ctx context.Context, caller account.Caller, memberID int64) ([]notification.Notification, error) {
	if err := projections.RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, memberKey(KeyMemberNotifications, memberID), func(ctx context.Context) ([]notification.Notification, error) {
		return projections.QueryMemberNotifications(ctx, caller, memberID, s.reportsDeps())
	})
}

// CallerUserProfile returns the caller's saved profile, nil when none.
func (s *Service) CallerUserProfile(ctx context.Context, caller account.Caller) (*account.UserProfile, error) {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, principalKey(KeyCurrentUserProfile, p), func(ctx context.Context) (*account.UserProfile, error) {
		return projections.QueryCallerUserProfile(ctx, caller, s.profilesDeps())
	})
}

// CallerUserRole returns the caller's role.
func (s *Service) CallerUserRole(ctx context.Context, caller account.Caller) (string, error) {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return "", err
	}
	return querycache.Get(ctx, s.cache, principalKey(KeyUserRole, p), func(ctx context.Context) (string, error) {
		return projections.QueryCallerUserRole(ctx, caller, s.profilesDeps())
	})
}

// CommunicationLogs lists every logged message.
func (s *Service) CommunicationLogs(ctx context.Context, caller account.Caller) ([]communication.LogEntry, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyCommunicationLogs, func(ctx context.Context) ([]communication.LogEntry, error) {
		return projections.QueryAllCommunicationLogs(ctx, caller, projections.CommunicationDeps{CommunicationStore: s.deps.Stores.Communications})
	})
}

// CommunicationLogsByEmail lists messages sent to one address.
func (s *Service) CommunicationLogsByEmail(ctx context.Context, caller account.Caller, email string) ([]communication.LogEntry, error) {
	return projections.QueryCommunicationLogsByEmail(ctx, caller, email, projections.CommunicationDeps{CommunicationStore: s.deps.Stores.Communications})
}

// Approvals lists approval requests.
func (s *Service) Approvals(ctx context.Context, caller account.Caller) ([]account.Approval, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return querycache.Get(ctx, s.cache, KeyApprovals, func(ctx context.Context) ([]account.Approval, error) {
		return projections.QueryApprovals(ctx, caller, s.profilesDeps())
	})
}

// --- uncached reads ---

// UserProfile returns another principal's profile.
func (s *Service) UserProfile(ctx context.Context, caller account.Caller, target principal.Principal) (*account.UserProfile, error) {
	return projections.QueryUserProfile(ctx, caller, target, s.profilesDeps())
}

// UserRole returns another principal's role.
func (s *Service) UserRole(ctx context.Context, caller account.Caller, target principal.Principal) (string, error) {
	return projections.QueryUserRole(ctx, caller, target, s.profilesDeps())
}

// IsCallerAdmin reports whether the caller holds the admin role.
func (s *Service) IsCallerAdmin(ctx context.Context, caller account.Caller) (bool, error) {
	return projections.QueryIsCallerAdmin(ctx, caller, s.profilesDeps())
}

// IsAdminRegistered reports whether an admin exists.
func (s *Service) IsAdminRegistered(ctx context.Context) (bool, error) {
	return projections.QueryIsAdminRegistered(ctx, s.profilesDeps())
}

// IsCallerApproved reports whether an admin approved the caller.
func (s *Service) IsCallerApproved(ctx context.Context, caller account.Caller) (bool, error) {
	return projections.QueryIsCallerApproved(ctx, caller, s.profilesDeps())
}

// IsStripeConfigured reports whether checkout is available.
func (s *Service) IsStripeConfigured(ctx context.Context) (bool, error) {
	return projections.QueryIsStripeConfigured(ctx, projections.StripeDeps{ConfigStore: s.deps.Stores.StripeConfig})
}

// MemberDashboard gathers the calling member's dashboard.
func (s *Service) MemberDashboard(ctx context.Context, caller account.Caller, cached session.Profile) (projections.MemberDashboard, error) {
	return projections.QueryMemberDashboard(ctx, caller, cached, s.dashboardDeps())
}

// AdminDashboard gathers the admin overview.
func (s *Service) AdminDashboard(ctx context.Context, caller account.Caller) (projections.AdminDashboard, error) {
	return projections.QueryAdminDashboard(ctx, caller, s.dashboardDeps())
}

func (s *Service) dashboardDeps() projections.DashboardDeps {
	return projections.DashboardDeps{
		Members:    s.membersDeps(),
		Payments:   s.paymentsDeps(),
		Attendance: s.attendanceDeps(),
		Reports:    s.reportsDeps(),
		Profiles:   s.profilesDeps(),
	}
}
