package projections_test

import (
	"context"
	"errors"
	"testing"
	"time"

	accountStore "primefit/internal/adapters/storage/account"
	attendanceStore "primefit/internal/adapters/storage/attendance"
	bookingStore "primefit/internal/adapters/storage/booking"
	expenseStore "primefit/internal/adapters/storage/expense"
	memberStore "primefit/internal/adapters/storage/member"
	paymentStore "primefit/internal/adapters/storage/payment"
	planStore "primefit/internal/adapters/storage/plan"
	"primefit/internal/adapters/storage/storagetest"
	"primefit/internal/adapters/storage/stripeconfig"
	"primefit/internal/application/projections"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
	"primefit/internal/domain/session"
)

var (
	ctx   = context.Background()
	now   = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	admin = account.Caller{Principal: principal.SelfAuthenticating([]byte("admin")), Role: account.RoleAdmin}
	plan  = membership.Plan{ID: "plan-monthly", Name: "Monthly", DurationMonths: 1, Price: 50}
)

type world struct {
	deps     projections.DashboardDeps
	stripe   *stripeconfig.SQLiteStore
	accounts *accountStore.SQLiteStore
	active   account.Caller
	lapsed   account.Caller
}

// newWorld seeds two members: one active with a pending payment and a class
// tomorrow, one whose membership ended last month.
func newWorld(t *testing.T) world {
	t.Helper()
	db := storagetest.OpenMigrated(t)
	members := memberStore.NewSQLiteStore(db)
	plans := planStore.NewSQLiteStore(db)
	payments := paymentStore.NewSQLiteStore(db)
	expenses := expenseStore.NewSQLiteStore(db)
	visits := attendanceStore.NewSQLiteStore(db)
	bookings := bookingStore.NewSQLiteStore(db)
	accounts := accountStore.NewSQLiteStore(db)

	if err := plans.Save(ctx, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	create := func(name, email string, start time.Time) int64 {
		m := member.Member{Principal: principal.Anonymous(), Name: name, Email: email}
		m.StartPlan(plan, start)
		id, err := members.Create(ctx, m)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return id
	}
	activeID := create("Active", "active@b.com", now.AddDate(0, 0, -10))
	lapsedID := create("Lapsed", "lapsed@b.com", now.AddDate(0, -2, 0))

	mustSave := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustSave(payments.Save(ctx, payment.Payment{ID: "p1", MemberID: activeID, Amount: 50, Status: payment.StatusPaid, Timestamp: now.Add(-time.Hour)}))
	mustSave(payments.Save(ctx, payment.Payment{ID: "p2", MemberID: activeID, Amount: 20, Status: payment.StatusPending, Timestamp: now}))
	mustSave(expenses.Save(ctx, expense.Expense{ID: "e1", Type: expense.TypeRent, Description: "June rent", Amount: 30, Timestamp: now}))
	mustSave(bookings.Save(ctx, booking.Booking{ID: "b1", MemberID: activeID, ClassType: booking.ClassYoga, Date: now.Add(3 * time.Hour), Status: booking.StatusBooked}))
	mustSave(visits.Save(ctx, attendance.Record{ID: "v1", MemberID: activeID, CheckInTime: now.Add(-30 * time.Minute)}))
	mustSave(accounts.SetApproval(ctx, account.Approval{Principal: principal.SelfAuthenticating([]byte("waiting")), Status: account.ApprovalPending}))

	clock := func() time.Time { return now }
	return world{
		deps: projections.DashboardDeps{
			Members:    projections.MembersDeps{MemberStore: members},
			Payments:   projections.PaymentsDeps{PaymentStore: payments, ExpenseStore: expenses},
			Attendance: projections.AttendanceDeps{AttendanceStore: visits, BookingStore: bookings},
			Reports:    projections.ReportsDeps{MemberStore: members, PaymentStore: payments, ExpenseStore: expenses, BookingStore: bookings, Now: clock},
			Profiles:   projections.ProfilesDeps{AccountStore: accounts},
		},
		stripe:   stripeconfig.NewSQLiteStore(db),
		accounts: accounts,
		active:   account.Caller{Principal: principal.Anonymous(), Role: account.RoleUser, MemberID: activeID},
		lapsed:   account.Caller{Principal: principal.Anonymous(), Role: account.RoleUser, MemberID: lapsedID},
	}
}

func TestQueryReports(t *testing.T) {
	w := newWorld(t)
	sum, err := projections.QueryReports(ctx, admin, w.deps.Reports)
	if err != nil {
		t.Fatalf("QueryReports: %v", err)
	}
	if sum.TotalPayments != 50 || sum.TotalExpenses != 30 || sum.Profit != 20 {
		t.Errorf("totals = %d/%d/%d, want 50/30/20", sum.TotalPayments, sum.TotalExpenses, sum.Profit)
	}
	if len(sum.Members) != 2 {
		t.Fatalf("member lines = %d", len(sum.Members))
	}
	// The lapsed member owes the plan price and sorts first.
	if first := sum.Members[0]; first.Member.Name != "Lapsed" || !first.IsExpired || first.MoneyDue != 50 {
		t.Errorf("first line = %+v", first)
	}

	if _, err := projections.QueryReports(ctx, w.active, w.deps.Reports); !errors.Is(err, account.ErrForbidden) {
		t.Errorf("member reading reports = %v, want ErrForbidden", err)
	}
}

func TestQueryMemberNotifications(t *testing.T) {
	w := newWorld(t)

	got, err := projections.QueryMemberNotifications(ctx, w.active, w.active.MemberID, w.deps.Reports)
	if err != nil {
		t.Fatalf("active notifications: %v", err)
	}
	titles := make([]string, 0, len(got))
	for _, n := range got {
		titles = append(titles, n.Title)
	}
	if len(titles) != 2 || titles[0] != "Payment Due" || titles[1] != "Upcoming Class" {
		t.Errorf("titles = %v, want [Payment Due Upcoming Class]", titles)
	}

	got, _ = projections.QueryMemberNotifications(ctx, w.lapsed, w.lapsed.MemberID, w.deps.Reports)
	if len(got) != 1 || got[0].Title != "Membership Expired" {
		t.Errorf("lapsed notifications = %+v", got)
	}

	if _, err := projections.QueryMemberNotifications(ctx, w.lapsed, w.active.MemberID, w.deps.Reports); !errors.Is(err, account.ErrForbidden) {
		t.Errorf("reading another member's notifications = %v, want ErrForbidden", err)
	}
	if _, err := projections.QueryMemberNotifications(ctx, account.Guest(), w.active.MemberID, w.deps.Reports); !errors.Is(err, account.ErrUnauthenticated) {
		t.Errorf("guest = %v, want ErrUnauthenticated", err)
	}
}

func TestQueryMemberDashboard(t *testing.T) {
	w := newWorld(t)
	d, err := projections.QueryMemberDashboard(ctx, w.active, nil, w.deps)
	if err != nil {
		t.Fatalf("QueryMemberDashboard: %v", err)
	}
	if d.Member.Email != "active@b.com" {
		t.Errorf("member = %s", d.Member.Email)
	}
	if d.OpenVisit == nil || d.OpenVisit.ID != "v1" {
		t.Errorf("open visit = %+v", d.OpenVisit)
	}
	if len(d.Payments) != 2 || d.Payments[0].ID != "p2" {
		t.Errorf("payments = %+v, want newest first", d.Payments)
	}
	if len(d.Bookings) != 1 || len(d.Notifications) != 2 {
		t.Errorf("bookings = %d, notifications = %d", len(d.Bookings), len(d.Notifications))
	}
	if d.DaysRemaining <= 0 {
		t.Errorf("DaysRemaining = %d", d.DaysRemaining)
	}

	if _, err := projections.QueryMemberDashboard(ctx, admin, nil, w.deps); !errors.Is(err, account.ErrForbidden) {
		t.Errorf("admin without member record = %v, want ErrForbidden", err)
	}
}

func TestQueryMemberDashboard_UsesSessionProfile(t *testing.T) {
	w := newWorld(t)
	stored, err := w.deps.Members.MemberStore.GetByID(ctx, w.active.MemberID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	cachedMember := stored
	cachedMember.Name = "Cached Name"
	cached := session.Serialize(cachedMember)

	d, err := projections.QueryMemberDashboard(ctx, w.active, cached, w.deps)
	if err != nil {
		t.Fatalf("QueryMemberDashboard: %v", err)
	}
	if d.Member.Name != "Cached Name" {
		t.Errorf("dashboard member = %q, want the cached profile", d.Member.Name)
	}

	// A cache written for another member is ignored.
	other := session.Serialize(member.Member{ID: w.lapsed.MemberID, Principal: principal.Anonymous(), Name: "Other"})
	got, err := projections.QueryMemberProfile(ctx, w.active, other, w.deps.Members)
	if err != nil || got.Name != stored.Name {
		t.Errorf("profile with foreign cache = %q, %v; want %q from the store", got.Name, err, stored.Name)
	}
}

func TestQueryAdminDashboard(t *testing.T) {
	w := newWorld(t)
	d, err := projections.QueryAdminDashboard(ctx, admin, w.deps)
	if err != nil {
		t.Fatalf("QueryAdminDashboard: %v", err)
	}
	if d.ActiveMembers != 2 {
		// The lapsed member is still marked active until the expiry sweep runs.
		t.Errorf("ActiveMembers = %d, want 2", d.ActiveMembers)
	}
	if d.PendingApprovals != 1 {
		t.Errorf("PendingApprovals = %d, want 1", d.PendingApprovals)
	}
	if len(d.UpcomingBookings) != 1 {
		t.Errorf("UpcomingBookings = %d, want 1", len(d.UpcomingBookings))
	}
}

func TestQueryAttendanceByMemberStatus(t *testing.T) {
	w := newWorld(t)
	got, err := projections.QueryAttendanceByMemberStatus(ctx, admin, member.StatusActive, w.deps.Attendance)
	if err != nil || len(got) != 1 {
		t.Fatalf("active visits = %d, %v", len(got), err)
	}
	if _, err := projections.QueryAttendanceByMemberStatus(ctx, admin, "frozen", w.deps.Attendance); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestQueryAllMinimalMembers(t *testing.T) {
	w := newWorld(t)
	got, err := projections.QueryAllMinimalMembers(ctx, admin, w.deps.Members)
	if err != nil {
		t.Fatalf("QueryAllMinimalMembers: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Active" || got[0].ID != w.active.MemberID {
		t.Errorf("minimal members = %+v", got)
	}
	registered, err := projections.QueryRegisteredMembers(ctx, admin, w.deps.Members)
	if err != nil || len(registered) != 0 {
		t.Errorf("registered = %d, %v; want none", len(registered), err)
	}
}

func TestQueryIsCallerApproved(t *testing.T) {
	w := newWorld(t)
	deps := w.deps.Profiles
	waiting := account.Caller{Principal: principal.SelfAuthenticating([]byte("waiting")), Role: account.RoleGuest}

	if ok, err := projections.QueryIsCallerApproved(ctx, waiting, deps); err != nil || ok {
		t.Errorf("pending approval = %v, %v", ok, err)
	}
	if err := w.accounts.SetApproval(ctx, account.Approval{Principal: waiting.Principal, Status: account.ApprovalApproved}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := projections.QueryIsCallerApproved(ctx, waiting, deps); !ok {
		t.Error("approved caller not approved")
	}
	if err := w.accounts.SetRole(ctx, admin.Principal, account.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if ok, _ := projections.QueryIsCallerApproved(ctx, admin, deps); !ok {
		t.Error("admin not approved")
	}
	if ok, _ := projections.QueryIsCallerApproved(ctx, w.active, deps); ok {
		t.Error("email member counted as approved principal")
	}
	if registered, _ := projections.QueryIsAdminRegistered(ctx, deps); !registered {
		t.Error("admin not registered")
	}
}

func TestQueryIsStripeConfigured(t *testing.T) {
	w := newWorld(t)
	deps := projections.StripeDeps{ConfigStore: w.stripe}
	if ok, err := projections.QueryIsStripeConfigured(ctx, deps); err != nil || ok {
		t.Errorf("before save = %v, %v", ok, err)
	}
	if err := w.stripe.Save(ctx, stripeconfig.Config{SecretKey: "sk_test_1"}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := projections.QueryIsStripeConfigured(ctx, deps); !ok {
		t.Error("configured key not reported")
	}
}
