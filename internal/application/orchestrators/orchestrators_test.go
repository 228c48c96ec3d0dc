package orchestrators_test

import (
	"context"
	"errors"
	"testing"
	"time"

	emailAdapter "primefit/internal/adapters/email"
	accountStore "primefit/internal/adapters/storage/account"
	attendanceStore "primefit/internal/adapters/storage/attendance"
	bookingStore "primefit/internal/adapters/storage/booking"
	commStore "primefit/internal/adapters/storage/communication"
	memberStore "primefit/internal/adapters/storage/member"
	paymentStore "primefit/internal/adapters/storage/payment"
	planStore "primefit/internal/adapters/storage/plan"
	"primefit/internal/adapters/storage/storagetest"
	"primefit/internal/adapters/storage/stripeconfig"
	"primefit/internal/application/orchestrators"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/member"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
)

var (
	now         = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock       = orchestrators.Clock(func() time.Time { return now })
	adminP      = principal.SelfAuthenticating([]byte("admin-key"))
	admin       = account.Caller{Principal: adminP, Role: account.RoleAdmin}
	ctx         = context.Background()
	errSMTPDown = errors.New("smtp down")
)

type fixture struct {
	members    *memberStore.SQLiteStore
	plans      *planStore.SQLiteStore
	payments   *paymentStore.SQLiteStore
	attendance *attendanceStore.SQLiteStore
	bookings   *bookingStore.SQLiteStore
	accounts   *accountStore.SQLiteStore
	comms      *commStore.SQLiteStore
	stripe     *stripeconfig.SQLiteStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := storagetest.OpenMigrated(t)
	f := fixture{
		members:    memberStore.NewSQLiteStore(db),
		plans:      planStore.NewSQLiteStore(db),
		payments:   paymentStore.NewSQLiteStore(db),
		attendance: attendanceStore.NewSQLiteStore(db),
		bookings:   bookingStore.NewSQLiteStore(db),
		accounts:   accountStore.NewSQLiteStore(db),
		comms:      commStore.NewSQLiteStore(db),
		stripe:     stripeconfig.NewSQLiteStore(db),
	}
	seed := orchestrators.SeedDeps{PlanStore: f.plans, MemberStore: f.members, Clock: clock}
	if err := orchestrators.ExecuteSeedPlans(ctx, seed); err != nil {
		t.Fatalf("seed plans: %v", err)
	}
	if err := orchestrators.ExecuteSeedTestMember(ctx, seed); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return f
}

func (f fixture) createDeps(sender emailAdapter.Sender) orchestrators.CreateMemberDeps {
	return orchestrators.CreateMemberDeps{
		MemberStore:   f.members,
		PlanStore:     f.plans,
		Communication: orchestrators.CommunicationDeps{Store: f.comms, Sender: sender, Clock: clock},
		Clock:         clock,
	}
}

func (f fixture) testMember(t *testing.T) account.Caller {
	t.Helper()
	m, err := f.members.GetByEmail(ctx, orchestrators.TestMemberEmail)
	if err != nil {
		t.Fatalf("test member: %v", err)
	}
	return account.Caller{Principal: principal.Anonymous(), Role: account.RoleUser, MemberID: m.ID}
}

type fakeSender struct {
	err  error
	sent []emailAdapter.SendRequest
}

func (s *fakeSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if s.err != nil {
		return emailAdapter.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: "m1", SentAt: now}, nil
}

func (s *fakeSender) SendBatch(ctx context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	var out []emailAdapter.SendResult
	for _, r := range reqs {
		res, err := s.Send(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// TestExecuteMemberLogin verifies the seeded development login and the generic failure.
func TestExecuteMemberLogin(t *testing.T) {
	f := newFixture(t)
	deps := orchestrators.MemberLoginDeps{MemberStore: f.members}

	m, err := orchestrators.ExecuteMemberLogin(ctx, orchestrators.MemberLoginInput{Email: " A@B.com ", Password: "secret1"}, deps)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if m.Email != "a@b.com" || m.ID <= 0 {
		t.Errorf("login member = %+v", m)
	}

	for _, in := range []orchestrators.MemberLoginInput{
		{Email: "a@b.com", Password: "wrong!!"},
		{Email: "nobody@b.com", Password: "secret1"},
		{Email: "", Password: ""},
	} {
		if _, err := orchestrators.ExecuteMemberLogin(ctx, in, deps); !errors.Is(err, orchestrators.ErrInvalidCredentials) {
			t.Errorf("login(%q) = %v, want ErrInvalidCredentials", in.Email, err)
		}
	}
}

type failingLoginStore struct{ err error }

func (s failingLoginStore) GetByEmail(context.Context, string) (member.Member, error) {
	return member.Member{}, s.err
}

// TestExecuteMemberLogin_LookupFailure verifies a broken store is reported as
// such and never as a wrong password.
func TestExecuteMemberLogin_LookupFailure(t *testing.T) {
	dbDown := errors.New("database is locked")
	deps := orchestrators.MemberLoginDeps{MemberStore: failingLoginStore{err: dbDown}}

	_, err := orchestrators.ExecuteMemberLogin(ctx, orchestrators.MemberLoginInput{Email: "a@b.com", Password: "secret1"}, deps)
	if !errors.Is(err, dbDown) {
		t.Errorf("err = %v, want the store error", err)
	}
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		t.Error("store failure reported as invalid credentials")
	}
}

// TestExecuteAddMemberWithManualCredentials verifies creation, delivery logs and retry.
func TestExecuteAddMemberWithManualCredentials(t *testing.T) {
	f := newFixture(t)
	sender := &fakeSender{err: errSMTPDown}
	input := orchestrators.AddMemberInput{Name: "Jo Bloggs", Email: "Jo@Example.com", Password: "hunter22", Phone: "+6421555", PlanID: "plan-quarterly"}

	if _, err := orchestrators.ExecuteAddMemberWithManualCredentials(ctx, f.testMember(t), input, f.createDeps(sender)); !errors.Is(err, account.ErrForbidden) {
		t.Fatalf("member caller = %v, want ErrForbidden", err)
	}

	res, err := orchestrators.ExecuteAddMemberWithManualCredentials(ctx, admin, input, f.createDeps(sender))
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if res.Member.Email != "jo@example.com" || res.Member.MembershipStatus != member.StatusActive {
		t.Errorf("member = %+v", res.Member)
	}
	if want := now.AddDate(0, 3, 0); !res.Member.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, want %v", res.Member.EndDate, want)
	}
	if res.Credentials.Password != "hunter22" {
		t.Errorf("credentials = %+v", res.Credentials)
	}
	if len(res.CommunicationLogs) != 3 {
		t.Fatalf("logs = %d, want sms, whatsapp and email", len(res.CommunicationLogs))
	}
	if last := res.CommunicationLogs[2]; last.Channel != communication.ChannelEmail || last.Status != communication.StatusFailed {
		t.Errorf("email log = %+v, want failed email", last)
	}

	sender.err = nil
	retry, err := orchestrators.ExecuteRetryCommunications(ctx, orchestrators.CommunicationDeps{Store: f.comms, Sender: sender, Clock: clock})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Attempted != 1 || retry.Sent != 1 || len(sender.sent) != 1 {
		t.Errorf("retry = %+v, sent %d", retry, len(sender.sent))
	}

	if _, err := orchestrators.ExecuteAddMemberWithManualCredentials(ctx, admin, input, f.createDeps(nil)); !errors.Is(err, memberStore.ErrDuplicateEmail) {
		t.Errorf("duplicate email = %v", err)
	}
	input.Password = "123"
	if _, err := orchestrators.ExecuteAddMemberWithManualCredentials(ctx, admin, input, f.createDeps(nil)); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("short password = %v, want ErrInvalid", err)
	}
}

// TestExecuteCreateMemberWithCredentials verifies generated credentials log in.
func TestExecuteCreateMemberWithCredentials(t *testing.T) {
	f := newFixture(t)
	res, err := orchestrators.ExecuteCreateMemberWithCredentials(ctx, admin, orchestrators.CreateMemberInput{Name: "Ana María", PlanID: "plan-monthly"}, f.createDeps(nil))
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if len(res.Credentials.Password) != orchestrators.GeneratedPasswordLength {
		t.Errorf("password length = %d", len(res.Credentials.Password))
	}
	if len(res.CommunicationLogs) != 1 || res.CommunicationLogs[0].Status != communication.StatusSent {
		t.Errorf("logs = %+v, want one simulated email", res.CommunicationLogs)
	}
	m, err := orchestrators.ExecuteMemberLogin(ctx, orchestrators.MemberLoginInput{Email: res.Credentials.Email, Password: res.Credentials.Password}, orchestrators.MemberLoginDeps{MemberStore: f.members})
	if err != nil || m.ID != res.Member.ID {
		t.Errorf("login with generated credentials = %v, %v", m.ID, err)
	}
}

// TestExecuteAddPaymentByIdentifier verifies lookup by email and by phone.
func TestExecuteAddPaymentByIdentifier(t *testing.T) {
	f := newFixture(t)
	deps := orchestrators.PaymentDeps{PaymentStore: f.payments, MemberStore: f.members, Clock: clock}
	self := f.testMember(t)

	for _, id := range []string{"A@B.COM", "+64210000000"} {
		p, err := orchestrators.ExecuteAddPaymentByIdentifier(ctx, admin, orchestrators.AddPaymentByIdentifierInput{Identifier: id, Amount: 50, Status: payment.StatusPaid}, deps)
		if err != nil {
			t.Fatalf("add payment by %s: %v", id, err)
		}
		if p.MemberID != self.MemberID {
			t.Errorf("payment member = %d, want %d", p.MemberID, self.MemberID)
		}
	}
	if _, err := orchestrators.ExecuteAddPaymentByIdentifier(ctx, admin, orchestrators.AddPaymentByIdentifierInput{Identifier: "000", Amount: 50, Status: payment.StatusPaid}, deps); err == nil {
		t.Error("unknown phone accepted")
	}
	if _, err := orchestrators.ExecuteAddPayment(ctx, admin, orchestrators.AddPaymentInput{MemberID: self.MemberID, Amount: 0, Status: payment.StatusPaid}, deps); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("zero amount = %v, want ErrInvalid", err)
	}
	list, _ := f.payments.ListByMemberID(ctx, self.MemberID)
	if len(list) != 2 {
		t.Errorf("payments = %d, want 2", len(list))
	}
}

// TestCheckInCheckOut verifies the one-open-visit rule.
func TestCheckInCheckOut(t *testing.T) {
	f := newFixture(t)
	self := f.testMember(t)
	deps := orchestrators.AttendanceDeps{AttendanceStore: f.attendance, MemberStore: f.members, Clock: clock}

	if _, err := orchestrators.ExecuteCheckOut(ctx, self, deps); !errors.Is(err, attendance.ErrNotCheckedIn) {
		t.Errorf("check-out without check-in = %v", err)
	}
	if _, err := orchestrators.ExecuteCheckIn(ctx, self, deps); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if _, err := orchestrators.ExecuteCheckIn(ctx, self, deps); !errors.Is(err, attendance.ErrAlreadyCheckedIn) {
		t.Errorf("second check-in = %v", err)
	}
	r, err := orchestrators.ExecuteCheckOut(ctx, self, deps)
	if err != nil || !r.IsCheckedOut() {
		t.Fatalf("check-out = %+v, %v", r, err)
	}
	if _, err := orchestrators.ExecuteCheckIn(ctx, account.Guest(), deps); !errors.Is(err, account.ErrUnauthenticated) {
		t.Errorf("guest check-in = %v", err)
	}
}

// TestExecuteUpdateClassBooking verifies ownership and terminal statuses.
func TestExecuteUpdateClassBooking(t *testing.T) {
	f := newFixture(t)
	self := f.testMember(t)
	deps := orchestrators.BookingDeps{BookingStore: f.bookings}

	b, err := orchestrators.ExecuteAddClassBooking(ctx, self, orchestrators.AddClassBookingInput{ClassType: booking.ClassYoga, Date: now.Add(24 * time.Hour)}, deps)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	stranger := account.Caller{Principal: principal.Anonymous(), Role: account.RoleUser, MemberID: self.MemberID + 100}
	if _, err := orchestrators.ExecuteUpdateClassBooking(ctx, stranger, orchestrators.UpdateClassBookingInput{ID: b.ID, Status: booking.StatusCancelled}, deps); !errors.Is(err, account.ErrForbidden) {
		t.Errorf("stranger update = %v, want ErrForbidden", err)
	}
	if _, err := orchestrators.ExecuteUpdateClassBooking(ctx, self, orchestrators.UpdateClassBookingInput{ID: b.ID, Status: booking.StatusCancelled}, deps); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := orchestrators.ExecuteUpdateClassBooking(ctx, admin, orchestrators.UpdateClassBookingInput{ID: b.ID, Status: booking.StatusCompleted}, deps); !errors.Is(err, booking.ErrFinalized) {
		t.Errorf("complete cancelled booking = %v, want ErrFinalized", err)
	}
	if _, err := orchestrators.ExecuteAddClassBooking(ctx, self, orchestrators.AddClassBookingInput{ClassType: "boxing", Date: now}, deps); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("unknown class = %v", err)
	}
}

// TestExecuteSaveCallerUserProfile verifies first-admin promotion and member linking.
func TestExecuteSaveCallerUserProfile(t *testing.T) {
	f := newFixture(t)
	deps := orchestrators.ProfileDeps{AccountStore: f.accounts, MemberStore: f.members, Clock: clock}
	first := account.Caller{Principal: principal.SelfAuthenticating([]byte("first")), Role: account.RoleGuest}
	second := account.Caller{Principal: principal.SelfAuthenticating([]byte("second")), Role: account.RoleGuest}
	third := account.Caller{Principal: principal.SelfAuthenticating([]byte("third")), Role: account.RoleGuest}

	res, err := orchestrators.ExecuteSaveCallerUserProfile(ctx, first, orchestrators.SaveUserProfileInput{Name: "Owner"}, deps)
	if err != nil || res.Role != account.RoleAdmin {
		t.Fatalf("first registrant = %+v, %v", res, err)
	}

	res, err = orchestrators.ExecuteSaveCallerUserProfile(ctx, second, orchestrators.SaveUserProfileInput{Name: "Tester", Email: "a@b.com", AppRole: account.AppRoleAdmin}, deps)
	if err != nil {
		t.Fatalf("second registrant: %v", err)
	}
	if res.Role != account.RoleUser || res.Profile.AppRole != account.AppRoleMember {
		t.Errorf("second registrant = %+v, want downgraded user", res)
	}
	linked, err := f.members.GetByPrincipal(ctx, second.Principal)
	if err != nil || linked.Email != "a@b.com" {
		t.Errorf("linked member = %+v, %v", linked, err)
	}

	if _, err := orchestrators.ExecuteSaveCallerUserProfile(ctx, third, orchestrators.SaveUserProfileInput{Name: "New Person", Email: "new@b.com"}, deps); err != nil {
		t.Fatalf("third registrant: %v", err)
	}
	created, err := f.members.GetByPrincipal(ctx, third.Principal)
	if err != nil || created.MembershipStatus != member.StatusPending {
		t.Errorf("registered member = %+v, %v", created, err)
	}

	if _, err := orchestrators.ExecuteSaveCallerUserProfile(ctx, account.Guest(), orchestrators.SaveUserProfileInput{Name: "Anon"}, deps); !errors.Is(err, account.ErrUnauthenticated) {
		t.Errorf("anonymous save = %v", err)
	}

	owner := account.Caller{Principal: first.Principal, Role: account.RoleAdmin}
	if err := orchestrators.ExecuteAssignRole(ctx, owner, owner.Principal, account.RoleUser, deps); !errors.Is(err, account.ErrForbidden) {
		t.Errorf("self demotion = %v, want ErrForbidden", err)
	}
	if err := orchestrators.ExecuteAssignRole(ctx, owner, second.Principal, account.RoleGuest, deps); err != nil {
		t.Fatalf("assign role: %v", err)
	}
	res, _ = orchestrators.ExecuteSaveCallerUserProfile(ctx, second, orchestrators.SaveUserProfileInput{Name: "Tester"}, deps)
	if res.Role != account.RoleGuest {
		t.Errorf("demoted user re-saving = %s, want guest", res.Role)
	}
}

// TestExecuteExpireMemberships verifies the sweep only touches lapsed active members.
func TestExecuteExpireMemberships(t *testing.T) {
	f := newFixture(t)
	later := orchestrators.Clock(func() time.Time { return now.AddDate(0, 2, 0) })
	n, err := orchestrators.ExecuteExpireMemberships(ctx, orchestrators.ExpireMembershipsDeps{MemberStore: f.members, Clock: later})
	if err != nil || n != 1 {
		t.Fatalf("expire = %d, %v; want 1", n, err)
	}
	m, _ := f.members.GetByEmail(ctx, orchestrators.TestMemberEmail)
	if m.MembershipStatus != member.StatusExpired {
		t.Errorf("status = %s", m.MembershipStatus)
	}
	n, _ = orchestrators.ExecuteExpireMemberships(ctx, orchestrators.ExpireMembershipsDeps{MemberStore: f.members, Clock: later})
	if n != 0 {
		t.Errorf("second sweep = %d, want 0", n)
	}
}

// TestStripeNotConfigured verifies checkout refuses before configuration.
func TestStripeNotConfigured(t *testing.T) {
	f := newFixture(t)
	deps := orchestrators.StripeDeps{ConfigStore: f.stripe}
	_, err := orchestrators.ExecuteGetStripeSessionStatus(ctx, f.testMember(t), "cs_1", deps)
	if !errors.Is(err, orchestrators.ErrStripeNotConfigured) {
		t.Errorf("status before configuration = %v", err)
	}
	err = orchestrators.ExecuteSetStripeConfiguration(ctx, f.testMember(t), orchestrators.SetStripeConfigurationInput{SecretKey: "sk_test"}, deps)
	if !errors.Is(err, account.ErrForbidden) {
		t.Errorf("member configuring stripe = %v", err)
	}
	if err := orchestrators.ExecuteSetStripeConfiguration(ctx, admin, orchestrators.SetStripeConfigurationInput{SecretKey: "sk_test", AllowedCountries: []string{"nz"}}, deps); err != nil {
		t.Fatalf("configure: %v", err)
	}
	cfg, _ := f.stripe.Get(ctx)
	if len(cfg.AllowedCountries) != 1 || cfg.AllowedCountries[0] != "NZ" {
		t.Errorf("countries = %v", cfg.AllowedCountries)
	}
}

// TestExecuteChangePassword verifies the old password stops working.
func TestExecuteChangePassword(t *testing.T) {
	f := newFixture(t)
	self := f.testMember(t)
	deps := orchestrators.MemberDeps{MemberStore: f.members}
	login := orchestrators.MemberLoginDeps{MemberStore: f.members}

	err := orchestrators.ExecuteChangePassword(ctx, self, orchestrators.ChangePasswordInput{CurrentPassword: "nope!!", NewPassword: "better1"}, deps)
	if !errors.Is(err, orchestrators.ErrCurrentPasswordWrong) {
		t.Errorf("wrong current password = %v", err)
	}
	if err := orchestrators.ExecuteChangePassword(ctx, self, orchestrators.ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "better1"}, deps); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := orchestrators.ExecuteMemberLogin(ctx, orchestrators.MemberLoginInput{Email: "a@b.com", Password: "secret1"}, login); err == nil {
		t.Error("old password still accepted")
	}
	if _, err := orchestrators.ExecuteMemberLogin(ctx, orchestrators.MemberLoginInput{Email: "a@b.com", Password: "better1"}, login); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
