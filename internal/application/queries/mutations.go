package queries

import (
	"context"

	stripeAdapter "primefit/internal/adapters/stripe"
	"primefit/internal/application/orchestrators"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/expense"
	"primefit/internal/domain/fitness"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/principal"
)

func (s *Service) memberDeps() orchestrators.MemberDeps {
	return orchestrators.MemberDeps{MemberStore: s.deps.Stores.Members}
}

func (s *Service) communicationDeps() orchestrators.CommunicationDeps {
	return orchestrators.CommunicationDeps{Store: s.deps.Stores.Communications, Sender: s.deps.Sender, Clock: s.deps.Clock}
}

func (s *Service) createMemberDeps() orchestrators.CreateMemberDeps {
	return orchestrators.CreateMemberDeps{
		MemberStore:   s.deps.Stores.Members,
		PlanStore:     s.deps.Stores.Plans,
		Communication: s.communicationDeps(),
		Clock:         s.deps.Clock,
	}
}

func (s *Service) paymentDeps() orchestrators.PaymentDeps {
	return orchestrators.PaymentDeps{PaymentStore: s.deps.Stores.Payments, MemberStore: s.deps.Stores.Members, Clock: s.deps.Clock}
}

func (s *Service) orchestratorAttendanceDeps() orchestrators.AttendanceDeps {
	return orchestrators.AttendanceDeps{AttendanceStore: s.deps.Stores.Attendance, MemberStore: s.deps.Stores.Members, Clock: s.deps.Clock}
}

func (s *Service) profileDeps() orchestrators.ProfileDeps {
	return orchestrators.ProfileDeps{AccountStore: s.deps.Stores.Accounts, MemberStore: s.deps.Stores.Members, Clock: s.deps.Clock}
}

func (s *Service) stripeDeps() orchestrators.StripeDeps {
	return orchestrators.StripeDeps{ConfigStore: s.deps.Stores.StripeConfig, Gateway: s.deps.Gateway}
}

func (s *Service) qrDeps() orchestrators.QRCodeDeps {
	return orchestrators.QRCodeDeps{Issuer: s.deps.Codes, MemberStore: s.deps.Stores.Members}
}

// invalidateOn drops the given families when err is nil.
func (s *Service) invalidateOn(err error, families ...[]string) {
	if err != nil {
		return
	}
	for _, f := range families {
		s.cache.Invalidate(f...)
	}
}

// --- members ---

// MemberLogin checks a member's credentials.
func (s *Service) MemberLogin(ctx context.Context, input orchestrators.MemberLoginInput) (member.Member, error) {
	return orchestrators.ExecuteMemberLogin(ctx, input, orchestrators.MemberLoginDeps{MemberStore: s.deps.Stores.Members})
}

// AddMemberWithManualCredentials creates a member with admin-chosen credentials.
func (s *Service) AddMemberWithManualCredentials(ctx context.Context, caller account.Caller, input orchestrators.AddMemberInput) (orchestrators.CreateMemberResult, error) {
	res, err := orchestrators.ExecuteAddMemberWithManualCredentials(ctx, caller, input, s.createMemberDeps())
	s.invalidateOn(err, memberWrites, commWrites)
	return res, err
}

// CreateMemberWithCredentials creates a member with generated credentials.
func (s *Service) CreateMemberWithCredentials(ctx context.Context, caller account.Caller, input orchestrators.CreateMemberInput) (orchestrators.CreateMemberResult, error) {
	res, err := orchestrators.ExecuteCreateMemberWithCredentials(ctx, caller, input, s.createMemberDeps())
	s.invalidateOn(err, memberWrites, commWrites)
	return res, err
}

// UpdateMember edits a member as an admin.
func (s *Service) UpdateMember(ctx context.Context, caller account.Caller, input orchestrators.UpdateMemberInput) (member.Member, error) {
	m, err := orchestrators.ExecuteUpdateMember(ctx, caller, input, s.memberDeps())
	s.invalidateOn(err, memberWrites)
	return m, err
}

// DeleteMember removes a member.
func (s *Service) DeleteMember(ctx context.Context, caller account.Caller, id int64) error {
	err := orchestrators.ExecuteDeleteMember(ctx, caller, id, s.memberDeps())
	s.invalidateOn(err, memberWrites, paymentWrites, attendanceWrites, bookingWrites)
	return err
}

// UpdateMemberWorkoutPlan assigns or clears a workout plan.
func (s *Service) UpdateMemberWorkoutPlan(ctx context.Context, caller account.Caller, id int64, plan *fitness.WorkoutPlan) (member.Member, error) {
	m, err := orchestrators.ExecuteUpdateMemberWorkoutPlan(ctx, caller, id, plan, s.memberDeps())
	s.invalidateOn(err, memberWrites)
	return m, err
}

// UpdateMemberDietPlan assigns or clears a diet plan.
func (s *Service) UpdateMemberDietPlan(ctx context.Context, caller account.Caller, id int64, plan *fitness.DietPlan) (member.Member, error) {
	m, err := orchestrators.ExecuteUpdateMemberDietPlan(ctx, caller, id, plan, s.memberDeps())
	s.invalidateOn(err, memberWrites)
	return m, err
}

// UpdateMemberProfile lets a member edit their own details.
func (s *Service) UpdateMemberProfile(ctx context.Context, caller account.Caller, input orchestrators.UpdateMemberProfileInput) (member.Member, error) {
	m, err := orchestrators.ExecuteUpdateMemberProfile(ctx, caller, input, s.memberDeps())
	s.invalidateOn(err, []string{KeyMemberProfile, KeyMembers})
	return m, err
}

// ChangePassword replaces the calling member's password.
func (s *Service) ChangePassword(ctx context.Context, caller account.Caller, input orchestrators.ChangePasswordInput) error {
	return orchestrators.ExecuteChangePassword(ctx, caller, input, s.memberDeps())
}

// ExpireMemberships marks lapsed members expired.
func (s *Service) ExpireMemberships(ctx context.Context) (int, error) {
	n, err := orchestrators.ExecuteExpireMemberships(ctx, orchestrators.ExpireMembershipsDeps{MemberStore: s.deps.Stores.Members, Clock: s.deps.Clock})
	if n > 0 {
		s.cache.Invalidate(memberWrites...)
	}
	return n, err
}

// Seed installs the default plans and the development member.
func (s *Service) Seed(ctx context.Context, withTestMember bool) error {
	deps := orchestrators.SeedDeps{PlanStore: s.deps.Stores.Plans, MemberStore: s.deps.Stores.Members, Clock: s.deps.Clock}
	if err := orchestrators.ExecuteSeedPlans(ctx, deps); err != nil {
		return err
	}
	if withTestMember {
		if err := orchestrators.ExecuteSeedTestMember(ctx, deps); err != nil {
			return err
		}
	}
	s.cache.Purge()
	return nil
}

// --- plans ---

// AddMembershipPlan creates a plan.
func (s *Service) AddMembershipPlan(ctx context.Context, caller account.Caller, p membership.Plan) (membership.Plan, error) {
	out, err := orchestrators.ExecuteAddMembershipPlan(ctx, caller, p, orchestrators.PlanDeps{PlanStore: s.deps.Stores.Plans})
	s.invalidateOn(err, planWrites)
	return out, err
}

// UpdateMembershipPlan edits a plan.
func (s *Service) UpdateMembershipPlan(ctx context.Context, caller account.Caller, p membership.Plan) (membership.Plan, error) {
	out, err := orchestrators.ExecuteUpdateMembershipPlan(ctx, caller, p, orchestrators.PlanDeps{PlanStore: s.deps.Stores.Plans})
	s.invalidateOn(err, planWrites)
	return out, err
}

// DeleteMembershipPlan removes a plan.
func (s *Service) DeleteMembershipPlan(ctx context.Context, caller account.Caller, id string) error {
	err := orchestrators.ExecuteDeleteMembershipPlan(ctx, caller, id, orchestrators.PlanDeps{PlanStore: s.deps.Stores.Plans})
	s.invalidateOn(err, planWrites)
	return err
}

// --- payments and expenses ---

// AddPayment records a payment for a known member.
func (s *Service) AddPayment(ctx context.Context, caller account.Caller, input orchestrators.AddPaymentInput) (payment.Payment, error) {
	p, err := orchestrators.ExecuteAddPayment(ctx, caller, input, s.paymentDeps())
	s.invalidateOn(err, paymentWrites)
	return p, err
}

// AddPaymentByIdentifier records a payment for the member with an email or phone.
func (s *Service) AddPaymentByIdentifier(ctx context.Context, caller account.Caller, input orchestrators.AddPaymentByIdentifierInput) (payment.Payment, error) {
	p, err := orchestrators.ExecuteAddPaymentByIdentifier(ctx, caller, input, s.paymentDeps())
	s.invalidateOn(err, paymentWrites)
	return p, err
}

// UpdatePayment edits a payment.
func (s *Service) UpdatePayment(ctx context.Context, caller account.Caller, p payment.Payment) (payment.Payment, error) {
	out, err := orchestrators.ExecuteUpdatePayment(ctx, caller, p, s.paymentDeps())
	s.invalidateOn(err, paymentWrites)
	return out, err
}

// DeletePayment removes a payment.
func (s *Service) DeletePayment(ctx context.Context, caller account.Caller, id string) error {
	err := orchestrators.ExecuteDeletePayment(ctx, caller, id, s.paymentDeps())
	s.invalidateOn(err, paymentWrites)
	return err
}

// AddExpense records an expense.
func (s *Service) AddExpense(ctx context.Context, caller account.Caller, input orchestrators.AddExpenseInput) (expense.Expense, error) {
	e, err := orchestrators.ExecuteAddExpense(ctx, caller, input, orchestrators.ExpenseDeps{ExpenseStore: s.deps.Stores.Expenses, Clock: s.deps.Clock})
	s.invalidateOn(err, expenseWrites)
	return e, err
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, caller account.Caller, id string) error {
	err := orchestrators.ExecuteDeleteExpense(ctx, caller, id, orchestrators.ExpenseDeps{ExpenseStore: s.deps.Stores.Expenses, Clock: s.deps.Clock})
	s.invalidateOn(err, expenseWrites)
	return err
}

// --- attendance and bookings ---

// CheckIn opens a visit for the calling member.
func (s *Service) CheckIn(ctx context.Context, caller account.Caller) (attendance.Record, error) {
	r, err := orchestrators.ExecuteCheckIn(ctx, caller, s.orchestratorAttendanceDeps())
	s.invalidateOn(err, attendanceWrites)
	return r, err
}

// CheckOut closes the calling member's open visit.
func (s *Service) CheckOut(ctx context.Context, caller account.Caller) (attendance.Record, error) {
	r, err := orchestrators.ExecuteCheckOut(ctx, caller, s.orchestratorAttendanceDeps())
	s.invalidateOn(err, attendanceWrites)
	return r, err
}

// AddAttendance records a visit on a member's behalf.
func (s *Service) AddAttendance(ctx context.Context, caller account.Caller, input orchestrators.AddAttendanceInput) (attendance.Record, error) {
	r, err := orchestrators.ExecuteAddAttendance(ctx, caller, input, s.orchestratorAttendanceDeps())
	s.invalidateOn(err, attendanceWrites)
	return r, err
}

// CheckInByCode checks in the member a scanned code belongs to.
func (s *Service) CheckInByCode(ctx context.Context, caller account.Caller, code string) (attendance.Record, error) {
	r, err := orchestrators.ExecuteCheckInByCode(ctx, caller, code, s.deps.Codes, s.orchestratorAttendanceDeps())
	s.invalidateOn(err, attendanceWrites)
	return r, err
}

// AddClassBooking books the calling member into a class.
func (s *Service) AddClassBooking(ctx context.Context, caller account.Caller, input orchestrators.AddClassBookingInput) (booking.Booking, error) {
	b, err := orchestrators.ExecuteAddClassBooking(ctx, caller, input, orchestrators.BookingDeps{BookingStore: s.deps.Stores.Bookings})
	s.invalidateOn(err, bookingWrites)
	return b, err
}

// UpdateClassBooking changes a booking's status.
func (s *Service) UpdateClassBooking(ctx context.Context, caller account.Caller, input orchestrators.UpdateClassBookingInput) (booking.Booking, error) {
	b, err := orchestrators.ExecuteUpdateClassBooking(ctx, caller, input, orchestrators.BookingDeps{BookingStore: s.deps.Stores.Bookings})
	s.invalidateOn(err, bookingWrites)
	return b, err
}

// --- accounts ---

// SaveCallerUserProfile stores the caller's profile and settles their role.
func (s *Service) SaveCallerUserProfile(ctx context.Context, caller account.Caller, input orchestrators.SaveUserProfileInput) (orchestrators.SaveUserProfileResult, error) {
	res, err := orchestrators.ExecuteSaveCallerUserProfile(ctx, caller, input, s.profileDeps())
	s.invalidateOn(err, []string{KeyCurrentUserProfile, KeyUserRole, KeyRegisteredMembers, KeyMembers})
	return res, err
}

// AssignRole sets another principal's role.
func (s *Service) AssignRole(ctx context.Context, caller account.Caller, target principal.Principal, role string) error {
	err := orchestrators.ExecuteAssignRole(ctx, caller, target, role, s.profileDeps())
	s.invalidateOn(err, []string{KeyUserRole})
	return err
}

// RequestApproval files an approval request for the caller.
func (s *Service) RequestApproval(ctx context.Context, caller account.Caller) error {
	err := orchestrators.ExecuteRequestApproval(ctx, caller, s.profileDeps())
	s.invalidateOn(err, approvalWrites)
	return err
}

// SetApproval records an admin's approval decision.
func (s *Service) SetApproval(ctx context.Context, caller account.Caller, a account.Approval) error {
	err := orchestrators.ExecuteSetApproval(ctx, caller, a, s.profileDeps())
	s.invalidateOn(err, approvalWrites)
	return err
}

// --- communication ---

// LogCommunication records a message sent outside the app.
func (s *Service) LogCommunication(ctx context.Context, caller account.Caller, input orchestrators.LogCommunicationInput) (communication.LogEntry, error) {
	e, err := orchestrators.ExecuteLogCommunication(ctx, caller, input, s.communicationDeps())
	s.invalidateOn(err, commWrites)
	return e, err
}

// RetryCommunications re-sends failed emails.
func (s *Service) RetryCommunications(ctx context.Context) (orchestrators.RetryCommunicationsResult, error) {
	res, err := orchestrators.ExecuteRetryCommunications(ctx, s.communicationDeps())
	if res.Attempted > 0 {
		s.cache.Invalidate(commWrites...)
	}
	return res, err
}

// --- qr codes ---

// GenerateQRCode issues a check-in code for a member.
func (s *Service) GenerateQRCode(ctx context.Context, caller account.Caller, memberID int64) (string, error) {
	return orchestrators.ExecuteGenerateQRCode(ctx, caller, memberID, s.qrDeps())
}

// MyQRCode issues the calling member's check-in code.
func (s *Service) MyQRCode(ctx context.Context, caller account.Caller) (string, error) {
	return orchestrators.ExecuteGetMyQRCode(ctx, caller, s.qrDeps())
}

// ValidateQRCode resolves a scanned code to its member id.
func (s *Service) ValidateQRCode(ctx context.Context, caller account.Caller, code string) (int64, error) {
	return orchestrators.ExecuteValidateQRCode(ctx, caller, code, s.qrDeps())
}

// --- stripe ---

// SetStripeConfiguration stores the Stripe settings.
func (s *Service) SetStripeConfiguration(ctx context.Context, caller account.Caller, input orchestrators.SetStripeConfigurationInput) error {
	return orchestrators.ExecuteSetStripeConfiguration(ctx, caller, input, s.stripeDeps())
}

// CreateCheckoutSession starts a Stripe checkout.
func (s *Service) CreateCheckoutSession(ctx context.Context, caller account.Caller, input orchestrators.CheckoutInput) (orchestrators.CheckoutSession, error) {
	return orchestrators.ExecuteCreateCheckoutSession(ctx, caller, input, s.stripeDeps())
}

// StripeSessionStatus reports a checkout's status.
func (s *Service) StripeSessionStatus(ctx context.Context, caller account.Caller, sessionID string) (stripeAdapter.SessionStatus, error) {
	return orchestrators.ExecuteGetStripeSessionStatus(ctx, caller, sessionID, s.stripeDeps())
}
