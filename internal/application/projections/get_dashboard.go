package projections

import (
	"context"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/member"
	"primefit/internal/domain/notification"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/report"
	"primefit/internal/domain/session"
)

// RecentVisitLimit caps the visits shown on the member dashboard.
const RecentVisitLimit = 10

// DashboardDeps holds dependencies for the dashboard projections.
type DashboardDeps struct {
	Members    MembersDeps
	Payments   PaymentsDeps
	Attendance AttendanceDeps
	Reports    ReportsDeps
	Profiles   ProfilesDeps
}

// MemberDashboard is everything the member dashboard renders.
type MemberDashboard struct {
	Member        member.Member
	OpenVisit     *attendance.Record
	RecentVisits  []attendance.Record
	Payments      []payment.Payment
	Bookings      []booking.Booking
	Notifications []notification.Notification
	DaysRemaining int
}

// QueryMemberDashboard gathers the calling member's dashboard. The profile
// section comes from cached when the session carries one.
// PRE: caller acts as a member; cached is the session profile or nil
// POST: Sections are loaded concurrently; the first failure is returned
func QueryMemberDashboard(ctx context.Context, caller account.Caller, cached session.Profile, deps DashboardDeps) (MemberDashboard, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return MemberDashboard{}, err
	}

	var d MemberDashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Member, err = QueryMemberProfile(gctx, caller, cached, deps.Members)
		return err
	})
	g.Go(func() error {
		open, ok, err := QueryOpenVisit(gctx, caller, id, deps.Attendance)
		if ok {
			d.OpenVisit = &open
		}
		return err
	})
	g.Go(func() error {
		visits, err := QueryMemberAttendance(gctx, caller, id, deps.Attendance)
		if len(visits) > RecentVisitLimit {
			visits = visits[:RecentVisitLimit]
		}
		d.RecentVisits = visits
		return err
	})
	g.Go(func() (err error) {
		d.Payments, err = QueryMemberPayments(gctx, caller, id, deps.Payments)
		return err
	})
	g.Go(func() (err error) {
		d.Bookings, err = QueryMemberClassBookings(gctx, caller, id, deps.Attendance)
		return err
	})
	g.Go(func() (err error) {
		d.Notifications, err = QueryMemberNotifications(gctx, caller, id, deps.Reports)
		return err
	})
	if err := g.Wait(); err != nil {
		return MemberDashboard{}, err
	}

	if left := d.Member.EndDate.Sub(deps.Reports.now()); left > 0 {
		d.DaysRemaining = int(left.Hours() / 24)
	}
	return d, nil
}

// AdminDashboard is everything the admin dashboard renders.
type AdminDashboard struct {
	Report           report.Summary
	ActiveMembers    int
	ExpiringSoon     int
	PendingApprovals int
	UpcomingBookings []booking.Booking
}

// QueryAdminDashboard gathers the admin overview.
// PRE: caller is an admin
func QueryAdminDashboard(ctx context.Context, caller account.Caller, deps DashboardDeps) (AdminDashboard, error) {
	if err := caller.RequireAdmin(); err != nil {
		return AdminDashboard{}, err
	}

	var (
		d         AdminDashboard
		approvals []account.Approval
		booked    []booking.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Report, err = QueryReports(gctx, caller, deps.Reports)
		return err
	})
	g.Go(func() (err error) {
		approvals, err = QueryApprovals(gctx, caller, deps.Profiles)
		return err
	})
	g.Go(func() (err error) {
		booked, err = QueryClassBookingsByStatus(gctx, caller, booking.StatusBooked, deps.Attendance)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminDashboard{}, err
	}

	now := deps.Reports.now()
	d.ActiveMembers = lo.CountBy(d.Report.Members, func(l report.MemberLine) bool {
		return l.Member.MembershipStatus == member.StatusActive
	})
	d.ExpiringSoon = lo.CountBy(d.Report.Members, func(l report.MemberLine) bool { return l.IsExpiringSoon })
	d.PendingApprovals = lo.CountBy(approvals, func(a account.Approval) bool { return a.Status == account.ApprovalPending })
	d.UpcomingBookings = lo.Filter(booked, func(b booking.Booking, _ int) bool { return !b.Date.Before(now.Add(-time.Hour)) })
	return d, nil
}
