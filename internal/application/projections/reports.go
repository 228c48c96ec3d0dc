package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"primefit/internal/adapters/storage/member"
	"primefit/internal/domain/account"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/expense"
	domainMember "primefit/internal/domain/member"
	"primefit/internal/domain/notification"
	"primefit/internal/domain/payment"
	"primefit/internal/domain/report"
)

// ReportsDeps holds dependencies for the admin report and member notifications.
type ReportsDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
	ExpenseStore ExpenseStore
	BookingStore BookingStore
	Now          func() time.Time // injectable for testing
}

func (d ReportsDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// QueryReports computes the membership and financial overview.
// PRE: caller is an admin
// POST: Stores are read concurrently; the first failure is returned
func QueryReports(ctx context.Context, caller account.Caller, deps ReportsDeps) (report.Summary, error) {
	if err := caller.RequireAdmin(); err != nil {
		return report.Summary{}, err
	}

	var (
		members  []domainMember.Member
		payments []payment.Payment
		expenses []expense.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = deps.MemberStore.List(gctx, member.ListFilter{})
		return err
	})
	g.Go(func() (err error) {
		payments, err = deps.PaymentStore.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = deps.ExpenseStore.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(members, payments, expenses, deps.now()), nil
}

// QueryMemberNotifications derives the banners a member should see.
// PRE: caller is an admin or is the member
// POST: Notifications ordered by priority
func QueryMemberNotifications(ctx context.Context, caller account.Caller, memberID int64, deps ReportsDeps) ([]notification.Notification, error) {
	if err := RequireOwner(caller, memberID); err != nil {
		return nil, err
	}

	var (
		m        domainMember.Member
		payments []payment.Payment
		bookings []booking.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m, err = deps.MemberStore.GetByID(gctx, memberID)
		return err
	})
	g.Go(func() (err error) {
		payments, err = deps.PaymentStore.ListByMemberID(gctx, memberID)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = deps.BookingStore.ListByMemberID(gctx, memberID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return notification.Derive(m, payments, bookings, deps.now()), nil
}
