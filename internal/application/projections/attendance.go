package projections

import (
	"context"
	"errors"

	"primefit/internal/adapters/storage"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
	"primefit/internal/domain/booking"
	"primefit/internal/domain/member"
)

// AttendanceDeps holds dependencies for attendance and booking queries.
type AttendanceDeps struct {
	AttendanceStore AttendanceStore
	BookingStore    BookingStore
}

// QueryMemberAttendance lists a member's visits, newest first.
// PRE: caller is an admin or is the member
func QueryMemberAttendance(ctx context.Context, caller account.Caller, memberID int64, deps AttendanceDeps) ([]attendance.Record, error) {
	if err := RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return deps.AttendanceStore.ListByMemberID(ctx, memberID)
}

// QueryOpenVisit returns the member's current visit, if any.
// PRE: caller is an admin or is the member
// POST: ok is false when the member is not checked in
func QueryOpenVisit(ctx context.Context, caller account.Caller, memberID int64, deps AttendanceDeps) (attendance.Record, bool, error) {
	if err := RequireOwner(caller, memberID); err != nil {
		return attendance.Record{}, false, err
	}
	r, err := deps.AttendanceStore.GetOpenByMemberID(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return attendance.Record{}, false, nil
	}
	if err != nil {
		return attendance.Record{}, false, err
	}
	return r, true, nil
}

// QueryAttendanceByMemberStatus lists visits of members with the given membership status.
// PRE: caller is an admin; status is a membership status
func QueryAttendanceByMemberStatus(ctx context.Context, caller account.Caller, status string, deps AttendanceDeps) ([]attendance.Record, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if !member.IsValidStatus(status) {
		return nil, validation.Invalid(member.ErrInvalidStatus)
	}
	return deps.AttendanceStore.ListByMemberStatus(ctx, status)
}

// QueryMemberClassBookings lists a member's bookings by class date.
// PRE: caller is an admin or is the member
func QueryMemberClassBookings(ctx context.Context, caller account.Caller, memberID int64, deps AttendanceDeps) ([]booking.Booking, error) {
	if err := RequireOwner(caller, memberID); err != nil {
		return nil, err
	}
	return deps.BookingStore.ListByMemberID(ctx, memberID)
}

// QueryClassBookingsByStatus lists bookings in one status.
// PRE: caller is an admin
func QueryClassBookingsByStatus(ctx context.Context, caller account.Caller, status string, deps AttendanceDeps) ([]booking.Booking, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	if !booking.IsValidStatus(status) {
		return nil, validation.Invalid(booking.ErrInvalidStatus)
	}
	return deps.BookingStore.ListByStatus(ctx, status)
}
