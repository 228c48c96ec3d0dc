package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"primefit/internal/adapters/storage"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/attendance"
)

// AttendanceDeps holds dependencies for check-in and check-out.
type AttendanceDeps struct {
	AttendanceStore AttendanceStore
	MemberStore     MemberStore
	Clock           Clock
}

// ExecuteCheckIn opens a visit for the calling member.
// PRE: caller acts as a member
// POST: Attendance record with CheckInTime=now persisted
// INVARIANT: a member has at most one open visit
func ExecuteCheckIn(ctx context.Context, caller account.Caller, deps AttendanceDeps) (attendance.Record, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return attendance.Record{}, err
	}
	return checkIn(ctx, id, deps)
}

// ExecuteCheckOut closes the calling member's open visit.
// PRE: caller acts as a member with an open check-in
// POST: CheckOutTime=now persisted
func ExecuteCheckOut(ctx context.Context, caller account.Caller, deps AttendanceDeps) (attendance.Record, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return attendance.Record{}, err
	}
	open, err := deps.AttendanceStore.GetOpenByMemberID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return attendance.Record{}, attendance.ErrNotCheckedIn
	}
	if err != nil {
		return attendance.Record{}, err
	}
	if err := open.CheckOut(deps.Clock.now()); err != nil {
		return attendance.Record{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, open); err != nil {
		return attendance.Record{}, err
	}
	slog.Info("checkin_event", "event", "member_checked_out", "member_id", id, "minutes", int(open.Duration(*open.CheckOutTime).Minutes()))
	return open, nil
}

// AddAttendanceInput carries an attendance record entered by an admin.
type AddAttendanceInput struct {
	MemberID     int64      `json:"memberId,string" validate:"gt=0"`
	CheckInTime  time.Time  `json:"checkInTime" validate:"required"`
	CheckOutTime *time.Time `json:"checkOutTime"`
}

// ExecuteAddAttendance records a visit on a member's behalf.
// PRE: caller is an admin; member exists
// POST: Attendance record persisted
func ExecuteAddAttendance(ctx context.Context, caller account.Caller, input AddAttendanceInput, deps AttendanceDeps) (attendance.Record, error) {
	if err := caller.RequireAdmin(); err != nil {
		return attendance.Record{}, err
	}
	if err := validation.Struct(input); err != nil {
		return attendance.Record{}, err
	}
	if _, err := deps.MemberStore.GetByID(ctx, input.MemberID); err != nil {
		return attendance.Record{}, err
	}
	r := attendance.Record{
		ID:           uuid.New().String(),
		MemberID:     input.MemberID,
		CheckInTime:  input.CheckInTime,
		CheckOutTime: input.CheckOutTime,
	}
	if err := r.Validate(); err != nil {
		return attendance.Record{}, validation.Invalid(err)
	}
	if err := deps.AttendanceStore.Save(ctx, r); err != nil {
		return attendance.Record{}, err
	}
	slog.Info("checkin_event", "event", "attendance_added", "member_id", r.MemberID)
	return r, nil
}

// CodeValidator resolves a check-in code to a member id.
type CodeValidator interface {
	Validate(code string) (int64, error)
}

// ExecuteCheckInByCode checks in the member a scanned QR code belongs to.
// PRE: caller is an admin at the front desk
// POST: Attendance record persisted for the code's member
func ExecuteCheckInByCode(ctx context.Context, caller account.Caller, code string, codes CodeValidator, deps AttendanceDeps) (attendance.Record, error) {
	if err := caller.RequireAdmin(); err != nil {
		return attendance.Record{}, err
	}
	id, err := codes.Validate(code)
	if err != nil {
		return attendance.Record{}, validation.Invalid(err)
	}
	if _, err := deps.MemberStore.GetByID(ctx, id); err != nil {
		return attendance.Record{}, err
	}
	return checkIn(ctx, id, deps)
}

func checkIn(ctx context.Context, memberID int64, deps AttendanceDeps) (attendance.Record, error) {
	_, err := deps.AttendanceStore.GetOpenByMemberID(ctx, memberID)
	if err == nil {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return attendance.Record{}, fmt.Errorf("open visit lookup: %w", err)
	}

	r := attendance.Record{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		CheckInTime: deps.Clock.now(),
	}
	if err := r.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if err := deps.AttendanceStore.Save(ctx, r); err != nil {
		return attendance.Record{}, err
	}
	slog.Info("checkin_event", "event", "member_checked_in", "member_id", memberID)
	return r, nil
}
