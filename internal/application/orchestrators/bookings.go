package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/booking"
)

// BookingDeps holds dependencies for class bookings.
type BookingDeps struct {
	BookingStore BookingStore
}

// AddClassBookingInput carries a member's class booking.
type AddClassBookingInput struct {
	ClassType string    `json:"classType" validate:"classtype"`
	Date      time.Time `json:"date" validate:"required"`
}

// ExecuteAddClassBooking books the calling member into a class.
// PRE: caller acts as a member
// POST: Booking persisted with status booked
func ExecuteAddClassBooking(ctx context.Context, caller account.Caller, input AddClassBookingInput, deps BookingDeps) (booking.Booking, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return booking.Booking{}, err
	}
	if err := validation.Struct(input); err != nil {
		return booking.Booking{}, err
	}
	b := booking.Booking{
		ID:        uuid.New().String(),
		MemberID:  id,
		ClassType: input.ClassType,
		Date:      input.Date,
		Status:    booking.StatusBooked,
	}
	if err := b.Validate(); err != nil {
		return booking.Booking{}, validation.Invalid(err)
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return booking.Booking{}, err
	}
	slog.Info("booking_event", "event", "class_booked", "booking_id", b.ID, "member_id", id, "class_type", b.ClassType)
	return b, nil
}

// UpdateClassBookingInput moves a booking to a new status.
type UpdateClassBookingInput struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"bookingstatus"`
}

// ExecuteUpdateClassBooking changes a booking's status.
// PRE: caller owns the booking or is an admin
// POST: Booking persisted
// INVARIANT: completed and cancelled bookings do not change again
func ExecuteUpdateClassBooking(ctx context.Context, caller account.Caller, input UpdateClassBookingInput, deps BookingDeps) (booking.Booking, error) {
	if !caller.IsAuthenticated() {
		return booking.Booking{}, account.ErrUnauthenticated
	}
	if err := validation.Struct(input); err != nil {
		return booking.Booking{}, err
	}
	b, err := deps.BookingStore.GetByID(ctx, input.ID)
	if err != nil {
		return booking.Booking{}, err
	}
	if !caller.CanActOn(b.MemberID) {
		return booking.Booking{}, account.ErrForbidden
	}
	if err := b.TransitionTo(input.Status); err != nil {
		return booking.Booking{}, validation.Invalid(err)
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return booking.Booking{}, err
	}
	slog.Info("booking_event", "event", "booking_updated", "booking_id", b.ID, "status", b.Status)
	return b, nil
}
