package booking

import (
	"errors"
	"time"
)

// Class type constants
const (
	ClassYoga     = "yoga"
	ClassCrossfit = "crossfit"
	ClassZumba    = "zumba"
	ClassPilates  = "pilates"
)

// Booking status constants
const (
	StatusBooked    = "booked"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ClassTypes lists the bookable classes in display order.
var ClassTypes = []string{ClassYoga, ClassCrossfit, ClassZumba, ClassPilates}

// Domain errors
var (
	ErrNoMember         = errors.New("booking must be associated with a member")
	ErrInvalidClassType = errors.New("class type must be 'yoga', 'crossfit', 'zumba', or 'pilates'")
	ErrInvalidStatus    = errors.New("status must be 'booked', 'completed', or 'cancelled'")
	ErrNoDate           = errors.New("booking date must be set")
	ErrFinalized        = errors.New("completed or cancelled bookings cannot change")
)

// Booking is a member's reservation for a class.
type Booking struct {
	ID        string    `json:"id"`
	MemberID  int64     `json:"memberId,string"`
	ClassType string    `json:"classType"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (b *Booking) Validate() error {
	if b.MemberID <= 0 {
		return ErrNoMember
	}
	if !IsValidClassType(b.ClassType) {
		return ErrInvalidClassType
	}
	if !IsValidStatus(b.Status) {
		return ErrInvalidStatus
	}
	if b.Date.IsZero() {
		return ErrNoDate
	}
	return nil
}

// TransitionTo moves the booking to status.
// PRE: status is valid
// POST: Status updated unless the booking was already final
// INVARIANT: completed and cancelled are terminal
func (b *Booking) TransitionTo(status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	if b.Status == status {
		return nil
	}
	if b.Status != StatusBooked {
		return ErrFinalized
	}
	b.Status = status
	return nil
}

// IsValidClassType reports whether c is a known class.
func IsValidClassType(c string) bool {
	for _, t := range ClassTypes {
		if t == c {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	return s == StatusBooked || s == StatusCompleted || s == StatusCancelled
}
