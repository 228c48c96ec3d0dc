package attendance

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrNoMember         = errors.New("attendance must be associated with a member")
	ErrNoCheckIn        = errors.New("check-in time must be set")
	ErrCheckOutBefore   = errors.New("check-out time cannot be before check-in time")
	ErrAlreadyCheckedIn = errors.New("member is already checked in")
	ErrNotCheckedIn     = errors.New("member has no open check-in")
)

// Record is one visit to the gym.
type Record struct {
	ID           string     `json:"id"`
	MemberID     int64      `json:"memberId,string"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID must be set, CheckInTime must be set
func (a *Record) Validate() error {
	if a.MemberID <= 0 {
		return ErrNoMember
	}
	if a.CheckInTime.IsZero() {
		return ErrNoCheckIn
	}
	if a.CheckOutTime != nil && a.CheckOutTime.Before(a.CheckInTime) {
		return ErrCheckOutBefore
	}
	return nil
}

// IsCheckedOut returns true if the member has checked out.
func (a *Record) IsCheckedOut() bool {
	return a.CheckOutTime != nil
}

// CheckOut closes the visit at t.
// PRE: Record is open
// POST: CheckOutTime is t
func (a *Record) CheckOut(t time.Time) error {
	if a.IsCheckedOut() {
		return ErrNotCheckedIn
	}
	if t.Before(a.CheckInTime) {
		return ErrCheckOutBefore
	}
	a.CheckOutTime = &t
	return nil
}

// Duration returns the length of the visit, or the time so far if still open.
func (a *Record) Duration(now time.Time) time.Duration {
	if a.IsCheckedOut() {
		return a.CheckOutTime.Sub(a.CheckInTime)
	}
	return now.Sub(a.CheckInTime)
}
