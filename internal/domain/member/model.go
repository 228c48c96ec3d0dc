package member

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"primefit/internal/domain/fitness"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/principal"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 100
	MaxEmailLength    = 254
	MaxPhoneLength    = 32
	MinPasswordLength = 6
)

// ExpiringSoonWindow is how close to EndDate a membership counts as expiring.
const ExpiringSoonWindow = 7 * 24 * time.Hour

// Membership status constants
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusPending = "pending"
)

// Domain errors
var (
	ErrEmptyName        = errors.New("member name cannot be empty")
	ErrNameTooLong      = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail     = errors.New("member email must be valid")
	ErrPhoneTooLong     = errors.New("member phone cannot exceed 32 characters")
	ErrInvalidStatus    = errors.New("status must be 'active', 'expired', or 'pending'")
	ErrInvalidDates     = errors.New("membership end date cannot be before start date")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Member is a gym member profile.
// Members created by an admin carry the anonymous principal and log in with
// email/password; members who signed in through the identity provider carry
// their own principal.
type Member struct {
	ID               int64                `json:"id,string"`
	Principal        principal.Principal  `json:"principal"`
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Phone            string               `json:"phone"`
	MembershipStatus string               `json:"membershipStatus"`
	StartDate        time.Time            `json:"startDate"`
	EndDate          time.Time            `json:"endDate"`
	MembershipPlan   membership.Plan      `json:"membershipPlan"`
	WorkoutPlan      *fitness.WorkoutPlan `json:"workoutPlan,omitempty"`
	DietPlan         *fitness.DietPlan    `json:"dietPlan,omitempty"`
	ProfilePicURL    string               `json:"profilePic,omitempty"`
	PasswordHash     string               `json:"-"`
}

// Minimal is the id/name projection used by pickers.
type Minimal struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(m.Email) > MaxEmailLength || !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if len(m.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	if !IsValidStatus(m.MembershipStatus) {
		return ErrInvalidStatus
	}
	if !m.StartDate.IsZero() && !m.EndDate.IsZero() && m.EndDate.Before(m.StartDate) {
		return ErrInvalidDates
	}
	return nil
}

// IsValidStatus reports whether s is a membership status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusExpired, StatusPending:
		return true
	}
	return false
}

// NormalizeEmail lower-cases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes and stores a member password using bcrypt.
// PRE: plaintext has at least MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (m *Member) SetPassword(plaintext string) error {
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Member fields are not mutated
func (m *Member) CheckPassword(plaintext string) error {
	if m.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// HasCredentials reports whether the member can log in with email/password.
func (m *Member) HasCredentials() bool {
	return m.PasswordHash != ""
}

// StartPlan enrols the member on plan starting at start.
// PRE: plan has been validated
// POST: MembershipPlan, StartDate, EndDate set and status is active
func (m *Member) StartPlan(plan membership.Plan, start time.Time) {
	m.MembershipPlan = plan
	m.StartDate = start
	m.EndDate = plan.EndDate(start)
	m.MembershipStatus = StatusActive
}

// IsExpired reports whether the membership has run out at now.
// INVARIANT: Member fields are not mutated
func (m *Member) IsExpired(now time.Time) bool {
	if m.MembershipStatus == StatusExpired {
		return true
	}
	return !m.EndDate.IsZero() && now.After(m.EndDate)
}

// IsExpiringSoon reports whether an unexpired membership ends within ExpiringSoonWindow.
// INVARIANT: Member fields are not mutated
func (m *Member) IsExpiringSoon(now time.Time) bool {
	if m.IsExpired(now) || m.EndDate.IsZero() {
		return false
	}
	return m.EndDate.Sub(now) <= ExpiringSoonWindow
}

// Expire moves an active member past EndDate to expired.
// PRE: none
// POST: Returns true when the status changed
func (m *Member) Expire(now time.Time) bool {
	if m.MembershipStatus != StatusActive || m.EndDate.IsZero() || !now.After(m.EndDate) {
		return false
	}
	m.MembershipStatus = StatusExpired
	return true
}

// ToMinimal projects the member to its id/name pair.
func (m *Member) ToMinimal() Minimal {
	return Minimal{ID: m.ID, Name: m.Name}
}
