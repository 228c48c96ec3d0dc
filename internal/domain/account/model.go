package account

import (
	"errors"
	"strings"

	"primefit/internal/domain/principal"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// AppRole is the role a principal user claims on their profile.
const (
	AppRoleAdmin  = "Admin"
	AppRoleMember = "Member"
)

// Access-control roles. Principals without an assignment are guests.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// Approval status constants
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ValidRoles contains all valid access-control role values.
var ValidRoles = []string{RoleAdmin, RoleUser, RoleGuest}

// Domain errors
var (
	ErrAnonymous         = errors.New("anonymous principal cannot hold a profile")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name cannot exceed 100 characters")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrInvalidAppRole    = errors.New("app role must be 'Admin' or 'Member'")
	ErrInvalidRole       = errors.New("role must be one of: admin, user, guest")
	ErrInvalidApproval   = errors.New("approval status must be 'pending', 'approved', or 'rejected'")
	ErrAdminAlreadyTaken = errors.New("an admin is already registered")
)

// UserProfile is the profile a principal-authenticated user saves for themselves.
type UserProfile struct {
	Principal     principal.Principal `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	AppRole       string              `json:"role"`
	ProfilePicURL string              `json:"profilePic,omitempty"`
}

// Approval records whether an administrator has let a principal in.
type Approval struct {
	Principal principal.Principal `json:"principal"`
	Status    string              `json:"status"`
}

// Validate checks if the UserProfile has valid data.
// PRE: UserProfile is populated
// POST: Returns nil if valid, error otherwise
func (u *UserProfile) Validate() error {
	if u.Principal.IsAnonymous() {
		return ErrAnonymous
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if len(u.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if u.Email != "" && (len(u.Email) > MaxEmailLength || !strings.Contains(u.Email, "@")) {
		return ErrInvalidEmail
	}
	if u.AppRole != AppRoleAdmin && u.AppRole != AppRoleMember {
		return ErrInvalidAppRole
	}
	return nil
}

// AccessRole maps the profile's app role onto an access-control role.
func (u *UserProfile) AccessRole() string {
	if u.AppRole == AppRoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// ResolveRegistration decides the access role for a principal saving a profile.
// currentRole is the role already assigned, or "" when none was ever assigned.
// PRE: u has been validated
// POST: Returns the (possibly downgraded) profile and the role to assign
// INVARIANT: only the first registrant can claim Admin
//
// The first registrant becomes admin when no admin exists, whatever they
// asked for. An assigned role is kept. Later Admin claims are downgraded
// to Member.
func ResolveRegistration(u UserProfile, adminExists bool, currentRole string) (UserProfile, string) {
	switch {
	case currentRole == RoleAdmin, currentRole == "" && !adminExists:
		u.AppRole = AppRoleAdmin
		return u, RoleAdmin
	case currentRole == "":
		currentRole = RoleUser
	}
	if u.AppRole == AppRoleAdmin {
		u.AppRole = AppRoleMember
	}
	return u, currentRole
}

// Validate checks if the Approval has valid data.
func (a *Approval) Validate() error {
	if a.Principal.IsAnonymous() {
		return ErrAnonymous
	}
	switch a.Status {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return nil
	}
	return ErrInvalidApproval
}

// IsValidRole reports whether role is a known access-control role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
