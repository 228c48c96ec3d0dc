package account

import (
	"errors"

	"primefit/internal/domain/principal"
)

// Authorization errors
var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("not allowed")
)

// Caller is whoever invokes an operation, as resolved for the current request.
// A principal-authenticated caller has a non-anonymous Principal and the
// role assigned to it. An email/password member has the anonymous principal,
// RoleUser and MemberID set. MemberID is zero when no member record exists.
type Caller struct {
	Principal principal.Principal
	Role      string
	MemberID  int64
}

// Guest is the caller of an unauthenticated request.
func Guest() Caller {
	return Caller{Principal: principal.Anonymous(), Role: RoleGuest}
}

// IsAuthenticated reports whether the caller signed in by either mode.
func (c Caller) IsAuthenticated() bool {
	return !c.Principal.IsAnonymous() || c.MemberID > 0
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin && !c.Principal.IsAnonymous()
}

// RequireAdmin returns ErrForbidden unless the caller is an admin.
func (c Caller) RequireAdmin() error {
	if !c.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !c.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireMember returns the member id the caller acts as.
// POST: Returns ErrForbidden when the caller has no member record
func (c Caller) RequireMember() (int64, error) {
	if !c.IsAuthenticated() {
		return 0, ErrUnauthenticated
	}
	if c.MemberID <= 0 || c.Role == RoleGuest {
		return 0, ErrForbidden
	}
	return c.MemberID, nil
}

// RequirePrincipal returns the caller principal for principal-only operations.
func (c Caller) RequirePrincipal() (principal.Principal, error) {
	if c.Principal.IsAnonymous() {
		return principal.Principal{}, ErrUnauthenticated
	}
	return c.Principal, nil
}

// CanActOn reports whether the caller may touch data owned by memberID.
func (c Caller) CanActOn(memberID int64) bool {
	return c.IsAdmin() || (c.MemberID > 0 && c.MemberID == memberID && c.Role != RoleGuest)
}
