// Package identity decides which view a request is shown from the identity
// inputs gathered for it. It performs no I/O; callers gather the inputs and
// carry out the returned effects.
package identity

import (
	"primefit/internal/domain/account"
	"primefit/internal/domain/session"
)

// View is the page the resolver selects.
type View int

const (
	ViewLoading View = iota
	ViewConnectionError
	ViewLogin
	ViewMemberDashboard
	ViewMemberProfileNotFound
	ViewProfileError
	ViewNoProfile
	ViewAdminDashboard
	ViewAccessDenied
)

var viewNames = map[View]string{
	ViewLoading:               "loading",
	ViewConnectionError:       "connection_error",
	ViewLogin:                 "login",
	ViewMemberDashboard:       "member_dashboard",
	ViewMemberProfileNotFound: "member_profile_not_found",
	ViewProfileError:          "profile_error",
	ViewNoProfile:             "no_profile",
	ViewAdminDashboard:        "admin_dashboard",
	ViewAccessDenied:          "access_denied",
}

// String returns the view name used in logs and metrics.
func (v View) String() string {
	if s, ok := viewNames[v]; ok {
		return s
	}
	return "unknown"
}

// Mode is the identity mode a request resolved to.
type Mode int

const (
	ModeNone Mode = iota
	ModePrincipal
	ModeMember
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModePrincipal:
		return "principal"
	case ModeMember:
		return "member"
	default:
		return "none"
	}
}

// FetchStatus is the progress of one remote lookup.
type FetchStatus int

const (
	FetchLoading FetchStatus = iota
	FetchFailed
	FetchDone
)

// Fetch is the outcome of one remote lookup. Found is meaningful only when Done.
type Fetch struct {
	Status FetchStatus
	Found  bool
}

// Loading reports an unfinished fetch.
func Loading() Fetch { return Fetch{Status: FetchLoading} }

// Failed reports a failed fetch.
func Failed() Fetch { return Fetch{Status: FetchFailed} }

// Found reports a finished fetch that returned a value.
func Found() Fetch { return Fetch{Status: FetchDone, Found: true} }

// Missing reports a finished fetch that returned nothing.
func Missing() Fetch { return Fetch{Status: FetchDone} }

// RoleFetch is the outcome of the caller-role lookup.
type RoleFetch struct {
	Status FetchStatus
	Role   string
}

// Inputs is everything the resolver looks at for one request.
type Inputs struct {
	// Initializing is true until the identity provider handle has been read.
	Initializing bool
	// BackendAvailable is false when the store cannot be reached.
	BackendAvailable bool
	// HasPrincipal is true when a verified principal handle is present.
	HasPrincipal bool
	// MemberSession is the state of the memberAuth record.
	MemberSession session.State
	// MemberProfile is the email/password member's profile lookup.
	MemberProfile Fetch
	// UserProfile is the principal's profile lookup.
	UserProfile Fetch
	// Role is the principal's access-control role lookup.
	Role RoleFetch
}

// Decision is the resolver's output.
type Decision struct {
	View View
	Mode Mode
	// ClearMemberSession asks the caller to remove both member session keys.
	ClearMemberSession bool
}

// Resolve applies the identity rules to in.
// PRE: none
// POST: Returns exactly one view; ClearMemberSession is set only for corrupted records
// INVARIANT: a principal with a non-admin role never reaches ViewAdminDashboard
func Resolve(in Inputs) Decision {
	if in.Initializing {
		return Decision{View: ViewLoading}
	}

	corrupted := in.MemberSession == session.StateCorrupted
	memberMode := in.MemberSession == session.StateAuthenticated

	if in.HasPrincipal {
		d := resolvePrincipal(in)
		d.ClearMemberSession = corrupted
		return d
	}

	if !memberMode {
		return Decision{View: ViewLogin, ClearMemberSession: corrupted}
	}

	if !in.BackendAvailable {
		return Decision{View: ViewConnectionError, Mode: ModeMember}
	}
	switch {
	case in.MemberProfile.Status == FetchLoading:
		return Decision{View: ViewLoading, Mode: ModeMember}
	case in.MemberProfile.Status == FetchDone && in.MemberProfile.Found:
		return Decision{View: ViewMemberDashboard, Mode: ModeMember}
	default:
		return Decision{View: ViewMemberProfileNotFound, Mode: ModeMember}
	}
}

// resolvePrincipal picks the view for a signed-in principal. Only RoleUser
// is member-level; RoleGuest and any unknown role get ViewAccessDenied.
func resolvePrincipal(in Inputs) Decision {
	d := Decision{Mode: ModePrincipal}
	if !in.BackendAvailable {
		d.View = ViewConnectionError
		return d
	}
	switch {
	case in.UserProfile.Status == FetchLoading || in.Role.Status == FetchLoading:
		d.View = ViewLoading
	case in.UserProfile.Status == FetchFailed || in.Role.Status == FetchFailed:
		d.View = ViewProfileError
	case !in.UserProfile.Found:
		d.View = ViewNoProfile
	case in.Role.Role == account.RoleAdmin:
		d.View = ViewAdminDashboard
	case in.Role.Role == account.RoleUser:
		d.View = ViewMemberDashboard
	default:
		d.View = ViewAccessDenied
	}
	return d
}
