package projections

import (
	"context"
	"errors"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/account"
	"primefit/internal/domain/principal"
)

// ProfilesDeps holds dependencies for profile, role and approval queries.
type ProfilesDeps struct {
	AccountStore AccountStore
}

// QueryCallerUserProfile returns the caller's saved profile.
// PRE: caller is principal-authenticated
// POST: Returns nil when the caller has not saved a profile
func QueryCallerUserProfile(ctx context.Context, caller account.Caller, deps ProfilesDeps) (*account.UserProfile, error) {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return nil, err
	}
	return lookupProfile(ctx, p, deps)
}

// QueryCallerUserRole returns the caller's role; guest when never assigned.
// PRE: caller is principal-authenticated
func QueryCallerUserRole(ctx context.Context, caller account.Caller, deps ProfilesDeps) (string, error) {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return "", err
	}
	return deps.AccountStore.GetRole(ctx, p)
}

// QueryUserProfile returns another principal's profile.
// PRE: caller is an admin or is p
func QueryUserProfile(ctx context.Context, caller account.Caller, p principal.Principal, deps ProfilesDeps) (*account.UserProfile, error) {
	if err := requireSelfOrAdmin(caller, p); err != nil {
		return nil, err
	}
	return lookupProfile(ctx, p, deps)
}

// QueryUserRole returns another principal's role.
// PRE: caller is an admin or is p
func QueryUserRole(ctx context.Context, caller account.Caller, p principal.Principal, deps ProfilesDeps) (string, error) {
	if err := requireSelfOrAdmin(caller, p); err != nil {
		return "", err
	}
	return deps.AccountStore.GetRole(ctx, p)
}

// QueryIsCallerAdmin reports whether the caller holds the admin role.
// PRE: none
func QueryIsCallerAdmin(ctx context.Context, caller account.Caller, deps ProfilesDeps) (bool, error) {
	if caller.Principal.IsAnonymous() {
		return false, nil
	}
	role, err := deps.AccountStore.GetRole(ctx, caller.Principal)
	if err != nil {
		return false, err
	}
	return role == account.RoleAdmin, nil
}

// QueryIsAdminRegistered reports whether any principal holds the admin role.
// PRE: none
func QueryIsAdminRegistered(ctx context.Context, deps ProfilesDeps) (bool, error) {
	return deps.AccountStore.AdminExists(ctx)
}

// QueryIsCallerApproved reports whether an admin has approved the caller.
// Admins are always approved.
// PRE: none
func QueryIsCallerApproved(ctx context.Context, caller account.Caller, deps ProfilesDeps) (bool, error) {
	if caller.Principal.IsAnonymous() {
		return false, nil
	}
	if admin, err := QueryIsCallerAdmin(ctx, caller, deps); err != nil || admin {
		return admin, err
	}
	a, err := deps.AccountStore.GetApproval(ctx, caller.Principal)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Status == account.ApprovalApproved, nil
}

// QueryApprovals lists every approval request and decision.
// PRE: caller is an admin
func QueryApprovals(ctx context.Context, caller account.Caller, deps ProfilesDeps) ([]account.Approval, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.AccountStore.ListApprovals(ctx)
}

func lookupProfile(ctx context.Context, p principal.Principal, deps ProfilesDeps) (*account.UserProfile, error) {
	u, err := deps.AccountStore.GetProfile(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func requireSelfOrAdmin(caller account.Caller, p principal.Principal) error {
	if caller.Principal.IsAnonymous() {
		return account.ErrUnauthenticated
	}
	if !caller.IsAdmin() && !caller.Principal.Equal(p) {
		return account.ErrForbidden
	}
	return nil
}
