package account

import (
	"context"

	domain "primefit/internal/domain/account"
	"primefit/internal/domain/principal"
)

// Store persists principal user profiles, role assignments and approvals.
type Store interface {
	GetProfile(ctx context.Context, p principal.Principal) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, value domain.UserProfile) error
	// GetRole returns RoleGuest for principals without an assignment.
	GetRole(ctx context.Context, p principal.Principal) (string, error)
	// LookupRole reports the assigned role and whether one was ever assigned.
	LookupRole(ctx context.Context, p principal.Principal) (string, bool, error)
	ListRoles(ctx context.Context) (map[string]string, error)
	SetRole(ctx context.Context, p principal.Principal, role string) error
	AdminExists(ctx context.Context) (bool, error)
	GetApproval(ctx context.Context, p principal.Principal) (domain.Approval, error)
	SetApproval(ctx context.Context, value domain.Approval) error
	ListApprovals(ctx context.Context) ([]domain.Approval, error)
}
