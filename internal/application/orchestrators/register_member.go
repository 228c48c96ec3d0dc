package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"primefit/internal/adapters/storage"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

// ProfileDeps holds dependencies for principal profiles, roles and approvals.
type ProfileDeps struct {
	AccountStore AccountStore
	MemberStore  MemberStore
	Clock        Clock
}

// SaveUserProfileInput carries the profile a principal saves for themselves.
type SaveUserProfileInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	AppRole       string `json:"role" validate:"omitempty,oneof=Admin Member"`
	ProfilePicURL string `json:"profilePic" validate:"omitempty,url"`
}

// SaveUserProfileResult reports the stored profile and the role it carries.
type SaveUserProfileResult struct {
	Profile account.UserProfile `json:"profile"`
	Role    string              `json:"role"`
}

// ExecuteSaveCallerUserProfile stores the caller's profile and settles their
// role. The first registrant while no admin exists becomes admin.
// Non-admin registrants with an email are linked to a member record: an
// unclaimed admin-created member with that email is bound to the principal,
// otherwise a pending member is created.
// PRE: caller is principal-authenticated
// POST: Profile and role persisted
func ExecuteSaveCallerUserProfile(ctx context.Context, caller account.Caller, input SaveUserProfileInput, deps ProfileDeps) (SaveUserProfileResult, error) {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return SaveUserProfileResult{}, err
	}
	if err := validation.Struct(input); err != nil {
		return SaveUserProfileResult{}, err
	}
	u := account.UserProfile{
		Principal:     p,
		Name:          strings.TrimSpace(input.Name),
		Email:         member.NormalizeEmail(input.Email),
		AppRole:       input.AppRole,
		ProfilePicURL: input.ProfilePicURL,
	}
	if u.AppRole == "" {
		u.AppRole = account.AppRoleMember
	}
	if err := u.Validate(); err != nil {
		return SaveUserProfileResult{}, validation.Invalid(err)
	}

	adminExists, err := deps.AccountStore.AdminExists(ctx)
	if err != nil {
		return SaveUserProfileResult{}, err
	}
	current, assigned, err := deps.AccountStore.LookupRole(ctx, p)
	if err != nil {
		return SaveUserProfileResult{}, err
	}
	if !assigned {
		current = ""
	}
	u, role := account.ResolveRegistration(u, adminExists, current)

	if err := deps.AccountStore.SaveProfile(ctx, u); err != nil {
		return SaveUserProfileResult{}, err
	}
	if role != current {
		if err := deps.AccountStore.SetRole(ctx, p, role); err != nil {
			return SaveUserProfileResult{}, err
		}
		slog.Info("auth_event", "event", "role_assigned", "principal", p.String(), "role", role, "first_admin", role == account.RoleAdmin && !adminExists)
	}
	if role != account.RoleAdmin && u.Email != "" {
		if err := linkMember(ctx, u, deps); err != nil {
			return SaveUserProfileResult{}, err
		}
	}
	return SaveUserProfileResult{Profile: u, Role: role}, nil
}

// linkMember binds a principal to its member record, creating one if needed.
func linkMember(ctx context.Context, u account.UserProfile, deps ProfileDeps) error {
	if _, err := deps.MemberStore.GetByPrincipal(ctx, u.Principal); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	m, err := deps.MemberStore.GetByEmail(ctx, u.Email)
	switch {
	case err == nil && m.Principal.IsAnonymous():
		m.Principal = u.Principal
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return fmt.Errorf("link member: %w", err)
		}
		slog.Info("member_event", "event", "member_linked", "member_id", m.ID, "principal", u.Principal.String())
		return nil
	case err == nil:
		slog.Warn("member_event", "event", "member_link_skipped", "member_id", m.ID, "reason", "email_claimed")
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	now := deps.Clock.now()
	m = member.Member{
		Principal:        u.Principal,
		Name:             u.Name,
		Email:            u.Email,
		MembershipStatus: member.StatusPending,
		StartDate:        now,
		EndDate:          now,
		ProfilePicURL:    u.ProfilePicURL,
	}
	id, err := deps.MemberStore.Create(ctx, m)
	if err != nil {
		return fmt.Errorf("create member for principal: %w", err)
	}
	slog.Info("member_event", "event", "member_registered", "member_id", id, "principal", u.Principal.String())
	return nil
}

// ExecuteAssignRole sets another principal's access role.
// PRE: caller is an admin; role is valid
// POST: Role persisted
// INVARIANT: an admin cannot demote themselves
func ExecuteAssignRole(ctx context.Context, caller account.Caller, target principal.Principal, role string, deps ProfileDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if target.IsAnonymous() {
		return validation.Invalid(account.ErrAnonymous)
	}
	if !account.IsValidRole(role) {
		return validation.Invalid(account.ErrInvalidRole)
	}
	if target.Equal(caller.Principal) && role != account.RoleAdmin {
		return account.ErrForbidden
	}
	if err := deps.AccountStore.SetRole(ctx, target, role); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "role_assigned", "principal", target.String(), "role", role, "by", caller.Principal.String())
	return nil
}

// ExecuteRequestApproval records that the caller is waiting to be let in.
// PRE: caller is principal-authenticated
// POST: Approval is pending
func ExecuteRequestApproval(ctx context.Context, caller account.Caller, deps ProfileDeps) error {
	p, err := caller.RequirePrincipal()
	if err != nil {
		return err
	}
	if err := deps.AccountStore.SetApproval(ctx, account.Approval{Principal: p, Status: account.ApprovalPending}); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "approval_requested", "principal", p.String())
	return nil
}

// ExecuteSetApproval decides a principal's approval.
// PRE: caller is an admin
// POST: Approval persisted
func ExecuteSetApproval(ctx context.Context, caller account.Caller, a account.Approval, deps ProfileDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return validation.Invalid(err)
	}
	if err := deps.AccountStore.SetApproval(ctx, a); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "approval_set", "principal", a.Principal.String(), "status", a.Status)
	return nil
}
