package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/member"
)

// MemberStoreForLogin defines the store interface needed by MemberLogin.
type MemberStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
}

// MemberLoginInput carries input for the member login orchestrator.
type MemberLoginInput struct {
	Email    string
	Password string
}

// MemberLoginDeps holds dependencies for MemberLogin.
type MemberLoginDeps struct {
	MemberStore MemberStoreForLogin
}

// ErrInvalidCredentials is the only error a failed login reports.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ExecuteMemberLogin checks email/password credentials and returns the member
// whose profile the caller caches in its session.
// PRE: none
// POST: Returns the member on success; unknown email or wrong password is
// ErrInvalidCredentials, a failed lookup is returned wrapped
func ExecuteMemberLogin(ctx context.Context, input MemberLoginInput, deps MemberLoginDeps) (member.Member, error) {
	email := member.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return member.Member{}, ErrInvalidCredentials
	}

	m, err := deps.MemberStore.GetByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("auth_event", "event", "member_login_failed", "email", email, "reason", "not_found")
		return member.Member{}, ErrInvalidCredentials
	}
	if err != nil {
		return member.Member{}, fmt.Errorf("look up member: %w", err)
	}

	if err := m.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "member_login_failed", "email", email, "reason", "wrong_password")
		return member.Member{}, ErrInvalidCredentials
	}

	slog.Info("auth_event", "event", "member_login_success", "email", email, "member_id", m.ID)
	return m, nil
}
