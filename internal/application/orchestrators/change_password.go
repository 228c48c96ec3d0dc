package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
)

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

var (
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
)

// ExecuteChangePassword replaces the calling member's password.
// PRE: caller acts as a member with an email login
// POST: Password is re-hashed and saved
func ExecuteChangePassword(ctx context.Context, caller account.Caller, input ChangePasswordInput, deps MemberDeps) error {
	id, err := caller.RequireMember()
	if err != nil {
		return err
	}
	if err := validation.Struct(input); err != nil {
		return err
	}

	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := m.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return validation.Invalid(ErrNewPasswordSame)
	}
	if err := m.SetPassword(input.NewPassword); err != nil {
		return validation.Invalid(err)
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_changed", "member_id", id)
	return nil
}
