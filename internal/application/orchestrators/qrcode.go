package orchestrators

import (
	"context"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
)

// CodeIssuer signs check-in codes.
type CodeIssuer interface {
	Generate(memberID int64) (string, error)
	Validate(code string) (int64, error)
}

// QRCodeDeps holds dependencies for check-in codes.
type QRCodeDeps struct {
	Issuer      CodeIssuer
	MemberStore MemberStore
}

// ExecuteGenerateQRCode issues a check-in code for any member.
// PRE: caller is an admin; member exists
func ExecuteGenerateQRCode(ctx context.Context, caller account.Caller, memberID int64, deps QRCodeDeps) (string, error) {
	if err := caller.RequireAdmin(); err != nil {
		return "", err
	}
	if _, err := deps.MemberStore.GetByID(ctx, memberID); err != nil {
		return "", err
	}
	return deps.Issuer.Generate(memberID)
}

// ExecuteGetMyQRCode issues a check-in code for the calling member.
// PRE: caller acts as a member
func ExecuteGetMyQRCode(_ context.Context, caller account.Caller, deps QRCodeDeps) (string, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return "", err
	}
	return deps.Issuer.Generate(id)
}

// ExecuteValidateQRCode returns the member a code was issued for.
// PRE: caller is an admin
func ExecuteValidateQRCode(ctx context.Context, caller account.Caller, code string, deps QRCodeDeps) (int64, error) {
	if err := caller.RequireAdmin(); err != nil {
		return 0, err
	}
	id, err := deps.Issuer.Validate(code)
	if err != nil {
		return 0, validation.Invalid(err)
	}
	if _, err := deps.MemberStore.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}
