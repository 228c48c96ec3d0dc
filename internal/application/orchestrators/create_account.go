package orchestrators

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

// GeneratedPasswordLength is the length of passwords the gym hands out.
const GeneratedPasswordLength = 10

// GeneratedEmailDomain is used when an admin creates a member without an email.
const GeneratedEmailDomain = "members.primefit.app"

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Credentials are the login details handed to a new member.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateMemberResult carries the created member and what was sent to them.
type CreateMemberResult struct {
	Member            member.Member            `json:"member"`
	Credentials       Credentials              `json:"credentials"`
	CommunicationLogs []communication.LogEntry `json:"communicationLogs"`
}

// CreateMemberDeps holds dependencies for member creation.
type CreateMemberDeps struct {
	MemberStore   MemberStore
	PlanStore     PlanStore
	Communication CommunicationDeps
	Clock         Clock
}

// AddMemberInput carries an admin-entered member with chosen credentials.
type AddMemberInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"min=6"`
	Phone         string `json:"phone" validate:"max=32"`
	PlanID        string `json:"planId" validate:"required"`
	ProfilePicURL string `json:"profilePic" validate:"omitempty,url"`
}

// CreateMemberInput carries an admin-entered member whose credentials the
// system generates. Email is generated when empty.
type CreateMemberInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=32"`
	PlanID        string `json:"planId" validate:"required"`
	ProfilePicURL string `json:"profilePic" validate:"omitempty,url"`
}

// ExecuteAddMemberWithManualCredentials creates a member who logs in with the
// given email and password, then sends them their credentials.
// PRE: caller is an admin; the plan exists
// POST: Member persisted as active on the plan; communication logs written
func ExecuteAddMemberWithManualCredentials(ctx context.Context, caller account.Caller, input AddMemberInput, deps CreateMemberDeps) (CreateMemberResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return CreateMemberResult{}, err
	}
	if err := validation.Struct(input); err != nil {
		return CreateMemberResult{}, err
	}
	return createMember(ctx, input.Name, input.Email, input.Password, input.Phone, input.PlanID, input.ProfilePicURL, deps)
}

// ExecuteCreateMemberWithCredentials creates a member with a generated
// password (and email when none is given) and sends them their credentials.
// PRE: caller is an admin; the plan exists
// POST: Member persisted; the generated password is returned once and never stored in clear
func ExecuteCreateMemberWithCredentials(ctx context.Context, caller account.Caller, input CreateMemberInput, deps CreateMemberDeps) (CreateMemberResult, error) {
	if err := caller.RequireAdmin(); err != nil {
		return CreateMemberResult{}, err
	}
	if err := validation.Struct(input); err != nil {
		return CreateMemberResult{}, err
	}
	password, err := generatePassword(GeneratedPasswordLength)
	if err != nil {
		return CreateMemberResult{}, err
	}
	email := input.Email
	if email == "" {
		email = generatedEmail(input.Name)
	}
	return createMember(ctx, input.Name, email, password, input.Phone, input.PlanID, input.ProfilePicURL, deps)
}

func createMember(ctx context.Context, name, email, password, phone, planID, pic string, deps CreateMemberDeps) (CreateMemberResult, error) {
	plan, err := deps.PlanStore.GetByID(ctx, planID)
	if err != nil {
		return CreateMemberResult{}, fmt.Errorf("membership plan: %w", err)
	}

	m := member.Member{
		Principal:     principal.Anonymous(),
		Name:          strings.TrimSpace(name),
		Email:         member.NormalizeEmail(email),
		Phone:         strings.TrimSpace(phone),
		ProfilePicURL: pic,
	}
	m.StartPlan(plan, deps.Clock.now())
	if err := m.SetPassword(password); err != nil {
		return CreateMemberResult{}, validation.Invalid(err)
	}
	if err := m.Validate(); err != nil {
		return CreateMemberResult{}, validation.Invalid(err)
	}

	id, err := deps.MemberStore.Create(ctx, m)
	if err != nil {
		return CreateMemberResult{}, err
	}
	m.ID = id
	slog.Info("member_event", "event", "member_created", "member_id", id, "plan", plan.Name)

	logs := deliverCredentials(ctx, deps.Communication, m, password)
	return CreateMemberResult{
		Member:            m,
		Credentials:       Credentials{Email: m.Email, Password: password},
		CommunicationLogs: logs,
	}, nil
}

func generatePassword(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for range n {
		i, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b.WriteByte(passwordAlphabet[i.Int64()])
	}
	return b.String(), nil
}

// generatedEmail builds a unique address from the member's name.
func generatedEmail(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '.':
			return '.'
		}
		return -1
	}, strings.ToLower(strings.TrimSpace(name)))
	slug = strings.Trim(slug, ".")
	if slug == "" {
		slug = "member"
	}
	return slug + "." + uuid.New().String()[:8] + "@" + GeneratedEmailDomain
}

// errNoMemberID guards operations that need an existing member.
var errNoMemberID = errors.New("member id is required")
