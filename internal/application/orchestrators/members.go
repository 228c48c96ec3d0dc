package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/fitness"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
)

// MemberDeps holds dependencies for member maintenance.
type MemberDeps struct {
	MemberStore MemberStore
}

// UpdateMemberInput carries the admin-editable member fields.
type UpdateMemberInput struct {
	ID               int64           `json:"id,string" validate:"gt=0"`
	Name             string          `json:"name" validate:"required,max=100"`
	Email            string          `json:"email" validate:"required,email"`
	Phone            string          `json:"phone" validate:"max=32"`
	MembershipStatus string          `json:"membershipStatus" validate:"required"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	MembershipPlan   membership.Plan `json:"membershipPlan"`
	ProfilePicURL    string          `json:"profilePic" validate:"omitempty,url"`
}

// ExecuteUpdateMember replaces a member's editable fields.
// PRE: caller is an admin; member exists
// POST: Member persisted; principal, password and fitness plans are untouched
func ExecuteUpdateMember(ctx context.Context, caller account.Caller, input UpdateMemberInput, deps MemberDeps) (member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return member.Member{}, err
	}
	if err := validation.Struct(input); err != nil {
		return member.Member{}, err
	}
	m, err := deps.MemberStore.GetByID(ctx, input.ID)
	if err != nil {
		return member.Member{}, err
	}
	if err := input.MembershipPlan.Validate(); err != nil {
		return member.Member{}, validation.Invalid(err)
	}

	m.Name = strings.TrimSpace(input.Name)
	m.Email = member.NormalizeEmail(input.Email)
	m.Phone = strings.TrimSpace(input.Phone)
	m.MembershipStatus = input.MembershipStatus
	m.StartDate = input.StartDate
	m.EndDate = input.EndDate
	m.MembershipPlan = input.MembershipPlan
	m.ProfilePicURL = input.ProfilePicURL
	if err := m.Validate(); err != nil {
		return member.Member{}, validation.Invalid(err)
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_event", "event", "member_updated", "member_id", m.ID)
	return m, nil
}

// ExecuteDeleteMember removes a member and, by cascade, their payments,
// attendance and bookings.
// PRE: caller is an admin
// POST: Member no longer exists
func ExecuteDeleteMember(ctx context.Context, caller account.Caller, id int64, deps MemberDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if id <= 0 {
		return validation.Invalid(errNoMemberID)
	}
	if err := deps.MemberStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("member_event", "event", "member_deleted", "member_id", id)
	return nil
}

// ExecuteUpdateMemberWorkoutPlan assigns or clears (nil) a member's workout plan.
// PRE: caller is an admin
// POST: Plan persisted on the member with an id assigned
func ExecuteUpdateMemberWorkoutPlan(ctx context.Context, caller account.Caller, id int64, plan *fitness.WorkoutPlan, deps MemberDeps) (member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return member.Member{}, err
	}
	if plan != nil {
		if plan.ID == "" {
			plan.ID = uuid.New().String()
		}
		if err := plan.Validate(); err != nil {
			return member.Member{}, validation.Invalid(err)
		}
	}
	return updateMember(ctx, id, deps, func(m *member.Member) { m.WorkoutPlan = plan })
}

// ExecuteUpdateMemberDietPlan assigns or clears (nil) a member's diet plan.
// PRE: caller is an admin
// POST: Plan persisted on the member with an id assigned
func ExecuteUpdateMemberDietPlan(ctx context.Context, caller account.Caller, id int64, plan *fitness.DietPlan, deps MemberDeps) (member.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return member.Member{}, err
	}
	if plan != nil {
		if plan.ID == "" {
			plan.ID = uuid.New().String()
		}
		if err := plan.Validate(); err != nil {
			return member.Member{}, validation.Invalid(err)
		}
	}
	return updateMember(ctx, id, deps, func(m *member.Member) { m.DietPlan = plan })
}

// UpdateMemberProfileInput carries the fields a member may change about themselves.
type UpdateMemberProfileInput struct {
	Name          string `json:"name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"max=32"`
	ProfilePicURL string `json:"profilePic" validate:"omitempty,url"`
}

// ExecuteUpdateMemberProfile lets a member edit their name, phone and picture.
// PRE: caller acts as a member
// POST: Returns the updated member; callers holding a session profile cache must refresh it
func ExecuteUpdateMemberProfile(ctx context.Context, caller account.Caller, input UpdateMemberProfileInput, deps MemberDeps) (member.Member, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return member.Member{}, err
	}
	if err := validation.Struct(input); err != nil {
		return member.Member{}, err
	}
	return updateMember(ctx, id, deps, func(m *member.Member) {
		m.Name = strings.TrimSpace(input.Name)
		m.Phone = strings.TrimSpace(input.Phone)
		m.ProfilePicURL = input.ProfilePicURL
	})
}

func updateMember(ctx context.Context, id int64, deps MemberDeps, apply func(*member.Member)) (member.Member, error) {
	if id <= 0 {
		return member.Member{}, validation.Invalid(errNoMemberID)
	}
	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return member.Member{}, err
	}
	apply(&m)
	if err := m.Validate(); err != nil {
		return member.Member{}, validation.Invalid(err)
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_event", "event", "member_updated", "member_id", m.ID)
	return m, nil
}
