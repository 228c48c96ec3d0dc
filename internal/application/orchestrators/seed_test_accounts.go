package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/principal"
)

// SeedDeps holds stores needed for seeding.
type SeedDeps struct {
	PlanStore   seedPlanStore
	MemberStore seedMemberStore
	Clock       Clock
}

type seedPlanStore interface {
	List(ctx context.Context) ([]membership.Plan, error)
	Save(ctx context.Context, p membership.Plan) error
}

type seedMemberStore interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	Create(ctx context.Context, m member.Member) (int64, error)
}

// TestMemberEmail and TestMemberPassword are the development login.
const (
	TestMemberEmail    = "a@b.com"
	TestMemberPassword = "secret1"
)

// defaultPlans are offered on a fresh install.
func defaultPlans() []membership.Plan {
	return []membership.Plan{
		{ID: "plan-monthly", Name: "Monthly", DurationMonths: 1, Price: 50, Benefits: "- Gym floor access\n- One class per week"},
		{ID: "plan-quarterly", Name: "Quarterly", DurationMonths: 3, Price: 135, Benefits: "- Gym floor access\n- **Unlimited** classes"},
		{ID: "plan-annual", Name: "Annual", DurationMonths: 12, Price: 480, Benefits: "- Gym floor access\n- **Unlimited** classes\n- Personal workout and diet plans"},
	}
}

// ExecuteSeedPlans installs the default plans when none exist.
// PRE: none
// POST: At least one plan exists
func ExecuteSeedPlans(ctx context.Context, deps SeedDeps) error {
	plans, err := deps.PlanStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}
	if len(plans) > 0 {
		return nil
	}
	for _, p := range defaultPlans() {
		if err := deps.PlanStore.Save(ctx, p); err != nil {
			return fmt.Errorf("seed plan %s: %w", p.Name, err)
		}
	}
	slog.Info("seed_event", "event", "plans_seeded", "count", len(defaultPlans()))
	return nil
}

// ExecuteSeedTestMember creates the development member login if missing.
// PRE: Only called outside production
// POST: A member with TestMemberEmail/TestMemberPassword exists
func ExecuteSeedTestMember(ctx context.Context, deps SeedDeps) error {
	if _, err := deps.MemberStore.GetByEmail(ctx, TestMemberEmail); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	plan := defaultPlans()[0]
	m := member.Member{
		Principal: principal.Anonymous(),
		Name:      "Test Member",
		Email:     TestMemberEmail,
		Phone:     "+64210000000",
	}
	m.StartPlan(plan, deps.Clock.now())
	if err := m.SetPassword(TestMemberPassword); err != nil {
		return err
	}
	id, err := deps.MemberStore.Create(ctx, m)
	if err != nil {
		return fmt.Errorf("seed test member: %w", err)
	}
	slog.Info("seed_event", "event", "test_member_seeded", "member_id", id, "email", TestMemberEmail)
	return nil
}
