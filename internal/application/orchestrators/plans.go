package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/membership"
)

// PlanDeps holds dependencies for plan maintenance.
type PlanDeps struct {
	PlanStore PlanStore
}

// ExecuteAddMembershipPlan creates a plan with a fresh id.
// PRE: caller is an admin
// POST: Plan persisted
func ExecuteAddMembershipPlan(ctx context.Context, caller account.Caller, p membership.Plan, deps PlanDeps) (membership.Plan, error) {
	if err := caller.RequireAdmin(); err != nil {
		return membership.Plan{}, err
	}
	p.ID = uuid.New().String()
	return savePlan(ctx, p, deps, "plan_created")
}

// ExecuteUpdateMembershipPlan replaces an existing plan. Members keep the
// copy they bought.
// PRE: caller is an admin; plan exists
// POST: Plan persisted
func ExecuteUpdateMembershipPlan(ctx context.Context, caller account.Caller, p membership.Plan, deps PlanDeps) (membership.Plan, error) {
	if err := caller.RequireAdmin(); err != nil {
		return membership.Plan{}, err
	}
	if _, err := deps.PlanStore.GetByID(ctx, p.ID); err != nil {
		return membership.Plan{}, err
	}
	return savePlan(ctx, p, deps, "plan_updated")
}

// ExecuteDeleteMembershipPlan removes a plan.
// PRE: caller is an admin
// POST: Plan no longer exists
func ExecuteDeleteMembershipPlan(ctx context.Context, caller account.Caller, id string, deps PlanDeps) error {
	if err := caller.RequireAdmin(); err != nil {
		return err
	}
	if err := deps.PlanStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("plan_event", "event", "plan_deleted", "plan_id", id)
	return nil
}

func savePlan(ctx context.Context, p membership.Plan, deps PlanDeps, event string) (membership.Plan, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return membership.Plan{}, validation.Invalid(err)
	}
	if err := deps.PlanStore.Save(ctx, p); err != nil {
		return membership.Plan{}, err
	}
	slog.Info("plan_event", "event", event, "plan_id", p.ID, "name", p.Name)
	return p, nil
}
