package projections

import (
	"context"

	"primefit/internal/domain/account"
	"primefit/internal/domain/membership"
)

// PlansDeps holds dependencies for membership plan queries.
type PlansDeps struct {
	PlanStore PlanStore
}

// QueryAllMembershipPlans lists the plans members can be put on.
// PRE: caller is authenticated
func QueryAllMembershipPlans(ctx context.Context, caller account.Caller, deps PlansDeps) ([]membership.Plan, error) {
	if !caller.IsAuthenticated() {
		return nil, account.ErrUnauthenticated
	}
	return deps.PlanStore.List(ctx)
}

// QueryMembershipPlan returns one plan.
// PRE: caller is an admin
func QueryMembershipPlan(ctx context.Context, caller account.Caller, id string, deps PlansDeps) (membership.Plan, error) {
	if err := caller.RequireAdmin(); err != nil {
		return membership.Plan{}, err
	}
	return deps.PlanStore.GetByID(ctx, id)
}
