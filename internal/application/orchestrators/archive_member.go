package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"primefit/internal/adapters/storage/member"
	domainMember "primefit/internal/domain/member"
)

// MemberListStore lists members for background sweeps.
type MemberListStore interface {
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	Save(ctx context.Context, m domainMember.Member) error
}

// ExpireMembershipsDeps holds dependencies for the expiry sweep.
type ExpireMembershipsDeps struct {
	MemberStore MemberListStore
	Clock       Clock
}

// ExecuteExpireMemberships marks active members whose end date has passed as expired.
// PRE: none
// POST: Returns the number of members expired; a failed save does not stop the sweep
func ExecuteExpireMemberships(ctx context.Context, deps ExpireMembershipsDeps) (int, error) {
	active, err := deps.MemberStore.List(ctx, member.ListFilter{Status: domainMember.StatusActive})
	if err != nil {
		return 0, fmt.Errorf("list active members: %w", err)
	}
	now := deps.Clock.now()
	expired := 0
	for _, m := range active {
		if !m.Expire(now) {
			continue
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			slog.Error("membership_expiry_failed", "member_id", m.ID, "error", err)
			continue
		}
		expired++
		slog.Info("member_event", "event", "membership_expired", "member_id", m.ID, "end_date", m.EndDate)
	}
	return expired, nil
}
