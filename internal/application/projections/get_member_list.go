package projections

import (
	"context"

	"github.com/samber/lo"

	"primefit/internal/adapters/storage/member"
	"primefit/internal/domain/account"
	domainMember "primefit/internal/domain/member"
)

// MembersDeps holds dependencies for member list queries.
type MembersDeps struct {
	MemberStore MemberStore
}

// QueryAllMembers lists every member.
// PRE: caller is an admin
// POST: Members ordered by id
func QueryAllMembers(ctx context.Context, caller account.Caller, deps MembersDeps) ([]domainMember.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.MemberStore.List(ctx, member.ListFilter{})
}

// QueryMember returns one member.
// PRE: caller is an admin
func QueryMember(ctx context.Context, caller account.Caller, id int64, deps MembersDeps) (domainMember.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return domainMember.Member{}, err
	}
	return deps.MemberStore.GetByID(ctx, id)
}

// QueryAllMinimalMembers lists members as id/name pairs for pickers.
// PRE: caller is an admin
func QueryAllMinimalMembers(ctx context.Context, caller account.Caller, deps MembersDeps) ([]domainMember.Minimal, error) {
	members, err := QueryAllMembers(ctx, caller, deps)
	if err != nil {
		return nil, err
	}
	return lo.Map(members, func(m domainMember.Member, _ int) domainMember.Minimal {
		return m.ToMinimal()
	}), nil
}

// QueryRegisteredMembers lists members who signed in through the identity provider.
// PRE: caller is an admin
func QueryRegisteredMembers(ctx context.Context, caller account.Caller, deps MembersDeps) ([]domainMember.Member, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.MemberStore.List(ctx, member.ListFilter{Registered: true})
}
