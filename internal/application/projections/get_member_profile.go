package projections

import (
	"context"
	"errors"

	"primefit/internal/domain/account"
	domainMember "primefit/internal/domain/member"
	"primefit/internal/domain/session"
)

// QueryMemberProfile returns the calling member's own profile. A profile
// cached in the member's session is returned without reading the store.
// PRE: caller acts as a member; cached is the session profile or nil
// POST: Returns storage.ErrNotFound when nothing is cached and the member record is gone
func QueryMemberProfile(ctx context.Context, caller account.Caller, cached session.Profile, deps MembersDeps) (domainMember.Member, error) {
	id, err := caller.RequireMember()
	if err != nil {
		return domainMember.Member{}, err
	}
	m, err := session.Normalize(cached)
	switch {
	case err == nil && m.ID == id:
		return m, nil
	case err != nil && !errors.Is(err, session.ErrNoProfile):
		return domainMember.Member{}, err
	}
	return deps.MemberStore.GetByID(ctx, id)
}
