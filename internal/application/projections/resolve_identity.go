package projections

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/account"
	"primefit/internal/domain/identity"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
	"primefit/internal/domain/session"
)

// DefaultRenderBudget is how long identity lookups may run before the page
// renders with whatever has arrived.
const DefaultRenderBudget = 2 * time.Second

// IdentityAccountStore defines the account store interface needed to resolve identities.
type IdentityAccountStore interface {
	GetProfile(ctx context.Context, p principal.Principal) (account.UserProfile, error)
	GetRole(ctx context.Context, p principal.Principal) (string, error)
}

// IdentityMemberStore defines the member store interface needed to resolve identities.
type IdentityMemberStore interface {
	GetByPrincipal(ctx context.Context, p principal.Principal) (member.Member, error)
}

// IdentityObserver records which view each request resolved to.
type IdentityObserver interface {
	IdentityView(view string)
}

// IdentityDeps holds dependencies for identity resolution.
type IdentityDeps struct {
	AccountStore IdentityAccountStore
	MemberStore  IdentityMemberStore
	// Ping reports whether the backend is reachable. nil means always.
	Ping     func(ctx context.Context) error
	Budget   time.Duration
	Observer IdentityObserver // optional
}

// IdentityQuery carries the identity handles found on a request.
type IdentityQuery struct {
	// Principal is the verified identity provider principal; nil when absent.
	Principal     *principal.Principal
	MemberSession session.State
	MemberAuth    session.MemberAuth
	// MemberProfile is the session's cached profile; nil when nothing is cached.
	MemberProfile session.Profile
}

// IdentityResult is the resolved view plus what was loaded on the way.
type IdentityResult struct {
	identity.Decision
	Caller  account.Caller
	Profile *account.UserProfile
	Member  *member.Member
	// Cached is the member-mode profile the session carried. Member reads
	// for this request use it instead of the store.
	Cached session.Profile
}

type fetched[T any] struct {
	val T
	err error
}

// QueryResolveIdentity gathers the identity inputs for one request and
// resolves them to a view.
// PRE: q.MemberAuth is meaningful only when q.MemberSession is authenticated
// POST: Lookups still running after the render budget surface as loading
// INVARIANT: Caller carries the admin role only when the view is the admin dashboard
func QueryResolveIdentity(ctx context.Context, q IdentityQuery, deps IdentityDeps) IdentityResult {
	in := identity.Inputs{
		BackendAvailable: true,
		HasPrincipal:     q.Principal != nil && !q.Principal.IsAnonymous(),
		MemberSession:    q.MemberSession,
	}
	memberMode := !in.HasPrincipal && q.MemberSession == session.StateAuthenticated
	if (in.HasPrincipal || memberMode) && deps.Ping != nil {
		if err := ping(ctx, deps); err != nil {
			slog.Warn("auth_event", "event", "backend_unavailable", "error", err)
			in.BackendAvailable = false
		}
	}

	var res IdentityResult
	switch {
	case !in.BackendAvailable:
	case in.HasPrincipal:
		res = resolvePrincipalInputs(ctx, *q.Principal, &in, deps)
	case memberMode:
		res = resolveMemberInputs(q, &in)
	}

	res.Decision = identity.Resolve(in)
	res.Caller = callerFor(res, q)
	if deps.Observer != nil {
		deps.Observer.IdentityView(res.View.String())
	}
	slog.Debug("auth_event", "event", "identity_resolved", "view", res.View.String(), "mode", res.Mode.String())
	return res
}

func resolvePrincipalInputs(ctx context.Context, p principal.Principal, in *identity.Inputs, deps IdentityDeps) IdentityResult {
	profileCh := make(chan fetched[account.UserProfile], 1)
	roleCh := make(chan fetched[string], 1)
	memberCh := make(chan fetched[member.Member], 1)

	var g errgroup.Group
	g.Go(func() error {
		u, err := deps.AccountStore.GetProfile(ctx, p)
		profileCh <- fetched[account.UserProfile]{u, err}
		return nil
	})
	g.Go(func() error {
		role, err := deps.AccountStore.GetRole(ctx, p)
		roleCh <- fetched[string]{role, err}
		return nil
	})
	g.Go(func() error {
		m, err := deps.MemberStore.GetByPrincipal(ctx, p)
		memberCh <- fetched[member.Member]{m, err}
		return nil
	})
	waitBudget(ctx, &g, deps.Budget)

	var res IdentityResult
	in.UserProfile = identity.Loading()
	select {
	case r := <-profileCh:
		in.UserProfile = fetchOutcome(r.err)
		if r.err == nil {
			res.Profile = &r.val
		}
	default:
	}
	in.Role = identity.RoleFetch{Status: identity.FetchLoading}
	select {
	case r := <-roleCh:
		if r.err != nil {
			slog.Warn("auth_event", "event", "role_fetch_failed", "principal", p.String(), "error", r.err)
			in.Role = identity.RoleFetch{Status: identity.FetchFailed}
		} else {
			in.Role = identity.RoleFetch{Status: identity.FetchDone, Role: r.val}
		}
	default:
	}
	select {
	case r := <-memberCh:
		if r.err == nil {
			res.Member = &r.val
		}
	default:
	}
	return res
}

// resolveMemberInputs reads the member profile from the session cache. The
// cache is trusted for the life of the session and never checked against
// the store.
// POST: A missing cache, or one written for another member, is reported missing
func resolveMemberInputs(q IdentityQuery, in *identity.Inputs) IdentityResult {
	var res IdentityResult
	m, err := session.Normalize(q.MemberProfile)
	switch {
	case errors.Is(err, session.ErrNoProfile):
		in.MemberProfile = identity.Missing()
	case err != nil:
		slog.Warn("auth_event", "event", "profile_cache_unreadable", "member_id", q.MemberAuth.MemberID, "error", err)
		in.MemberProfile = identity.Failed()
	case m.ID != q.MemberAuth.MemberID:
		slog.Warn("auth_event", "event", "profile_cache_mismatch", "member_id", q.MemberAuth.MemberID, "cached_id", m.ID)
		in.MemberProfile = identity.Missing()
	default:
		in.MemberProfile = identity.Found()
		res.Member = &m
		res.Cached = q.MemberProfile
	}
	return res
}

// waitBudget waits for g until the budget elapses or ctx ends.
func waitBudget(ctx context.Context, g *errgroup.Group, budget time.Duration) {
	if budget <= 0 {
		budget = DefaultRenderBudget
	}
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		slog.Warn("auth_event", "event", "identity_render_budget_exceeded", "budget", budget)
	case <-ctx.Done():
	}
}

func ping(ctx context.Context, deps IdentityDeps) error {
	budget := deps.Budget
	if budget <= 0 {
		budget = DefaultRenderBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return deps.Ping(ctx)
}

func fetchOutcome(err error) identity.Fetch {
	switch {
	case err == nil:
		return identity.Found()
	case errors.Is(err, storage.ErrNotFound):
		return identity.Missing()
	default:
		slog.Warn("auth_event", "event", "profile_fetch_failed", "error", err)
		return identity.Failed()
	}
}

// callerFor derives who the request acts as from the resolved view.
func callerFor(res IdentityResult, q IdentityQuery) account.Caller {
	switch res.View {
	case identity.ViewAdminDashboard:
		return account.Caller{Principal: *q.Principal, Role: account.RoleAdmin}
	case identity.ViewMemberDashboard:
		c := account.Caller{Principal: principal.Anonymous(), Role: account.RoleUser}
		switch {
		case res.Mode == identity.ModePrincipal:
			c.Principal = *q.Principal
			if res.Member != nil {
				c.MemberID = res.Member.ID
			}
		default:
			c.MemberID = q.MemberAuth.MemberID
		}
		return c
	}
	if res.Mode == identity.ModePrincipal {
		// Principal-only operations (saving a profile, requesting approval)
		// still need to know who is asking.
		return account.Caller{Principal: *q.Principal, Role: account.RoleGuest}
	}
	return account.Guest()
}
