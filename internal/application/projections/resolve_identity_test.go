package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/account"
	"primefit/internal/domain/identity"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
	"primefit/internal/domain/session"
)

type mockIdentityAccountStore struct {
	profiles map[string]account.UserProfile
	roles    map[string]string
	delay    time.Duration
	err      error
}

// GetProfile returns the seeded profile for p.
func (s *mockIdentityAccountStore) GetProfile(ctx context.Context, p principal.Principal) (account.UserProfile, error) {
	if err := s.wait(ctx); err != nil {
		return account.UserProfile{}, err
	}
	u, ok := s.profiles[p.String()]
	if !ok {
		return account.UserProfile{}, storage.ErrNotFound
	}
	return u, nil
}

// GetRole returns the seeded role for p, guest when unset.
func (s *mockIdentityAccountStore) GetRole(ctx context.Context, p principal.Principal) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	if r, ok := s.roles[p.String()]; ok {
		return r, nil
	}
	return account.RoleGuest, nil
}

func (s *mockIdentityAccountStore) wait(ctx context.Context) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

type mockIdentityMemberStore struct {
	members []member.Member
}

// GetByPrincipal returns the seeded member bound to p.
func (s *mockIdentityMemberStore) GetByPrincipal(_ context.Context, p principal.Principal) (member.Member, error) {
	for _, m := range s.members {
		if m.Principal.Equal(p) {
			return m, nil
		}
	}
	return member.Member{}, storage.ErrNotFound
}

type recordingObserver struct {
	views []string
}

func (o *recordingObserver) IdentityView(view string) {
	o.views = append(o.views, view)
}

func TestQueryResolveIdentity(t *testing.T) {
	owner := principal.SelfAuthenticating([]byte("owner"))
	regular := principal.SelfAuthenticating([]byte("regular"))
	stranger := principal.SelfAuthenticating([]byte("stranger"))
	unknown := principal.SelfAuthenticating([]byte("unknown"))

	accounts := &mockIdentityAccountStore{
		profiles: map[string]account.UserProfile{
			owner.String():    {Principal: owner, Name: "Owner", AppRole: account.AppRoleAdmin},
			regular.String():  {Principal: regular, Name: "Regular", AppRole: account.AppRoleMember},
			stranger.String(): {Principal: stranger, Name: "Stranger", AppRole: account.AppRoleMember},
		},
		roles: map[string]string{
			owner.String():   account.RoleAdmin,
			regular.String(): account.RoleUser,
		},
	}
	members := &mockIdentityMemberStore{members: []member.Member{
		{ID: 7, Principal: principal.Anonymous(), Name: "Test", Email: "a@b.com"},
		{ID: 8, Principal: regular, Name: "Regular", Email: "r@b.com"},
	}}
	deps := IdentityDeps{AccountStore: accounts, MemberStore: members, Budget: time.Second}
	cachedTest := session.Serialize(members.members[0])

	tests := []struct {
		name       string
		query      IdentityQuery
		wantView   identity.View
		wantClear  bool
		wantRole   string
		wantMember int64
	}{
		{
			name:     "nothing present shows login",
			query:    IdentityQuery{MemberSession: session.StateAbsent},
			wantView: identity.ViewLogin,
			wantRole: account.RoleGuest,
		},
		{
			name:      "corrupted member session clears and shows login",
			query:     IdentityQuery{MemberSession: session.StateCorrupted},
			wantView:  identity.ViewLogin,
			wantClear: true,
			wantRole:  account.RoleGuest,
		},
		{
			name: "member session reaches member dashboard",
			query: IdentityQuery{
				MemberSession: session.StateAuthenticated,
				MemberAuth:    session.MemberAuth{Authenticated: true, Email: "a@b.com", MemberID: 7},
				MemberProfile: cachedTest,
			},
			wantView:   identity.ViewMemberDashboard,
			wantRole:   account.RoleUser,
			wantMember: 7,
		},
		{
			name: "cached profile is trusted without a store record",
			query: IdentityQuery{
				MemberSession: session.StateAuthenticated,
				MemberAuth:    session.MemberAuth{Authenticated: true, Email: "gone@b.com", MemberID: 99},
				MemberProfile: session.Serialize(member.Member{ID: 99, Principal: principal.Anonymous(), Name: "Gone", Email: "gone@b.com"}),
			},
			wantView:   identity.ViewMemberDashboard,
			wantRole:   account.RoleUser,
			wantMember: 99,
		},
		{
			name: "member session without a profile cache",
			query: IdentityQuery{
				MemberSession: session.StateAuthenticated,
				MemberAuth:    session.MemberAuth{Authenticated: true, Email: "a@b.com", MemberID: 7},
			},
			wantView: identity.ViewMemberProfileNotFound,
			wantRole: account.RoleGuest,
		},
		{
			name: "profile cache for another member",
			query: IdentityQuery{
				MemberSession: session.StateAuthenticated,
				MemberAuth:    session.MemberAuth{Authenticated: true, Email: "r@b.com", MemberID: 8},
				MemberProfile: cachedTest,
			},
			wantView: identity.ViewMemberProfileNotFound,
			wantRole: account.RoleGuest,
		},
		{
			name:     "admin principal",
			query:    IdentityQuery{Principal: &owner},
			wantView: identity.ViewAdminDashboard,
			wantRole: account.RoleAdmin,
		},
		{
			name:       "user principal never reaches admin dashboard",
			query:      IdentityQuery{Principal: &regular},
			wantView:   identity.ViewMemberDashboard,
			wantRole:   account.RoleUser,
			wantMember: 8,
		},
		{
			name:     "guest principal is denied",
			query:    IdentityQuery{Principal: &stranger},
			wantView: identity.ViewAccessDenied,
			wantRole: account.RoleGuest,
		},
		{
			name:     "principal without profile",
			query:    IdentityQuery{Principal: &unknown},
			wantView: identity.ViewNoProfile,
			wantRole: account.RoleGuest,
		},
		{
			name: "principal wins over member session",
			query: IdentityQuery{
				Principal:     &regular,
				MemberSession: session.StateAuthenticated,
				MemberAuth:    session.MemberAuth{Authenticated: true, Email: "a@b.com", MemberID: 7},
				MemberProfile: cachedTest,
			},
			wantView:   identity.ViewMemberDashboard,
			wantRole:   account.RoleUser,
			wantMember: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := QueryResolveIdentity(context.Background(), tt.query, deps)
			if res.View != tt.wantView {
				t.Errorf("View = %s, want %s", res.View, tt.wantView)
			}
			if res.ClearMemberSession != tt.wantClear {
				t.Errorf("ClearMemberSession = %v, want %v", res.ClearMemberSession, tt.wantClear)
			}
			if res.Caller.Role != tt.wantRole {
				t.Errorf("Caller.Role = %s, want %s", res.Caller.Role, tt.wantRole)
			}
			if res.Caller.MemberID != tt.wantMember {
				t.Errorf("Caller.MemberID = %d, want %d", res.Caller.MemberID, tt.wantMember)
			}
		})
	}
}

func TestQueryResolveIdentity_BudgetExceeded(t *testing.T) {
	p := principal.SelfAuthenticating([]byte("slow"))
	accounts := &mockIdentityAccountStore{delay: 500 * time.Millisecond}
	obs := &recordingObserver{}
	deps := IdentityDeps{AccountStore: accounts, MemberStore: &mockIdentityMemberStore{}, Budget: 10 * time.Millisecond, Observer: obs}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res := QueryResolveIdentity(ctx, IdentityQuery{Principal: &p}, deps)
	if res.View != identity.ViewLoading {
		t.Errorf("View = %s, want loading", res.View)
	}
	if res.Caller.IsAdmin() {
		t.Error("caller is admin while role is still loading")
	}
	if len(obs.views) != 1 || obs.views[0] != "loading" {
		t.Errorf("observed views = %v", obs.views)
	}
}

func TestQueryResolveIdentity_Failures(t *testing.T) {
	p := principal.SelfAuthenticating([]byte("p"))

	failing := IdentityDeps{
		AccountStore: &mockIdentityAccountStore{err: errors.New("disk I/O error")},
		MemberStore:  &mockIdentityMemberStore{},
	}
	if res := QueryResolveIdentity(context.Background(), IdentityQuery{Principal: &p}, failing); res.View != identity.ViewProfileError {
		t.Errorf("failed fetch View = %s, want profile_error", res.View)
	}

	down := IdentityDeps{
		AccountStore: &mockIdentityAccountStore{},
		MemberStore:  &mockIdentityMemberStore{},
		Ping:         func(context.Context) error { return errors.New("database is closed") },
	}
	res := QueryResolveIdentity(context.Background(), IdentityQuery{Principal: &p}, down)
	if res.View != identity.ViewConnectionError {
		t.Errorf("unreachable backend View = %s, want connection_error", res.View)
	}
	if res.Caller.Principal.IsAnonymous() || res.Caller.Role != account.RoleGuest {
		t.Errorf("caller = %+v, want principal with guest role", res.Caller)
	}

	// The backend is only consulted when some identity is present.
	if res := QueryResolveIdentity(context.Background(), IdentityQuery{}, down); res.View != identity.ViewLogin {
		t.Errorf("anonymous request with backend down View = %s, want login", res.View)
	}
}
