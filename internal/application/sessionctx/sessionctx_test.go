package sessionctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primefit/internal/adapters/sessionstore"
	"primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/principal"
	"primefit/internal/domain/session"
)

type countingObserver map[string]int

func (o countingObserver) SessionRead(state string) { o[state]++ }

func testMember() member.Member {
	m := member.Member{ID: 42, Principal: principal.Anonymous(), Name: "Test Member", Email: "a@b.com", Phone: "+6421"}
	m.StartPlan(membership.Plan{ID: "plan-monthly", Name: "Monthly", DurationMonths: 1, Price: 50}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return m
}

func TestCreateMemberThenRead(t *testing.T) {
	ctx := context.Background()
	obs := countingObserver{}
	c := New("sid", sessionstore.NewMemory(time.Hour), obs)

	require.NoError(t, c.CreateMember(ctx, testMember()))
	snap, err := c.Read(ctx)
	require.NoError(t, err)

	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.True(t, snap.Auth.Authenticated)
	assert.Equal(t, int64(42), snap.Auth.MemberID)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "a@b.com", snap.Profile.Email)
	assert.Equal(t, "50", snap.Profile.MembershipPlan.Price)
	assert.Equal(t, 1, obs["authenticated"])
}

func TestReadAbsent(t *testing.T) {
	c := New("sid", sessionstore.NewMemory(time.Hour), nil)
	snap, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.StateAbsent, snap.State)
	assert.Nil(t, snap.Profile)
}

func TestReadCorruptedClearsBothKeys(t *testing.T) {
	tests := []struct {
		name    string
		auth    string
		profile string
	}{
		{"malformed auth", `{"authenticated": tru`, `{}`},
		{"auth without member id", `{"authenticated":true,"email":"a@b.com"}`, `{}`},
		{"malformed profile", `{"authenticated":true,"email":"a@b.com","memberId":"42"}`, `not json`},
		{"profile with bad integer", `{"authenticated":true,"email":"a@b.com","memberId":"42"}`, `{"id":"forty-two"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := sessionstore.NewMemory(time.Hour)
			require.NoError(t, store.Set(ctx, "sid", session.KeyMemberAuth, tt.auth))
			require.NoError(t, store.Set(ctx, "sid", session.KeyMemberProfileCache, tt.profile))

			snap, err := New("sid", store, nil).Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, session.StateCorrupted, snap.State)

			for _, key := range session.Keys {
				_, ok, err := store.Get(ctx, "sid", key)
				require.NoError(t, err)
				assert.False(t, ok, "key %s survived", key)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	c := New("sid", sessionstore.NewMemory(time.Hour), nil)
	m := testMember()

	assert.ErrorIs(t, c.UpdateProfile(ctx, m), ErrNotMemberSession)

	require.NoError(t, c.CreateMember(ctx, m))
	m.Name = "Renamed"
	require.NoError(t, c.UpdateProfile(ctx, m))
	snap, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", snap.Profile.Name)

	other := m
	other.ID = 7
	assert.ErrorIs(t, c.UpdateProfile(ctx, other), ErrNotMemberSession)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c := New("sid", sessionstore.NewMemory(time.Hour), nil)
	require.NoError(t, c.CreateMember(ctx, testMember()))
	require.NoError(t, c.Invalidate(ctx))

	snap, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StateAbsent, snap.State)
}
