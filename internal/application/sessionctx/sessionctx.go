// Package sessionctx wraps one browser session's member records. A Context
// is built per request around the session id from the cookie.
package sessionctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"primefit/internal/adapters/sessionstore"
	"primefit/internal/domain/member"
	"primefit/internal/domain/session"
)

// ErrNotMemberSession is returned when a profile update targets a session
// without an authenticated member.
var ErrNotMemberSession = errors.New("session has no authenticated member")

// Observer counts session reads by resulting state.
type Observer interface {
	SessionRead(state string)
}

// Context is the member session of one request.
type Context struct {
	id       string
	store    sessionstore.Storage
	observer Observer
}

// New builds the context for session id.
// PRE: id is non-empty; store is non-nil
func New(id string, store sessionstore.Storage, observer Observer) *Context {
	return &Context{id: id, store: store, observer: observer}
}

// ID returns the session id.
func (c *Context) ID() string { return c.id }

// Snapshot is what Read found in the session.
type Snapshot struct {
	State session.State
	Auth  session.MemberAuth
	// Profile is the cached profile as stored; nil when nothing is cached.
	// A non-nil Profile always normalizes.
	Profile *session.LocalProfile
}

// CreateMember stores the login record and profile cache for m.
// PRE: m has a positive id and an email
// POST: Read returns StateAuthenticated with m's profile
func (c *Context) CreateMember(ctx context.Context, m member.Member) error {
	auth, err := session.NewMemberAuth(m).Encode()
	if err != nil {
		return fmt.Errorf("encode member auth: %w", err)
	}
	if err := c.store.Set(ctx, c.id, session.KeyMemberAuth, auth); err != nil {
		return fmt.Errorf("store member auth: %w", err)
	}
	return c.writeProfile(ctx, m)
}

// Read loads and checks the member records.
// PRE: none
// POST: A corrupted record has both keys deleted before returning
func (c *Context) Read(ctx context.Context) (Snapshot, error) {
	snap, err := c.read(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if snap.State == session.StateCorrupted {
		if err := c.store.Delete(ctx, c.id, session.Keys...); err != nil {
			return Snapshot{}, fmt.Errorf("clear corrupted session: %w", err)
		}
	}
	if c.observer != nil {
		c.observer.SessionRead(snap.State.String())
	}
	return snap, nil
}

func (c *Context) read(ctx context.Context) (Snapshot, error) {
	rawAuth, ok, err := c.store.Get(ctx, c.id, session.KeyMemberAuth)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read member auth: %w", err)
	}
	if !ok {
		return Snapshot{State: session.StateAbsent}, nil
	}
	auth, err := session.ParseMemberAuth(rawAuth)
	if err != nil {
		slog.Warn("auth_event", "event", "session_corrupted", "key", session.KeyMemberAuth, "error", err)
		return Snapshot{State: session.StateCorrupted}, nil
	}
	if !auth.Authenticated {
		return Snapshot{State: session.StateAbsent}, nil
	}

	snap := Snapshot{State: session.StateAuthenticated, Auth: auth}
	rawProfile, ok, err := c.store.Get(ctx, c.id, session.KeyMemberProfileCache)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read profile cache: %w", err)
	}
	if !ok {
		return snap, nil
	}
	local, err := session.DecodeLocalProfile(rawProfile)
	if err == nil {
		_, err = session.Normalize(local)
	}
	if err != nil {
		slog.Warn("auth_event", "event", "session_corrupted", "key", session.KeyMemberProfileCache, "error", err)
		return Snapshot{State: session.StateCorrupted}, nil
	}
	snap.Profile = &local
	return snap, nil
}

// UpdateProfile rewrites the profile cache after the member edits their profile.
// PRE: the session holds an authenticated member with m's id
// POST: Returns ErrNotMemberSession otherwise and leaves the session unchanged
func (c *Context) UpdateProfile(ctx context.Context, m member.Member) error {
	snap, err := c.read(ctx)
	if err != nil {
		return err
	}
	if snap.State != session.StateAuthenticated || snap.Auth.MemberID != m.ID {
		return ErrNotMemberSession
	}
	return c.writeProfile(ctx, m)
}

// Invalidate removes the member records.
// POST: Read returns StateAbsent
func (c *Context) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, c.id, session.Keys...)
}

func (c *Context) writeProfile(ctx context.Context, m member.Member) error {
	raw, err := session.Serialize(m).Encode()
	if err != nil {
		return fmt.Errorf("encode profile cache: %w", err)
	}
	if err := c.store.Set(ctx, c.id, session.KeyMemberProfileCache, raw); err != nil {
		return fmt.Errorf("store profile cache: %w", err)
	}
	return nil
}
