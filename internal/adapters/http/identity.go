package web

import (
	"log/slog"
	"net/http"

	"primefit/internal/adapters/http/middleware"
	"primefit/internal/application/projections"
	"primefit/internal/domain/account"
	"primefit/internal/domain/identity"
)

// resolve gathers the request's identity handles and resolves them.
// POST: A corrupted member session has been removed from storage
func (s *server) resolve(r *http.Request) projections.IdentityResult {
	ctx := r.Context()
	var q projections.IdentityQuery
	if p, ok := middleware.PrincipalFromContext(ctx); ok {
		q.Principal = &p
	}
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		snap, err := sess.Read(ctx)
		if err != nil {
			slog.Error("auth_event", "event", "session_read_failed", "error", err)
			return projections.IdentityResult{
				Decision: identity.Decision{View: identity.ViewConnectionError},
				Caller:   account.Guest(),
			}
		}
		q.MemberSession = snap.State
		q.MemberAuth = snap.Auth
		if snap.Profile != nil {
			q.MemberProfile = *snap.Profile
		}
	}
	res := projections.QueryResolveIdentity(ctx, q, s.identityDeps)
	if res.ClearMemberSession {
		slog.Info("auth_event", "event", "member_session_cleared", "path", r.URL.Path)
	}
	return res
}

// caller is the account the request acts as.
func (s *server) caller(r *http.Request) account.Caller {
	return s.resolve(r).Caller
}
