package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"primefit/internal/adapters/sessionstore"
	"primefit/internal/application/sessionctx"
	"primefit/internal/domain/principal"
)

// Cookie names.
const (
	SessionCookieName  = "primefit_session"
	IdentityCookieName = "primefit_identity"
)

// SecureCookies marks cookies Secure. Set in production.
var SecureCookies = false

type contextKey string

const (
	sessionContextKey   contextKey = "session"
	principalContextKey contextKey = "principal"
)

// Verifier checks an identity delegation token.
type Verifier interface {
	Verify(token string) (principal.Principal, error)
}

// Session attaches the request's member session context, issuing a session
// cookie when the request has none.
func Session(store sessionstore.Storage, observer sessionctx.Observer, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				id = c.Value
			} else {
				newID, err := sessionstore.NewSessionID()
				if err != nil {
					slog.Error("session_id_failed", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				id = newID
				setCookie(w, SessionCookieName, id, int(ttl.Seconds()))
			}
			ctx := context.WithValue(r.Context(), sessionContextKey, sessionctx.New(id, store, observer))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity verifies the identity cookie and attaches its principal. An
// invalid or expired token is cleared and the request proceeds without one.
func Identity(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(IdentityCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, err := verifier.Verify(c.Value)
			if err != nil {
				slog.Info("auth_event", "event", "identity_rejected", "error", err)
				ClearIdentityCookie(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// SessionFromContext returns the request's member session context.
func SessionFromContext(ctx context.Context) (*sessionctx.Context, bool) {
	s, ok := ctx.Value(sessionContextKey).(*sessionctx.Context)
	return s, ok
}

// PrincipalFromContext returns the verified principal, if any.
func PrincipalFromContext(ctx context.Context) (principal.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(principal.Principal)
	return p, ok
}

// ContextWithPrincipal returns a context carrying p.
func ContextWithPrincipal(ctx context.Context, p principal.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// ContextWithSession returns a context carrying s. Intended for tests.
func ContextWithSession(ctx context.Context, s *sessionctx.Context) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SetIdentityCookie stores a delegation token.
func SetIdentityCookie(w http.ResponseWriter, token string, expires time.Time) {
	setCookie(w, IdentityCookieName, token, int(time.Until(expires).Seconds()))
}

// ClearIdentityCookie removes the delegation token.
func ClearIdentityCookie(w http.ResponseWriter) {
	setCookie(w, IdentityCookieName, "", -1)
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}
