package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"primefit/internal/adapters/http/middleware"
	"primefit/internal/adapters/http/perf"
	"primefit/internal/adapters/identityprovider"
	"primefit/internal/adapters/sessionstore"
	"primefit/internal/application/projections"
	"primefit/internal/application/queries"
)

// Options tunes request handling.
type Options struct {
	Production         bool
	RenderBudget       time.Duration
	SessionTTL         time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
	SlowRequest        time.Duration
	// DevLogin enables POST /login/dev, which mints an identity token for any name.
	DevLogin bool
	// DevAnchor prefills the development sign-in form.
	DevAnchor string
	// StaticDir overrides the embedded assets served under /static/.
	StaticDir string
}

// Deps holds what the HTTP layer needs.
type Deps struct {
	Service   *queries.Service
	Sessions  sessionstore.Storage
	Identity  *identityprovider.Signer
	Collector *perf.Collector
	// Ping reports whether the backend is reachable. nil means always.
	Ping    func(ctx context.Context) error
	CSRFKey []byte
	Options Options
}

type server struct {
	svc          *queries.Service
	signer       *identityprovider.Signer
	collector    *perf.Collector
	identityDeps projections.IdentityDeps
	opts         Options
}

// NewMux wires HTTP handlers for the app. The returned func stops the rate
// limiter's cleanup goroutine.
// PRE: deps.Service, deps.Sessions, deps.Identity are non-nil; len(deps.CSRFKey) == 32
func NewMux(deps Deps) (http.Handler, func()) {
	opts := deps.Options
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = 10
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = int(opts.RateLimitPerSecond) * 2
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = sessionstore.DefaultTTL
	}
	middleware.SecureCookies = opts.Production

	s := &server{
		svc:          deps.Service,
		signer:       deps.Identity,
		collector:    deps.Collector,
		identityDeps: deps.Service.IdentityDeps(deps.Ping, opts.RenderBudget, deps.Collector),
		opts:         opts,
	}

	mux := http.NewServeMux()
	s.registerPages(mux)
	s.registerAPI(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst)
	slog.Info("http_configured", "production", opts.Production, "dev_login", opts.DevLogin, "rate_limit", opts.RateLimitPerSecond)

	// Timing -> RateLimit -> Identity -> Session -> CSRF -> SecurityHeaders -> Mux
	h := middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(deps.CSRFKey, opts.Production),
		middleware.Session(deps.Sessions, deps.Collector, opts.SessionTTL),
		middleware.Identity(deps.Identity),
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, opts.SlowRequest),
	)
	return h, limiter.Close
}
