package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "primefit/internal/adapters/email"
	web "primefit/internal/adapters/http"
	"primefit/internal/adapters/http/perf"
	"primefit/internal/adapters/identityprovider"
	"primefit/internal/adapters/qrcode"
	"primefit/internal/adapters/sessionstore"
	"primefit/internal/adapters/storage"
	accountStore "primefit/internal/adapters/storage/account"
	attendanceStore "primefit/internal/adapters/storage/attendance"
	bookingStore "primefit/internal/adapters/storage/booking"
	commStore "primefit/internal/adapters/storage/communication"
	expenseStore "primefit/internal/adapters/storage/expense"
	memberStore "primefit/internal/adapters/storage/member"
	paymentStore "primefit/internal/adapters/storage/payment"
	planStore "primefit/internal/adapters/storage/plan"
	"primefit/internal/adapters/storage/stripeconfig"
	stripeAdapter "primefit/internal/adapters/stripe"
	"primefit/internal/application/queries"
	"primefit/internal/application/querycache"
	"primefit/internal/application/scheduler"
	"primefit/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector()
	timedDB := storage.NewTimedDB(db, collector, int(cfg.SlowQuery.Milliseconds()))

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		slog.Info("email_configured", "sender", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_configured", "sender", "noop", "reason", "PRIMEFIT_RESEND_KEY is not set; credential emails are logged only")
		} else {
			slog.Info("email_configured", "sender", "noop")
		}
	}

	qrKey := []byte(cfg.QRKey)
	if len(qrKey) == 0 {
		qrKey = randomKey("PRIMEFIT_QR_KEY")
	}

	svc := queries.New(querycache.New(cfg.QueryCacheTTL, collector), queries.Deps{
		Stores: queries.Stores{
			Members:        memberStore.NewSQLiteStore(timedDB),
			Plans:          planStore.NewSQLiteStore(timedDB),
			Payments:       paymentStore.NewSQLiteStore(timedDB),
			Expenses:       expenseStore.NewSQLiteStore(timedDB),
			Attendance:     attendanceStore.NewSQLiteStore(timedDB),
			Bookings:       bookingStore.NewSQLiteStore(timedDB),
			Accounts:       accountStore.NewSQLiteStore(timedDB),
			Communications: commStore.NewSQLiteStore(timedDB),
			StripeConfig:   stripeconfig.NewSQLiteStore(timedDB),
		},
		Sender:  sender,
		Gateway: stripeAdapter.NewGateway(),
		Codes:   qrcode.NewIssuer(qrKey, qrcode.DefaultTTL),
	})

	ctx := context.Background()
	if err := svc.Seed(ctx, !cfg.IsProduction()); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	// Session storage: Redis when configured, in-process otherwise
	var sessions sessionstore.Storage
	ping := timedDB.PingContext
	if cfg.RedisURL != "" {
		rs, err := sessionstore.NewRedis(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("failed to configure redis sessions: %v", err)
		}
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("redis unreachable: %v", err)
		}
		sessions = rs
		ping = func(ctx context.Context) error {
			if err := timedDB.PingContext(ctx); err != nil {
				return err
			}
			return rs.Ping(ctx)
		}
	} else {
		sessions = sessionstore.NewMemory(cfg.SessionTTL)
	}
	defer sessions.Close()

	signer, err := identityprovider.NewSigner(cfg.IdentityKeySeed, identityprovider.DefaultTTL)
	if err != nil {
		log.Fatalf("failed to create identity signer: %v", err)
	}

	csrfKey := []byte(cfg.CSRFKey)
	if len(csrfKey) != 32 {
		csrfKey = randomKey("PRIMEFIT_CSRF_KEY")
	}

	jobs, err := scheduler.New(svc, scheduler.Config{ExpirySpec: cfg.ExpiryCron, CommRetrySpec: cfg.CommRetryCron})
	if err != nil {
		log.Fatalf("failed to schedule jobs: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	handler, stopLimiter := web.NewMux(web.Deps{
		Service:   svc,
		Sessions:  sessions,
		Identity:  signer,
		Collector: collector,
		Ping:      ping,
		CSRFKey:   csrfKey,
		Options: web.Options{
			Production:         cfg.IsProduction(),
			RenderBudget:       cfg.RenderBudget,
			SessionTTL:         cfg.SessionTTL,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			SlowRequest:        cfg.SlowRequest,
			DevLogin:           !cfg.IsProduction(),
			DevAnchor:          cfg.AdminName,
		},
	})
	defer stopLimiter()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

// randomKey generates a per-process secret. Validate rejects a missing
// secret in production, so this only runs in development.
func randomKey(envName string) []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate %s: %v", envName, err)
	}
	slog.Warn("ephemeral_secret", "key", envName, "reason", "not set; sessions and codes won't survive restart")
	return key
}
