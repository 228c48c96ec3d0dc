package browser_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "primefit/internal/adapters/http"
	"primefit/internal/adapters/http/middleware"
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
	"primefit/internal/application/queries"
	"primefit/internal/application/querycache"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	collector := perf.NewCollector()
	svc := queries.New(querycache.New(time.Minute, collector), queries.Deps{
		Stores: queries.Stores{
			Members:        memberStore.NewSQLiteStore(db),
			Plans:          planStore.NewSQLiteStore(db),
			Payments:       paymentStore.NewSQLiteStore(db),
			Expenses:       expenseStore.NewSQLiteStore(db),
			Attendance:     attendanceStore.NewSQLiteStore(db),
			Bookings:       bookingStore.NewSQLiteStore(db),
			Accounts:       accountStore.NewSQLiteStore(db),
			Communications: commStore.NewSQLiteStore(db),
			StripeConfig:   stripeconfig.NewSQLiteStore(db),
		},
		Codes: qrcode.NewIssuer([]byte("browser-qr-key"), time.Hour),
	})
	if err := svc.Seed(context.Background(), true); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	signer, err := identityprovider.NewSigner("browser-seed", time.Hour)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	handler, stopLimiter := web.NewMux(web.Deps{
		Service:   svc,
		Sessions:  sessionstore.NewMemory(time.Hour),
		Identity:  signer,
		Collector: collector,
		Ping:      db.PingContext,
		CSRFKey:   []byte("browser-csrf-key-0123456789abcde"),
		Options: web.Options{
			RateLimitPerSecond: 1000,
			DevLogin:           true,
			DevAnchor:          "owner",
		},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		stopLimiter()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Server: srv, PW: pw, Browser: browser}
}

// newPage creates a page in its own browser context so cookies don't leak between users.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	return page
}

// waitForHeading blocks until an h1 with the given text is visible.
func waitForHeading(t *testing.T, page playwright.Page, text string) {
	t.Helper()
	heading := page.Locator("h1", playwright.PageLocatorOptions{HasText: text})
	if err := heading.WaitFor(playwright.LocatorWaitForOptions{Timeout: playwright.Float(10000)}); err != nil {
		t.Fatalf("heading %q never appeared: %v", text, err)
	}
}
