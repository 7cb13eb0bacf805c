package browser_test

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/metrics"
	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	attendanceStore "gymportal/internal/adapters/storage/attendance"
	auditStore "gymportal/internal/adapters/storage/audit"
	branchStore "gymportal/internal/adapters/storage/branch"
	classStore "gymportal/internal/adapters/storage/class"
	membershipStore "gymportal/internal/adapters/storage/membership"
	outboxStore "gymportal/internal/adapters/storage/outbox"
	passwordResetStore "gymportal/internal/adapters/storage/passwordreset"
	"gymportal/internal/application/orchestrators"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Browser playwright.Browser
	Stores  web.Stores
}

// newTestApp creates a fully wired portal with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	tdb := storage.NewTimedDB(db, nil, 0)

	stores := web.Stores{
		Admins:      accountStore.NewAdminSQLiteStore(tdb),
		Customers:   accountStore.NewCustomerSQLiteStore(tdb),
		Branches:    branchStore.NewSQLiteStore(tdb),
		Resets:      passwordResetStore.NewSQLiteStore(tdb),
		Outbox:      outboxStore.NewSQLiteStore(tdb),
		Audit:       auditStore.NewSQLiteStore(tdb),
		Memberships: membershipStore.NewSQLiteStore(tdb),
		Attendance:  attendanceStore.NewSQLiteStore(tdb),
		Classes:     classStore.NewSQLiteStore(tdb),
	}

	ctx := context.Background()
	if _, err := orchestrators.ExecuteSeedBranches(ctx, orchestrators.SeedBranchesDeps{Branches: stores.Branches}); err != nil {
		t.Fatalf("failed to seed branches: %v", err)
	}
	if _, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAdminInput{
		Email:    adminEmail,
		Password: adminPassword,
	}, orchestrators.SeedAdminDeps{Admins: stores.Admins}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	handler, err := web.NewMux(web.Deps{
		Stores:   stores,
		Sessions: middleware.NewMemorySessionStore(),
		Remember: middleware.NewRememberCookies(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), false),
		Metrics:  metrics.New(),
		DB:       tdb,
		CSRFKey:  securecookie.GenerateRandomKey(32),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server error: %v", err)
		}
	}()
	baseURL := "http://" + listener.Addr().String()

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
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Browser: browser, Stores: stores}
}

// newPage opens a tab in a fresh browser context so cookies never leak between tests.
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

func (a *testApp) goTo(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + path); err != nil {
		t.Fatalf("failed to navigate to %s: %v", path, err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("failed to fill %s: %v", selector, err)
	}
}

func selectOption(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if _, err := page.Locator(selector).SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
		t.Fatalf("failed to select %s in %s: %v", value, selector, err)
	}
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).Click(); err != nil {
		t.Fatalf("failed to click %s: %v", selector, err)
	}
}

// waitFor blocks until the page lands on path.
func (a *testApp) waitFor(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("expected to land on %s, at %s: %v", path, page.URL(), err)
	}
}

// text returns the inner text of the first element matching selector.
func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	s, err := page.Locator(selector).First().InnerText()
	if err != nil {
		t.Fatalf("failed to read %s: %v", selector, err)
	}
	return s
}
