package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"brochure/internal/adapters/api"
	"brochure/internal/adapters/email"
	web "brochure/internal/adapters/http"
	"brochure/internal/adapters/http/perf"
	"brochure/internal/adapters/storage"
	auditStore "brochure/internal/adapters/storage/audit"
	"brochure/internal/adapters/storage/browserflag"
	"brochure/internal/application/sessionstate"
)

// testApp holds the running server, the fake remote API and Playwright handles.
type testApp struct {
	BaseURL string
	API     *fakeAPI
	Mail    *email.NoopSender
	Browser playwright.Browser
}

// newTestApp wires the full server against a fake remote API and starts Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	fake := newFakeAPI()
	apiSrv := fake.server()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	addr := listener.Addr().String()

	collector := perf.NewCollector(perf.DefaultRingSize)
	hasher := browserflag.NewHasher([]byte("e2e"))
	hub := sessionstate.NewHub()
	mail := email.NewNoopSender()
	handler := web.NewMux(web.Deps{
		Gateway:        api.NewClient(api.ClientConfig{BaseURL: apiSrv.URL, Collector: collector}),
		Flags:          sessionstate.NewReader(browserflag.NewSQLiteStore(db, hasher), hub),
		Hasher:         hasher,
		AuditStore:     auditStore.NewSQLiteStore(db),
		EmailSender:    mail,
		Collector:      collector,
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{addr},
		PublicURL:      "http://" + addr,
	})
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(listener) }()

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
		hub.Close()
		srv.Close()
		apiSrv.Close()
		db.Close()
	})

	return &testApp{
		BaseURL: "http://" + addr,
		API:     fake,
		Mail:    mail,
		Browser: browser,
	}
}

// newContext opens an isolated browser profile: its own cookies, so its own
// identity and session flags.
func (a *testApp) newContext(t *testing.T) playwright.BrowserContext {
	t.Helper()
	bc, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	t.Cleanup(func() { bc.Close() })
	return bc
}

// newPage opens a tab in bc.
func newPage(t *testing.T, bc playwright.BrowserContext) playwright.Page {
	t.Helper()
	page, err := bc.NewPage()
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

// login submits the student or admin form and waits for the redirect.
func (a *testApp) login(t *testing.T, page playwright.Page, admin bool) {
	t.Helper()
	path, user, home := "/login", studentEmail, "/dashboard"
	if admin {
		path, user, home = "/admin/login", adminEmail, "/admin"
	}
	a.goTo(t, page, path)
	fill(t, page, "input[name=email]", user)
	fill(t, page, "input[name=password]", testPassword)
	click(t, page, "form.login button[type=submit]")
	if err := page.WaitForURL(a.BaseURL+home, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to %s: %v", home, err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("failed to fill %s: %v", selector, err)
	}
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).Click(); err != nil {
		t.Fatalf("failed to click %s: %v", selector, err)
	}
}

// visible waits for selector to be visible.
func visible(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Fatalf("%s not visible: %v", selector, err)
	}
}

func count(t *testing.T, page playwright.Page, selector string) int {
	t.Helper()
	n, err := page.Locator(selector).Count()
	if err != nil {
		t.Fatalf("count %s: %v", selector, err)
	}
	return n
}

func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	s, err := page.Locator(selector).First().TextContent()
	if err != nil {
		t.Fatalf("text %s: %v", selector, err)
	}
	return s
}

func urlFor(base, path string) string {
	return fmt.Sprintf("%s%s", base, path)
}
