package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const browserContextKey contextKey = "browser"

// BrowserCookieName is the identity cookie shared by every tab of one browser.
const BrowserCookieName = "brochure_browser"

// SecureCookies marks identity cookies Secure. Set in production.
var SecureCookies bool

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string // "success", "error" or "info"
	Message string
}

// Browser is one visiting browser. Jar holds the upstream API's session
// cookies on its behalf.
type Browser struct {
	ID        string
	Jar       http.CookieJar
	CreatedAt time.Time
}

type browserState struct {
	browser  Browser
	flash    *Flash
	lastSeen time.Time
}

// BrowserStore is an in-memory registry of visiting browsers.
type BrowserStore struct {
	mu       sync.Mutex
	browsers map[string]*browserState
	now      func() time.Time
	onReset  func(id string)
}

// NewBrowserStore creates an empty store.
func NewBrowserStore() *BrowserStore {
	return &BrowserStore{
		browsers: make(map[string]*browserState),
		now:      time.Now,
	}
}

// OnReset registers fn to run when a known browser id comes back with no
// in-memory state, after a restart or an idle prune. Its upstream jar starts
// empty, so whatever was logged in through the old jar is gone.
func (bs *BrowserStore) OnReset(fn func(id string)) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.onReset = fn
}

// Open returns the browser for id, registering a new one when id is empty or unknown.
// PRE: none
// POST: returned browser has a non-empty ID and a non-nil Jar; created reports a new ID
// POST: a valid id with no state keeps its id and triggers the OnReset hook
func (bs *BrowserStore) Open(id string) (b Browser, created bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = ""
	}
	b, created, reset := bs.open(id)
	if reset != nil {
		reset(b.ID)
	}
	return b, created
}

func (bs *BrowserStore) open(id string) (Browser, bool, func(string)) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if st, ok := bs.browsers[id]; ok {
		st.lastSeen = bs.now()
		return st.browser, false, nil
	}
	created := id == ""
	if created {
		id = uuid.NewString()
	}
	jar, _ := cookiejar.New(nil)
	st := &browserState{
		browser:  Browser{ID: id, Jar: jar, CreatedAt: bs.now()},
		lastSeen: bs.now(),
	}
	bs.browsers[id] = st
	if created {
		return st.browser, true, nil
	}
	return st.browser, false, bs.onReset
}

// SetFlash stores a notice for the browser's next page.
func (bs *BrowserStore) SetFlash(id string, f Flash) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if st, ok := bs.browsers[id]; ok {
		st.flash = &f
	}
}

// TakeFlash returns and clears the pending notice.
// POST: a second call returns ok=false until SetFlash is called again
func (bs *BrowserStore) TakeFlash(id string) (Flash, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	st, ok := bs.browsers[id]
	if !ok || st.flash == nil {
		return Flash{}, false
	}
	f := *st.flash
	st.flash = nil
	return f, true
}

// Len returns the number of tracked browsers.
func (bs *BrowserStore) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.browsers)
}

// Prune forgets browsers idle for longer than maxIdle. A pruned browser that
// returns goes through the OnReset hook.
func (bs *BrowserStore) Prune(maxIdle time.Duration) int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	cutoff := bs.now().Add(-maxIdle)
	n := 0
	for id, st := range bs.browsers {
		if st.lastSeen.Before(cutoff) {
			delete(bs.browsers, id)
			n++
		}
	}
	return n
}

// Run prunes browsers idle for longer than maxIdle every interval until ctx is done.
func (bs *BrowserStore) Run(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := bs.Prune(maxIdle); n > 0 {
				slog.Debug("browsers_pruned", "count", n)
			}
		}
	}
}

// Identify returns middleware that attaches the visiting browser to the request
// context, issuing an identity cookie on first visit. It never blocks a request.
func Identify(browsers *BrowserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(BrowserCookieName); err == nil {
				id = c.Value
			}
			b, created := browsers.Open(id)
			if created {
				setBrowserCookie(w, b.ID)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithBrowser(r.Context(), b)))
		})
	}
}

// BrowserFromContext extracts the browser from the request context.
func BrowserFromContext(ctx context.Context) (Browser, bool) {
	b, ok := ctx.Value(browserContextKey).(Browser)
	return b, ok
}

// ContextWithBrowser returns a context carrying b.
// Intended for use in tests and by Identify.
func ContextWithBrowser(ctx context.Context, b Browser) context.Context {
	return context.WithValue(ctx, browserContextKey, b)
}

func setBrowserCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     BrowserCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
	})
}
