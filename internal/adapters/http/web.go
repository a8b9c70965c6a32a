package web

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"brochure/internal/adapters/email"
	"brochure/internal/adapters/http/middleware"
	"brochure/internal/adapters/http/perf"
	auditStore "brochure/internal/adapters/storage/audit"
	"brochure/internal/adapters/storage/browserflag"
	"brochure/internal/application/orchestrators"
	"brochure/internal/application/projections"
	"brochure/internal/application/sessionstate"
)

// Gateway is everything the views need from the remote API.
type Gateway interface {
	projections.StudentLister
	projections.PortfolioFetcher
	projections.OwnPortfolioFetcher
	orchestrators.PortfolioSubmitter
	orchestrators.StudentRegistrar
	orchestrators.SessionGateway
}

// Deps holds everything NewMux wires into the handlers.
type Deps struct {
	Gateway     Gateway
	Flags       *sessionstate.Reader
	Hasher      browserflag.Hasher
	AuditStore  auditStore.Store
	EmailSender email.Sender // optional
	Collector   *perf.Collector
	SlowRequest time.Duration // 0 uses middleware.DefaultSlowRequest
	Browsers    *middleware.BrowserStore
	Limiter     *middleware.RateLimiter // optional

	// CSRFKey is the 32-byte form token secret.
	CSRFKey        []byte
	TrustedOrigins []string
	// Secure marks cookies Secure and enforces HTTPS-only CSRF checks.
	Secure bool
	// PublicURL is this site's external origin, used in emails.
	PublicURL string
}

// server carries the wired dependencies to every handler.
type server struct {
	Deps
	pages map[string]*template.Template
	about template.HTML
}

// ErrBadCSRFKey is returned by LoadCSRFKey for malformed keys.
var ErrBadCSRFKey = errors.New("CSRF key must be 64 hex characters (32 bytes)")

// LoadCSRFKey decodes a hex key. An empty key is only allowed outside
// production, where a random per-process key is generated instead.
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, ErrBadCSRFKey
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("CSRF key is required in production: %w", ErrBadCSRFKey)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "detail", "form tokens will not survive a restart; set BROCHURE_CSRF_KEY")
	return key, nil
}

func newServer(deps Deps) *server {
	if deps.Browsers == nil {
		deps.Browsers = middleware.NewBrowserStore()
	}
	s := &server{
		Deps:  deps,
		pages: parsePages(),
		about: renderAbout(),
	}
	if deps.Flags != nil {
		s.Browsers.OnReset(s.forgetUpstreamSession)
	}
	return s
}

// routes registers every handler on a fresh mux.
func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleStudents)
	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /portfolio/{id}", s.handlePortfolio)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /editportfolio", s.handleEditPortfolio)
	mux.HandleFunc("POST /editportfolio", s.handleEditPortfolioPost)

	mux.HandleFunc("GET /login", s.handleLoginPage(false))
	mux.HandleFunc("POST /login", s.handleLogin(false))
	mux.HandleFunc("POST /logout", s.handleLogout(false))
	mux.HandleFunc("GET /admin/login", s.handleLoginPage(true))
	mux.HandleFunc("POST /admin/login", s.handleLogin(true))
	mux.HandleFunc("POST /admin/logout", s.handleLogout(true))

	mux.HandleFunc("GET /admin", s.handleAdmin)
	mux.HandleFunc("GET /admin/registerstudent", s.handleRegisterPage)
	mux.HandleFunc("POST /admin/registerstudent", s.handleRegister)
	mux.HandleFunc("GET /admin/audit", s.handleAdminAuditTrail)
	mux.HandleFunc("GET /admin/perf", s.handleAdminPerf)

	mux.HandleFunc("GET /ws/session", s.handleSessionSocket)
	return mux
}

// NewMux wires HTTP handlers for the app.
// PRE: deps.Gateway, deps.Flags and deps.CSRFKey are set
func NewMux(deps Deps) http.Handler {
	s := newServer(deps)
	middleware.SecureCookies = deps.Secure

	mws := []func(http.Handler) http.Handler{
		middleware.Identify(s.Browsers),
		middleware.CSRF(deps.CSRFKey, deps.Secure, deps.TrustedOrigins),
		middleware.SecurityHeaders,
	}
	if deps.Limiter != nil {
		mws = append(mws, middleware.RateLimit(deps.Limiter))
	}
	mws = append(mws, middleware.Timing(deps.Collector, deps.SlowRequest))

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Identify -> Mux
	return middleware.Chain(s.routes(), mws...)
}
