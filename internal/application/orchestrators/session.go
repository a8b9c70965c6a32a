package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"brochure/internal/adapters/api"
	"brochure/internal/domain/audit"
	"brochure/internal/domain/session"
)

// SessionGateway opens and closes upstream sessions.
type SessionGateway interface {
	Login(ctx context.Context, jar http.CookieJar, creds api.Credentials) error
	AdminLogin(ctx context.Context, jar http.CookieJar, creds api.Credentials) error
	Logout(ctx context.Context, jar http.CookieJar) error
	AdminLogout(ctx context.Context, jar http.CookieJar) error
}

// ErrInvalidCredentials is returned when the remote API rejects a login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Requester Requester
	Email     string
	Password  string
	Admin     bool
}

// SessionDeps holds dependencies for Login and Logout.
type SessionDeps struct {
	Gateway    SessionGateway
	Flags      FlagWriter
	AuditStore AuditRecorder
}

// ExecuteLogin opens an upstream session and raises the matching flag.
// PRE: input.Requester.BrowserID is non-empty
// POST: on success the flag is set and every open tab of the browser is notified
// INVARIANT: the flag is only raised after a successful login response
func ExecuteLogin(ctx context.Context, input LoginInput, deps SessionDeps) (session.Flags, error) {
	if input.Email == "" || input.Password == "" {
		return session.Flags{}, ErrInvalidCredentials
	}
	key, action, login := session.KeyLoggedIn, audit.ActionLogin, deps.Gateway.Login
	if input.Admin {
		key, action, login = session.KeyAdminLoggedIn, audit.ActionAdminLogin, deps.Gateway.AdminLogin
	}

	err := login(ctx, input.Requester.Jar, api.Credentials{Email: input.Email, Password: input.Password})
	if errors.Is(err, api.ErrUnauthorized) {
		slog.Info("auth_event", "event", "login_failed", "key", string(key), "email", input.Email)
		recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategorySession, audit.ActionDenied).
			WithSeverity(audit.SeverityWarning).
			WithSubject(input.Email).
			WithDescription(string(action)+" rejected"))
		return session.Flags{}, ErrInvalidCredentials
	}
	if err != nil {
		return session.Flags{}, err
	}

	flags, err := deps.Flags.Set(ctx, input.Requester.BrowserID, key)
	if err != nil {
		return session.Flags{}, fmt.Errorf("record login: %w", err)
	}
	slog.Info("auth_event", "event", "login_success", "key", string(key), "email", input.Email)
	recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategorySession, action).WithSubject(input.Email))
	return flags, nil
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Requester Requester
	Admin     bool
}

// ExecuteLogout closes the upstream session and clears the matching flag.
// POST: the flag is cleared whatever the remote API answered, unless the request never reached it
func ExecuteLogout(ctx context.Context, input LogoutInput, deps SessionDeps) (session.Flags, error) {
	key, action, logout := session.KeyLoggedIn, audit.ActionLogout, deps.Gateway.Logout
	if input.Admin {
		key, action, logout = session.KeyAdminLoggedIn, audit.ActionAdminLogout, deps.Gateway.AdminLogout
	}

	if err := logout(ctx, input.Requester.Jar); err != nil {
		return session.Flags{}, err
	}
	flags, err := deps.Flags.Clear(ctx, input.Requester.BrowserID, key)
	if err != nil {
		return session.Flags{}, fmt.Errorf("record logout: %w", err)
	}
	slog.Info("auth_event", "event", "logout", "key", string(key))
	recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategorySession, action))
	return flags, nil
}
