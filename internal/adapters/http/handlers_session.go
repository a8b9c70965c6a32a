package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"brochure/internal/application/orchestrators"
)

// loginData is the login form's template data.
type loginData struct {
	Admin  bool
	Action string
	Email  string
}

func loginForm(admin bool, email string) loginData {
	if admin {
		return loginData{Admin: true, Action: "/admin/login", Email: email}
	}
	return loginData{Action: "/login", Email: email}
}

// handleLoginPage renders the student or admin login form.
func (s *server) handleLoginPage(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := "Log In"
		if admin {
			title = "Admin Log In"
		}
		s.render(w, r, http.StatusOK, "login.html", view{Title: title, Data: loginForm(admin, "")})
	}
}

// handleLogin opens an upstream session and raises the matching flag.
// POST: on success every open tab of this browser is told to re-render
func (s *server) handleLogin(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostForm.Get("email"))
		_, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Requester: s.requester(r),
			Email:     email,
			Password:  r.PostForm.Get("password"),
			Admin:     admin,
		}, s.sessionDeps())

		title, home := "Log In", "/dashboard"
		if admin {
			title, home = "Admin Log In", "/admin"
		}
		switch {
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			s.render(w, r, http.StatusUnauthorized, "login.html", view{
				Title: title,
				Flash: errorNotice("Invalid email or password."),
				Data:  loginForm(admin, email),
			})
		case err != nil:
			slog.Warn("login_failed", "admin", admin, "error", err)
			s.render(w, r, http.StatusBadGateway, "login.html", view{
				Title: title,
				Flash: errorNotice("Login failed. Please try again later."),
				Data:  loginForm(admin, email),
			})
		default:
			s.redirectWithFlash(w, r, home, "success", "Logged in successfully.")
		}
	}
}

// handleLogout closes the upstream session and clears the matching flag.
// POST: the flag is cleared for any upstream answer; tabs re-render via the session socket
func (s *server) handleLogout(admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{
			Requester: s.requester(r),
			Admin:     admin,
		}, s.sessionDeps())
		if err != nil {
			slog.Warn("logout_failed", "admin", admin, "error", err)
			s.redirectWithFlash(w, r, "/", "error", "Logout failed. Please try again.")
			return
		}
		s.redirectWithFlash(w, r, "/", "info", "You have been logged out.")
	}
}

func (s *server) sessionDeps() orchestrators.SessionDeps {
	return orchestrators.SessionDeps{Gateway: s.Gateway, Flags: s.Flags, AuditStore: s.AuditStore}
}

// sessionResetTimeout bounds the flag reset that runs inline with a request.
const sessionResetTimeout = 5 * time.Second

// forgetUpstreamSession clears the flags of a browser whose upstream cookie
// jar was lost, so gated views prompt for a fresh login again.
func (s *server) forgetUpstreamSession(browserID string) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionResetTimeout)
	defer cancel()
	if _, err := s.Flags.Reset(ctx, browserID); err != nil {
		slog.Warn("session_reset_failed", "error", err)
	}
}
