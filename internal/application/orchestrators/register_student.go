package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"brochure/internal/adapters/api"
	emailAdapter "brochure/internal/adapters/email"
	"brochure/internal/domain/audit"
	"brochure/internal/domain/portfolio"
)

// StudentRegistrar creates student logins upstream.
type StudentRegistrar interface {
	RegisterStudent(ctx context.Context, jar http.CookieJar, creds api.Credentials) error
}

// RegisterOutcome is the non-error result of a registration attempt.
type RegisterOutcome int

const (
	// Registered means the account now exists.
	Registered RegisterOutcome = iota + 1
	// Unauthorized means the remote API rejected the admin session.
	Unauthorized
)

// RegisterStudentInput carries input for the register orchestrator.
type RegisterStudentInput struct {
	Requester    Requester
	Registration portfolio.Registration
}

// RegisterStudentDeps holds dependencies for RegisterStudent.
type RegisterStudentDeps struct {
	Gateway     StudentRegistrar
	EmailSender emailAdapter.Sender // optional
	LoginURL    string              // linked from the welcome email
	AuditStore  AuditRecorder
}

// ExecuteRegisterStudent creates a student login on behalf of an admin.
// PRE: input.Requester.Jar holds an admin session
// POST: Registered or Unauthorized with nil error; every other failure is returned
// POST: a welcome email failure never changes the outcome
func ExecuteRegisterStudent(ctx context.Context, input RegisterStudentInput, deps RegisterStudentDeps) (RegisterOutcome, error) {
	reg := input.Registration
	if fields := portfolio.ValidateRegistration(reg); len(fields) > 0 {
		return 0, &portfolio.ValidationError{Fields: fields}
	}

	err := deps.Gateway.RegisterStudent(ctx, input.Requester.Jar, api.Credentials{Email: reg.Email, Password: reg.Password})
	if errors.Is(err, api.ErrUnauthorized) {
		denied := input.Requester.event(audit.CategoryRegistration, audit.ActionDenied).
			WithSeverity(audit.SeverityWarning).
			WithSubject(reg.Email).
			WithDescription("remote API refused the admin session")
		slog.Info("auth_event", "event", "register_unauthorized", "browser", denied.ShortBrowser())
		recordAudit(ctx, deps.AuditStore, denied)
		return Unauthorized, nil
	}
	if err != nil {
		slog.Warn("registration_event", "event", "register_failed", "error", err)
		return 0, err
	}

	slog.Info("registration_event", "event", "registered", "email", reg.Email)
	recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategoryRegistration, audit.ActionRegister).
		WithSubject(reg.Email).
		WithDescription("student login created"))

	if deps.EmailSender != nil {
		sendWelcome(ctx, deps, reg.Email)
	}
	return Registered, nil
}

func sendWelcome(ctx context.Context, deps RegisterStudentDeps, to string) {
	req, err := emailAdapter.Welcome(to, deps.LoginURL)
	if err != nil {
		slog.Error("welcome_email_failed", "to", to, "error", err)
		return
	}
	if _, err := deps.EmailSender.Send(ctx, req); err != nil {
		slog.Error("welcome_email_failed", "to", to, "error", err)
	}
}
