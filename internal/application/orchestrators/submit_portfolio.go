package orchestrators

import (
	"context"
	"log/slog"
	"net/http"

	"brochure/internal/domain/audit"
	"brochure/internal/domain/portfolio"
)

// PortfolioSubmitter replaces the caller's portfolio upstream.
type PortfolioSubmitter interface {
	SubmitPortfolio(ctx context.Context, jar http.CookieJar, p portfolio.Portfolio) error
}

// SubmitPortfolioInput carries input for the submit orchestrator.
type SubmitPortfolioInput struct {
	Requester Requester
	Portfolio portfolio.Portfolio
}

// SubmitPortfolioDeps holds dependencies for SubmitPortfolio.
type SubmitPortfolioDeps struct {
	Gateway    PortfolioSubmitter
	AuditStore AuditRecorder
}

// ExecuteSubmitPortfolio validates the portfolio and replaces the stored record.
// PRE: input.Requester.Jar holds a student session
// POST: on validation failure returns *portfolio.ValidationError and the gateway is never called
// POST: on success the whole record upstream equals input.Portfolio
func ExecuteSubmitPortfolio(ctx context.Context, input SubmitPortfolioInput, deps SubmitPortfolioDeps) error {
	p := input.Portfolio
	p.Normalize()

	if fields := portfolio.Validate(p); len(fields) > 0 {
		slog.Info("portfolio_event", "event", "submit_invalid", "fields", len(fields))
		return &portfolio.ValidationError{Fields: fields}
	}

	if err := deps.Gateway.SubmitPortfolio(ctx, input.Requester.Jar, p); err != nil {
		slog.Warn("portfolio_event", "event", "submit_failed", "error", err)
		recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategoryPortfolio, audit.ActionSubmit).
			WithSeverity(audit.SeverityWarning).
			WithSubject(p.Email).
			WithDescription("submit rejected: "+err.Error()))
		return err
	}

	slog.Info("portfolio_event", "event", "submitted", "projects", len(p.Projects))
	recordAudit(ctx, deps.AuditStore, input.Requester.event(audit.CategoryPortfolio, audit.ActionSubmit).
		WithSubject(p.Email).
		WithDescription("portfolio replaced"))
	return nil
}
