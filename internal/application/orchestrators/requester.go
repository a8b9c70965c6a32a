package orchestrators

import (
	"context"
	"log/slog"
	"net/http"

	"brochure/internal/domain/audit"
	"brochure/internal/domain/session"
)

// Requester identifies the browser an operation runs for.
type Requester struct {
	BrowserID   string         // opaque identity cookie value
	BrowserHash string         // hashed id, safe to persist
	Jar         http.CookieJar // the browser's upstream session cookies
	IPAddress   string
	UserAgent   string
}

// FlagWriter raises and clears session flags, notifying open tabs.
type FlagWriter interface {
	Set(ctx context.Context, browserID string, key session.Key) (session.Flags, error)
	Clear(ctx context.Context, browserID string, key session.Key) (session.Flags, error)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// event starts an audit event carrying the requester's browser and request details.
func (r Requester) event(category audit.Category, action audit.Action) audit.Event {
	return audit.NewEvent(r.BrowserHash, category, action).WithRequest(r.IPAddress, r.UserAgent)
}

// recordAudit saves e. A failed audit write never fails the operation.
func recordAudit(ctx context.Context, store AuditRecorder, e audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, e); err != nil {
		slog.Error("audit_write_failed", "category", e.Category, "action", e.Action, "error", err)
	}
}
