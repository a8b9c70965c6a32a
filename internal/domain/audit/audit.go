package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the part of the system they touch.
type Category string

const (
	CategorySession      Category = "session"
	CategoryPortfolio    Category = "portfolio"
	CategoryRegistration Category = "registration"
)

// Action is what happened.
type Action string

const (
	ActionLogin       Action = "login"
	ActionLogout      Action = "logout"
	ActionAdminLogin  Action = "admin_login"
	ActionAdminLogout Action = "admin_logout"
	ActionSubmit      Action = "submit"
	ActionRegister    Action = "register"
	ActionDenied      Action = "denied"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event is one audit trail entry. BrowserHash identifies the browser that caused
// it; the remote API owns user identity, so no user id is available here.
type Event struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Category    Category  `json:"category"`
	Action      Action    `json:"action"`
	Severity    Severity  `json:"severity"`
	BrowserHash string    `json:"browser_hash"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
}

// NewEvent creates an info-level event stamped with the current time.
// PRE: category and action are non-empty
// POST: ID is a fresh UUID
func NewEvent(browserHash string, category Category, action Action) Event {
	return Event{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Category:    category,
		Action:      action,
		Severity:    SeverityInfo,
		BrowserHash: browserHash,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithSubject records what the event was about, e.g. the registered email.
func (e Event) WithSubject(subject string) Event {
	e.Subject = subject
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from the HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

// ShortBrowser returns a display prefix of the browser hash.
func (e Event) ShortBrowser() string {
	if len(e.BrowserHash) <= 8 {
		return e.BrowserHash
	}
	return e.BrowserHash[:8]
}
