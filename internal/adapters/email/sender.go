package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address; empty uses the sender's default
	Subject string
	HTML    string // HTML body
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// WelcomeSubject is the subject line of the account welcome email.
const WelcomeSubject = "Your student portfolio account is ready"

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Hello,</p>
<p>An administrator has created a portfolio account for <strong>{{.Email}}</strong>.</p>
<p>Log in at <a href="{{.LoginURL}}">{{.LoginURL}}</a> with the password you were given, then fill in your portfolio so it appears in the student directory.</p>`))

// Welcome builds the email sent to a newly registered student.
// PRE: to is a valid address; loginURL is absolute
// POST: returned request has one recipient and an escaped HTML body
func Welcome(to, loginURL string) (SendRequest, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct{ Email, LoginURL string }{to, loginURL})
	if err != nil {
		return SendRequest{}, fmt.Errorf("render welcome email: %w", err)
	}
	return SendRequest{
		To:      []string{to},
		Subject: WelcomeSubject,
		HTML:    buf.String(),
	}, nil
}
