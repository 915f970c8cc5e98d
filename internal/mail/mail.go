// Package mail delivers transactional email. Production sends through the
// Gmail API; LogMailer stands in when no credentials are configured.
package mail

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogMailer writes outgoing mail to the structured log instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	slog.Info("mail not sent, no transport configured", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
