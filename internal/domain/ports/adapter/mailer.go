package adapter

import (
	"context"

	"esim-storefront/internal/domain/model"
)

// Mailer delivers a rendered transactional email. Implementations are
// best-effort; the outbox dispatcher owns retries.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailRenderer turns an outbox row's kind and payload into a subject
// line and HTML body.
type MailRenderer interface {
	Render(kind model.NotificationKind, payload []byte) (subject, htmlBody string, err error)
}
