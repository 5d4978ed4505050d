package mail

import (
	"context"
	"sync"

	"esim-storefront/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer records sends instead of delivering them. Test use only.
type NoopMailer struct {
	mu   sync.Mutex
	Err  error
	Sent []SentMail
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *NoopMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
