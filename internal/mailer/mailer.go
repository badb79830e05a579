package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer sends transactional HTML email over SMTP. Delivery is best-effort
// everywhere in this service; callers decide whether a failure matters.
type Mailer struct {
	client *mail.Client
	from   string
}

func New(host string, port int, username, password, from string) (*Mailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer.New: %w", err)
	}
	return &Mailer{client: client, from: from}, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("Send: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("Send: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("Send: %w", err)
	}
	return nil
}
