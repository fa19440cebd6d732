package notification

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/access-management/internal"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single message. Callers treat delivery as best-effort;
// an error here is logged by the caller and never escalated.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg internal.MailerConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer is used when no SMTP host is configured (dev, tests): it records
// the would-be delivery and succeeds.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(to, subject, htmlBody string) error {
	m.logger.Info("mail delivery skipped: mailer not configured",
		"to", to,
		"subject", subject)
	return nil
}

// NewMailer picks the SMTP implementation when configured, log-only otherwise.
func NewMailer(cfg internal.MailerConfig, logger *slog.Logger) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}
