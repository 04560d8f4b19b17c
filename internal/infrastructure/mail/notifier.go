// Package mail implements ports.Mailer over an authenticated STARTTLS
// SMTP session.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/jordan-wright/email"

	"GalacticScribe/internal/config"
	"GalacticScribe/internal/ports"
	"GalacticScribe/internal/retry"
)

// Notifier composes multipart messages (optional attachment, optional
// plain-text body) and sends them through one scoped SMTP session per
// attempt, retrying transient failures under the shared schedule.
type Notifier struct {
	cfg    config.MailConfig
	logger *slog.Logger
	policy func() backoff.BackOff
}

var _ ports.Mailer = (*Notifier)(nil)

// Option adjusts Notifier construction.
type Option func(*Notifier)

// WithBackoff overrides the retry schedule; tests pass a zero-delay one.
func WithBackoff(policy func() backoff.BackOff) Option {
	return func(n *Notifier) {
		n.policy = policy
	}
}

// NewNotifier wires mail settings into a reusable sender.
func NewNotifier(cfg config.MailConfig, logger *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{cfg: cfg, logger: logger, policy: retry.Policy}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send delivers msg, retrying up to the shared attempt budget before the
// failure propagates.
func (n *Notifier) Send(ctx context.Context, msg ports.Message) error {
	op := func() error {
		err := n.sendOnce(msg)
		if err != nil && n.logger != nil {
			n.logger.Warn("send attempt failed", "subject", msg.Subject, "error", err)
		}
		return err
	}

	if err := retry.DoWith(ctx, n.policy(), op); err != nil {
		return fmt.Errorf("send %q to %s: %w", msg.Subject, msg.Recipient, err)
	}
	return nil
}

// sendOnce runs a single session: compose, STARTTLS upgrade with default
// trust-store verification, authenticate, send. The underlying transport
// closes the connection on every exit path.
func (n *Notifier) sendOnce(msg ports.Message) error {
	m := email.NewEmail()
	m.From = n.cfg.Sender
	m.To = []string{msg.Recipient}
	m.Subject = msg.Subject

	if msg.Body != "" {
		m.Text = []byte(msg.Body)
	}
	if msg.AttachmentPath != "" {
		if _, err := m.AttachFile(msg.AttachmentPath); err != nil {
			return fmt.Errorf("attach %s: %w", msg.AttachmentPath, err)
		}
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	return m.SendWithStartTLS(addr, auth, &tls.Config{ServerName: n.cfg.SMTPHost})
}
