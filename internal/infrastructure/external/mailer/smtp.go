package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

var errNoRecipients = errors.New("email has no recipients")

// SMTPMailer delivers notifications through an SMTP relay
type SMTPMailer struct {
	cfg    config.SMTPConfig
	retry  callcontext.RetryPolicy
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer for the configured relay
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, retry: callcontext.DefaultRetryPolicy, logger: logger}
}

// Send builds a multipart message and delivers it, retrying transient failures
func (m *SMTPMailer) Send(ctx context.Context, email services.Email) error {
	msg, err := m.buildMessage(email)
	if err != nil {
		return err
	}

	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	err = callcontext.Retry(ctx, m.retry, func() error {
		return client.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		m.logger.Error("❌ Failed to send email", append(callcontext.Fields(ctx),
			zap.Strings("to", email.To), zap.Error(err))...)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("📧 Email sent", append(callcontext.Fields(ctx),
		zap.Strings("to", email.To), zap.String("subject", email.Subject))...)
	return nil
}

func (m *SMTPMailer) buildMessage(email services.Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, errNoRecipients
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(email.Subject)

	switch {
	case email.Text != "" && email.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}
	return msg, nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return mail.NewClient(m.cfg.Host, opts...)
}
