package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender, or a logging no-op sender when no host is configured.
func New(cfg Config, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		logger.Info("Mail disabled, notifications will only be logged")
		return &NopSender{logger: logger}
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// SMTPSender sends mail through an SMTP server.
type SMTPSender struct {
	cfg    Config
	logger *zap.Logger
}

// Send delivers msg. Recipients default to Config.Recipient.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(time.Duration(s.cfg.TimeoutSeconds) * time.Second),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info("Mail sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	to := msg.To
	if len(to) == 0 && s.cfg.Recipient != "" {
		to = []string{s.cfg.Recipient}
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("mail has no recipient")
	}

	m := gomail.NewMsg()
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

// NopSender logs messages instead of sending them.
type NopSender struct {
	logger *zap.Logger
}

// Send logs msg and returns nil.
func (n *NopSender) Send(ctx context.Context, msg Message) error {
	n.logger.Info("Mail not sent (disabled)",
		zap.Strings("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
	)
	return nil
}
