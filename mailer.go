package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	gomail "github.com/wneessen/go-mail"
)

// Mailer is the outbound mail collaborator. Delivery is best effort:
// registration treats any error as a recoverable condition, never a
// failure of its own contract.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, to, subject, body string) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, to, subject, body string) error {
	if f == nil {
		return nil
	}
	return f(ctx, to, subject, body)
}

// Delivery reports the outcome of a best-effort notification. Both
// outcomes count as success for the flow that requested the send; the
// failure reason stays observable for operational logging.
type Delivery struct {
	Delivered bool
	Reason    string
}

// DeliveryFailed builds the failed outcome from an error.
func DeliveryFailed(err error) Delivery {
	d := Delivery{Delivered: false}
	if err != nil {
		d.Reason = err.Error()
	}
	return d
}

// SMTPConfig holds the mail transport settings. Auth is optional: when
// Username is empty the client connects unauthenticated, which is what
// local catch-all servers like MailHog expect.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds the dial-and-send; a slow or absent mail server
	// must never stall registration beyond it.
	Timeout time.Duration
}

// DefaultMailTimeout bounds a best-effort send.
const DefaultMailTimeout = 5 * time.Second

// SMTPMailer delivers mail through an SMTP transport.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer from transport settings.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultMailTimeout
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send connects, delivers, and closes within the configured timeout.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.cfg.Host == "" {
		return errors.New("mailer has no SMTP host configured", errors.CategoryOperation)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTimeout(m.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to create mail client")
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid mail sender")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid mail recipient")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to deliver mail")
	}

	return nil
}

// LinkLoggerMailer is the development fallback: instead of delivering,
// it logs the message body so the verification link can be copied from
// the console when no SMTP server is running.
type LinkLoggerMailer struct {
	logger Logger
}

var _ Mailer = (*LinkLoggerMailer)(nil)

func NewLinkLoggerMailer(logger Logger) *LinkLoggerMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LinkLoggerMailer{logger: logger}
}

func (m *LinkLoggerMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail fallback, not delivered", "to", to, "subject", subject)
	m.logger.Info("%s", body)
	return nil
}
