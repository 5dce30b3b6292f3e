// notify/sender.go

// Package notify sends build-status emails from a CI pipeline.
// Delivery goes through github.com/wneessen/go-mail; a failed delivery is
// reported to the caller but never treated as a pipeline failure.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

var (
	// ErrNoRecipients is returned when a message has no To addresses.
	ErrNoRecipients = errors.New("notify: no recipients specified")

	// ErrEmptyBody is returned when a message has neither text nor HTML.
	ErrEmptyBody = errors.New("notify: message body is empty")

	// ErrInvalidAddress wraps address parse failures from go-mail.
	ErrInvalidAddress = errors.New("notify: invalid address")
)

// SMTPConfig holds SMTP relay configuration.
type SMTPConfig struct {
	// Host is the SMTP relay hostname (e.g., "smtp.gmail.com")
	Host string

	// Port is the SMTP relay port (587 for STARTTLS, 465 for implicit TLS)
	Port int

	// Username and Password for PLAIN auth. Auth is skipped when Username is empty.
	Username string
	Password string

	// From is the sender address.
	From string

	// TLSPolicy defaults to mail.TLSMandatory (STARTTLS required). Port 465
	// switches to implicit TLS instead.
	TLSPolicy mail.TLSPolicy

	// Timeout for dialing and each SMTP command (default: 30 seconds)
	Timeout time.Duration
}

// Message is a rendered email ready to send.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers a Message. *Sender is the SMTP implementation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender sends messages through one SMTP relay.
type Sender struct {
	cfg SMTPConfig
}

// NewSender creates a sender, filling in defaults for zero fields.
func NewSender(cfg SMTPConfig) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Sender{cfg: cfg}
}

// Send builds the MIME message and delivers it in one SMTP session.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMsg(msg)
	if err != nil {
		return err
	}

	c, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("notify: failed to create client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("notify: failed to send: %w", err)
	}
	return nil
}

func (s *Sender) buildMsg(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}
	if msg.TextBody == "" && msg.HTMLBody == "" {
		return nil, ErrEmptyBody
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrInvalidAddress, s.cfg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("%w: to %v: %v", ErrInvalidAddress, msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}
	return m, nil
}

func (s *Sender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithTimeout(s.cfg.Timeout)}

	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	// The policy option may reset the port, so the port goes last.
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(s.cfg.TLSPolicy))
	}
	return append(opts, mail.WithPort(s.cfg.Port))
}
