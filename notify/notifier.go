// notify/notifier.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/pipekit/metrics"
	"github.com/dalemusser/pipekit/pantry/retry"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// ErrMissingCredentials is returned (with OutcomeSkipped) when the SMTP
// username or password is not configured.
var ErrMissingCredentials = errors.New("notify: missing EMAIL_SMTP_USER or EMAIL_SMTP_PASS")

// Outcome is what happened to one notification.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeSkipped
	OutcomeFailed
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return metrics.ResultSent
	case OutcomeSkipped:
		return metrics.ResultSkipped
	case OutcomeFailed:
		return metrics.ResultFailed
	case OutcomeDryRun:
		return metrics.ResultDryRun
	}
	return "unknown"
}

// Notifier composes and delivers build notifications.
//
// Only Settings is required. Mailer defaults to an SMTP Sender built from
// Settings, Templates to DefaultTemplates.
type Notifier struct {
	Settings  Settings
	Mailer    Mailer
	Templates *TemplateStore
	Metrics   *metrics.Notifications
	Logger    *zap.Logger

	// DryRun writes the rendered message to DryRunOut instead of sending it.
	DryRun    bool
	DryRunOut io.Writer

	// RetryDelay is the first backoff delay between attempts (default 2s).
	RetryDelay time.Duration
}

// Compose renders the notification for b using the configured template.
func (n *Notifier) Compose(b Build) (Message, error) {
	store := n.Templates
	if store == nil {
		store = DefaultTemplates()
	}
	name := n.Settings.Template
	if name == "" {
		name = TemplatePlain
	}

	if !store.Has(name) {
		return Message{}, fmt.Errorf("notify: unknown email template %q (available: %s)",
			name, strings.Join(store.List(), ", "))
	}

	msg, err := store.Render(name, newTemplateData(b, n.Settings.Brand))
	if err != nil {
		return Message{}, err
	}
	msg.To = n.Settings.To
	return msg, nil
}

// Notify renders and delivers one build notification.
//
// The returned error explains a skipped or failed delivery; callers in a CI
// step log it and carry on, since a notification must never fail the build.
func (n *Notifier) Notify(ctx context.Context, b Build) (Outcome, error) {
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if !n.DryRun && !n.Settings.HasCredentials() {
		logger.Warn("Missing EMAIL_SMTP_USER or EMAIL_SMTP_PASS. Skipping email.")
		n.observe(b, OutcomeSkipped, 0)
		return OutcomeSkipped, ErrMissingCredentials
	}

	msg, err := n.Compose(b)
	if err != nil {
		logger.Error("Failed to compose email", zap.Error(err))
		n.observe(b, OutcomeFailed, 0)
		return OutcomeFailed, err
	}

	if n.DryRun {
		if err := writeDryRun(n.DryRunOut, n.Settings.User, msg); err != nil {
			return OutcomeFailed, fmt.Errorf("notify: write dry run: %w", err)
		}
		n.observe(b, OutcomeDryRun, 0)
		return OutcomeDryRun, nil
	}

	mailer := n.Mailer
	if mailer == nil {
		mailer = NewSender(n.Settings.SMTP())
	}

	cfg := retry.Config{
		MaxAttempts:  n.Settings.Attempts,
		InitialDelay: n.RetryDelay,
		Jitter:       0.1,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn("email delivery failed; retrying",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		},
	}

	// Every attempt is counted on its own, so a send that succeeds on the
	// third try records two failures and one success.
	attempts := 0
	start := time.Now()
	err = retry.Do(ctx, cfg, func(ctx context.Context) error {
		attempts++
		began := time.Now()
		if err := mailer.Send(ctx, msg); err != nil {
			n.observe(b, OutcomeFailed, time.Since(began))
			if !retryable(err) {
				return retry.PermanentError(err)
			}
			return err
		}
		n.observe(b, OutcomeSent, time.Since(began))
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("Failed to send email", zap.Strings("to", msg.To),
			zap.Int("attempts", attempts), zap.Error(err))
		if attempts == 0 {
			n.observe(b, OutcomeFailed, 0)
		}
		return OutcomeFailed, err
	}

	logger.Info("Email sent to "+strings.Join(msg.To, ", "),
		zap.String("subject", msg.Subject), zap.Int("attempts", attempts), zap.Duration("elapsed", elapsed))
	return OutcomeSent, nil
}

func (n *Notifier) observe(b Build, o Outcome, d time.Duration) {
	if n.Metrics != nil {
		n.Metrics.Observe(b.Status, b.Platform, o.String(), d)
	}
}

// retryable reports whether another attempt could succeed. Bad input and
// permanent (5xx) SMTP replies are final.
func retryable(err error) bool {
	if errors.Is(err, ErrNoRecipients) || errors.Is(err, ErrEmptyBody) || errors.Is(err, ErrInvalidAddress) {
		return false
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.IsTemp()
	}
	return true
}

func writeDryRun(w io.Writer, from string, msg Message) error {
	if w == nil {
		w = io.Discard
	}
	_, err := fmt.Fprintf(w, "From: %s\nTo: %s\nSubject: %s\n\n%s\n%s",
		from, strings.Join(msg.To, ", "), msg.Subject, msg.TextBody, msg.HTMLBody)
	return err
}
