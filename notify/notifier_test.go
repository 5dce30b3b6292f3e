package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/pipekit/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wneessen/go-mail"
)

type fakeMailer struct {
	errs  []error // returned in order; nil once exhausted
	calls int
	sent  []Message
}

func (f *fakeMailer) Send(ctx context.Context, msg Message) error {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testSettings() Settings {
	return Settings{
		Server:      "smtp.example.com",
		Port:        587,
		User:        "bot@example.com",
		Pass:        "secret",
		To:          []string{"dev@example.com"},
		Template:    TemplatePlain,
		Brand:       "QuikApp",
		Attempts:    1,
		AppName:     "Garden Pal",
		VersionName: "1.0.0",
		VersionCode: "1",
	}
}

func TestNotify_Sends(t *testing.T) {
	fm := &fakeMailer{}
	n := &Notifier{Settings: testSettings(), Mailer: fm}

	outcome, err := n.Notify(context.Background(), Build{Status: "success", Platform: "android", BuildID: "7", AppName: "Garden Pal"})
	if err != nil || outcome != OutcomeSent {
		t.Fatalf("Notify = %v, %v; want sent", outcome, err)
	}
	if len(fm.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fm.sent))
	}
	msg := fm.sent[0]
	if msg.Subject != "QuikApp Build Success - Garden Pal" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "dev@example.com" {
		t.Errorf("To = %v", msg.To)
	}
}

func TestNotify_SkipsWithoutCredentials(t *testing.T) {
	for _, clear := range []string{"user", "pass"} {
		t.Run(clear, func(t *testing.T) {
			s := testSettings()
			if clear == "user" {
				s.User = ""
			} else {
				s.Pass = ""
			}
			fm := &fakeMailer{}
			m := metrics.NewNotifications()
			n := &Notifier{Settings: s, Mailer: fm, Metrics: m}

			outcome, err := n.Notify(context.Background(), Build{Status: "success", Platform: "android"})
			if outcome != OutcomeSkipped || !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("Notify = %v, %v; want skipped", outcome, err)
			}
			if fm.calls != 0 {
				t.Errorf("mailer called %d times; must not dial without credentials", fm.calls)
			}
			if got := testutil.ToFloat64(m.Counter("success", "android", metrics.ResultSkipped)); got != 1 {
				t.Errorf("skipped count = %v, want 1", got)
			}
		})
	}
}

func TestNotify_FailureIsReportedNotPanicked(t *testing.T) {
	fm := &fakeMailer{errs: []error{errors.New("dial tcp: connection refused")}}
	m := metrics.NewNotifications()
	n := &Notifier{Settings: testSettings(), Mailer: fm, Metrics: m}

	outcome, err := n.Notify(context.Background(), Build{Status: "failed", Platform: "ios"})
	if outcome != OutcomeFailed || err == nil {
		t.Fatalf("Notify = %v, %v; want failed with error", outcome, err)
	}
	if got := testutil.ToFloat64(m.Counter("failed", "ios", metrics.ResultFailed)); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
}

func TestCompose_UnknownTemplate(t *testing.T) {
	s := testSettings()
	s.Template = "newsletter"
	fm := &fakeMailer{}
	m := metrics.NewNotifications()
	n := &Notifier{Settings: s, Mailer: fm, Metrics: m}

	outcome, err := n.Notify(context.Background(), Build{Status: "success", Platform: "ios"})
	if outcome != OutcomeFailed || err == nil {
		t.Fatalf("Notify = %v, %v; want failed", outcome, err)
	}
	if !strings.Contains(err.Error(), `"newsletter"`) || !strings.Contains(err.Error(), "plain, styled") {
		t.Errorf("err = %v, want the unknown name and the available templates", err)
	}
	if fm.calls != 0 {
		t.Errorf("mailer called %d times for an unrenderable message", fm.calls)
	}
	if got := testutil.ToFloat64(m.Counter("success", "ios", metrics.ResultFailed)); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
}

func TestNotify_RetriesTransientErrors(t *testing.T) {
	s := testSettings()
	s.Attempts = 3
	fm := &fakeMailer{errs: []error{errors.New("timeout"), errors.New("timeout")}}
	m := metrics.NewNotifications()
	n := &Notifier{Settings: s, Mailer: fm, Metrics: m, RetryDelay: time.Millisecond}

	outcome, err := n.Notify(context.Background(), Build{Status: "success", Platform: "android"})
	if err != nil || outcome != OutcomeSent {
		t.Fatalf("Notify = %v, %v; want sent after retries", outcome, err)
	}
	if fm.calls != 3 {
		t.Errorf("calls = %d, want 3", fm.calls)
	}
	if got := testutil.ToFloat64(m.Counter("success", "android", metrics.ResultFailed)); got != 2 {
		t.Errorf("failed attempts counted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Counter("success", "android", metrics.ResultSent)); got != 1 {
		t.Errorf("sent attempts counted = %v, want 1", got)
	}
}

func TestNotify_CountsEveryFailedAttempt(t *testing.T) {
	s := testSettings()
	s.Attempts = 3
	fm := &fakeMailer{errs: []error{errors.New("timeout"), errors.New("timeout"), errors.New("timeout")}}
	m := metrics.NewNotifications()
	n := &Notifier{Settings: s, Mailer: fm, Metrics: m, RetryDelay: time.Millisecond}

	outcome, err := n.Notify(context.Background(), Build{Status: "failed", Platform: "ios"})
	if outcome != OutcomeFailed || err == nil {
		t.Fatalf("Notify = %v, %v; want failed", outcome, err)
	}
	if got := testutil.ToFloat64(m.Counter("failed", "ios", metrics.ResultFailed)); got != 3 {
		t.Errorf("failed attempts counted = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Counter("failed", "ios", metrics.ResultSent)); got != 0 {
		t.Errorf("sent counted = %v, want 0", got)
	}
}

func TestNotify_DoesNotRetryPermanentErrors(t *testing.T) {
	s := testSettings()
	s.Attempts = 3
	fm := &fakeMailer{errs: []error{
		&mail.SendError{Reason: mail.ErrSMTPMailFrom},
	}}
	n := &Notifier{Settings: s, Mailer: fm, RetryDelay: time.Millisecond}

	outcome, _ := n.Notify(context.Background(), Build{Status: "success"})
	if outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", outcome)
	}
	if fm.calls != 1 {
		t.Errorf("calls = %d, want 1 for a 5xx reply", fm.calls)
	}
}

func TestNotify_DryRun(t *testing.T) {
	s := testSettings()
	s.User, s.Pass = "", "" // dry run needs no credentials
	var out bytes.Buffer
	fm := &fakeMailer{}
	n := &Notifier{Settings: s, Mailer: fm, DryRun: true, DryRunOut: &out}

	outcome, err := n.Notify(context.Background(), Build{Status: "started", Platform: "android", AppName: "Garden Pal"})
	if err != nil || outcome != OutcomeDryRun {
		t.Fatalf("Notify = %v, %v; want dry run", outcome, err)
	}
	if fm.calls != 0 {
		t.Error("dry run must not send")
	}
	if !strings.Contains(out.String(), "Subject: QuikApp Build Started - Garden Pal") {
		t.Errorf("dry run output missing subject:\n%s", out.String())
	}
}

func TestNotify_StyledTemplate(t *testing.T) {
	s := testSettings()
	s.Template = TemplateStyled
	fm := &fakeMailer{}
	n := &Notifier{Settings: s, Mailer: fm}

	if _, err := n.Notify(context.Background(), Build{Status: "success"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(fm.sent[0].HTMLBody, "#28a745") {
		t.Error("styled template not used")
	}
}

func TestOutcomeString(t *testing.T) {
	tests := map[Outcome]string{
		OutcomeSent:    "sent",
		OutcomeSkipped: "skipped",
		OutcomeFailed:  "failed",
		OutcomeDryRun:  "dry_run",
		Outcome(99):    "unknown",
	}
	for o, want := range tests {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}
