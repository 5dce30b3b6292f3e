// metrics/metrics.go
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/pipekit/pantry/text"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// DefaultJob is the Pushgateway job name notify pushes under.
const DefaultJob = "pipekit_notify"

// Results recorded on pipekit_notifications_total.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultDryRun  = "dry_run"
)

// maxLabelLength bounds free-form label values (status, platform come from
// pipeline arguments).
const maxLabelLength = 64

// Notifications holds the notify counters on a private registry. A CI step is
// a short-lived process, so the registry is pushed rather than scraped.
type Notifications struct {
	registry    *prometheus.Registry
	total       *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewNotifications creates the collectors and registers them on a fresh
// registry.
func NewNotifications() *Notifications {
	n := &Notifications{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipekit_notifications_total",
				Help: "Build notifications by build status, platform, and delivery result.",
			},
			[]string{"status", "platform", "result"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "pipekit_notification_send_duration_seconds",
			Help: "Time spent delivering a build notification to the SMTP relay.",
			// buckets in seconds
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pipekit_notification_last_success_timestamp_seconds",
			Help: "Unix time of the last successfully delivered notification.",
		}),
	}
	n.registry.MustRegister(n.total, n.duration, n.lastSuccess)
	return n
}

// Observe records one notification outcome. d is ignored for outcomes that
// never reached the relay.
func (n *Notifications) Observe(status, platform, result string, d time.Duration) {
	n.total.WithLabelValues(label(status), label(platform), result).Inc()
	if result == ResultSent || result == ResultFailed {
		n.duration.Observe(d.Seconds())
	}
	if result == ResultSent {
		n.lastSuccess.SetToCurrentTime()
	}
}

// Counter returns the pipekit_notifications_total series for the labels.
func (n *Notifications) Counter(status, platform, result string) prometheus.Counter {
	return n.total.WithLabelValues(label(status), label(platform), result)
}

// Push sends the registry to a Prometheus Pushgateway. grouping adds extra
// grouping labels (e.g. build_id) beyond the job.
func (n *Notifications) Push(ctx context.Context, url, job string, grouping map[string]string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if job == "" {
		job = DefaultJob
	}

	p := push.New(url, job).Gatherer(n.registry)
	for k, v := range grouping {
		if v != "" {
			p = p.Grouping(k, v)
		}
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("metrics: push to %s: %w", url, err)
	}
	logger.Debug("metrics pushed", zap.String("url", url), zap.String("job", job))
	return nil
}

// label normalizes a free-form value into a bounded label.
func label(s string) string {
	s = text.Slug(s)
	if s == "" {
		return "unknown"
	}
	if len(s) > maxLabelLength {
		s = truncateUTF8(s, maxLabelLength)
	}
	return s
}

// truncateUTF8 truncates s to at most maxBytes bytes without splitting
// multi-byte UTF-8 characters.
func truncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
