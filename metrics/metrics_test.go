package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve_CountsByLabels(t *testing.T) {
	n := NewNotifications()
	n.Observe("Success", "android", ResultSent, 200*time.Millisecond)
	n.Observe("success", "android", ResultSent, 100*time.Millisecond)
	n.Observe("failure", "ios", ResultFailed, time.Second)
	n.Observe("failure", "ios", ResultSkipped, 0)

	if got := testutil.ToFloat64(n.total.WithLabelValues("success", "android", ResultSent)); got != 2 {
		t.Errorf("sent count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(n.total.WithLabelValues("failure", "ios", ResultFailed)); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(n.duration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(n.lastSuccess); got == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "unknown"},
		{"  Android ", "android"},
		{"Build Annulé", "build_annule"},
		{strings.Repeat("x", 100), strings.Repeat("x", maxLabelLength)},
	}
	for _, tt := range tests {
		if got := label(tt.in); got != tt.want {
			t.Errorf("label(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	// "é" is two bytes; cutting at 3 must not split the second one.
	if got := truncateUTF8("éé", 3); got != "é" {
		t.Errorf("truncateUTF8 = %q, want %q", got, "é")
	}
	if got := truncateUTF8("abc", 0); got != "" {
		t.Errorf("truncateUTF8 with 0 = %q", got)
	}
}

func TestPush(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifications()
	n.Observe("success", "android", ResultSent, time.Second)

	err := n.Push(context.Background(), srv.URL, "", map[string]string{"build_id": "42"}, nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if !strings.HasPrefix(gotPath, "/metrics/job/"+DefaultJob) || !strings.Contains(gotPath, "build_id/42") {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody == "" {
		t.Error("empty push body")
	}
}

func TestPush_NoURLIsNoop(t *testing.T) {
	n := NewNotifications()
	if err := n.Push(context.Background(), " ", "", nil, nil); err != nil {
		t.Errorf("Push with empty url = %v, want nil", err)
	}
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNotifications()
	if err := n.Push(context.Background(), srv.URL, "job", nil, nil); err == nil {
		t.Fatal("expected error from failing pushgateway")
	}
}
