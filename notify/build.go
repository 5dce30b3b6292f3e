// notify/build.go
package notify

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUsage is returned when fewer than the four positional arguments are given.
var ErrUsage = errors.New("usage: <status> <platform> <build_id> <message>")

// Build describes the pipeline run a notification reports on.
type Build struct {
	Status   string
	Platform string
	BuildID  string
	Message  string

	AppName     string
	OrgName     string
	UserName    string
	VersionName string
	VersionCode string
	WebURL      string
}

// BuildFromArgs reads status, platform, build id and message from the first
// four arguments (extra arguments are ignored) and fills the app fields from s.
func BuildFromArgs(args []string, s Settings) (Build, error) {
	if len(args) < 4 {
		return Build{}, ErrUsage
	}
	return Build{
		Status:      args[0],
		Platform:    args[1],
		BuildID:     args[2],
		Message:     args[3],
		AppName:     s.AppName,
		OrgName:     s.OrgName,
		UserName:    s.UserName,
		VersionName: s.VersionName,
		VersionCode: s.VersionCode,
		WebURL:      s.WebURL,
	}, nil
}

// Capitalize upper-cases the first rune of s and lower-cases the rest,
// so "FAILED" and "failed" both become "Failed".
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return strings.ToLower(s)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// StatusStyle is the banner color and icon used by the styled template.
type StatusStyle struct {
	Color string
	Icon  string
}

var (
	styleSuccess   = StatusStyle{Color: "#28a745", Icon: "✅"}
	styleFailure   = StatusStyle{Color: "#dc3545", Icon: "❌"}
	styleStarted   = StatusStyle{Color: "#007bff", Icon: "🚀"}
	styleWarning   = StatusStyle{Color: "#ffc107", Icon: "⚠️"}
	styleCancelled = StatusStyle{Color: "#6c757d", Icon: "⏹️"}
	styleDefault   = StatusStyle{Color: "#6c757d", Icon: "ℹ️"}
)

var statusStyles = map[string]StatusStyle{
	"success":   styleSuccess,
	"succeeded": styleSuccess,
	"passed":    styleSuccess,
	"failure":   styleFailure,
	"failed":    styleFailure,
	"error":     styleFailure,
	"started":   styleStarted,
	"running":   styleStarted,
	"building":  styleStarted,
	"warning":   styleWarning,
	"unstable":  styleWarning,
	"cancelled": styleCancelled,
	"canceled":  styleCancelled,
	"aborted":   styleCancelled,
}

// StyleFor returns the style for a build status (case-insensitive).
func StyleFor(status string) StatusStyle {
	if st, ok := statusStyles[strings.ToLower(strings.TrimSpace(status))]; ok {
		return st
	}
	return styleDefault
}
