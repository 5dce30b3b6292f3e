// pantry/urlutil/urlutil.go
package urlutil

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmpty       = errors.New("urlutil: empty URL")
	ErrInvalidURL  = errors.New("urlutil: not an absolute http(s) URL")
	ErrCredentials = errors.New("urlutil: credentials are not allowed in the URL")
)

// IsValidAbsHTTPURL reports whether s is an absolute http(s) URL with a host,
// no credentials in the authority, and no CR/LF anywhere in s. Surrounding
// spaces and tabs are ignored.
//
//	IsValidAbsHTTPURL("https://example.com")     // true
//	IsValidAbsHTTPURL("example.com")             // false (no scheme)
//	IsValidAbsHTTPURL("ftp://example.com")       // false
//	IsValidAbsHTTPURL("https://u:p@example.com") // false
func IsValidAbsHTTPURL(s string) bool {
	if strings.ContainsAny(s, "\r\n") {
		return false
	}
	_, err := parseAbsHTTP(strings.TrimSpace(s))
	return err == nil
}

// NormalizeEndpoint turns a service address as typically configured in CI
// ("pushgateway:9091", "https://gw.example.com/") into an absolute URL with
// no trailing slash. A missing scheme defaults to http. Values carrying CR or
// LF are rejected even when the line break is trailing.
func NormalizeEndpoint(raw string) (string, error) {
	if strings.ContainsAny(raw, "\r\n") {
		return "", ErrInvalidURL
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := parseAbsHTTP(s)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

func parseAbsHTTP(s string) (*url.URL, error) {
	if s == "" {
		return nil, ErrEmpty
	}
	if strings.ContainsAny(s, "\r\n") {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	if u.User != nil {
		return nil, ErrCredentials
	}
	return u, nil
}
