// notify/settings.go
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/pipekit/config"
	"github.com/dalemusser/pipekit/pantry/urlutil"
	"github.com/wneessen/go-mail"
)

// Template names accepted by EMAIL_TEMPLATE.
const (
	TemplatePlain  = "plain"
	TemplateStyled = "styled"
)

// AppKeys are the notify settings. They carry no env prefix, so the names
// pipelines already export (EMAIL_SMTP_SERVER, APP_NAME, ...) are read as is.
var AppKeys = []config.AppKey{
	{Name: "email_smtp_server", Default: "smtp.gmail.com", Desc: "SMTP relay host"},
	{Name: "email_smtp_port", Default: 587, Desc: "SMTP relay port"},
	{Name: "email_smtp_user", Default: "", Desc: "SMTP username; also the sender address"},
	{Name: "email_smtp_pass", Default: "", Desc: "SMTP password", Secret: true},
	{Name: "email_id", Default: "", Desc: "Recipient address(es), comma separated (default: email_smtp_user)"},
	{Name: "email_template", Default: TemplatePlain, Desc: `Email layout: "plain" or "styled"`},
	{Name: "email_brand", Default: "QuikApp", Desc: "Product name used in the subject and heading"},
	{Name: "email_smtp_timeout", Default: "30s", Desc: "SMTP dial/command timeout"},
	{Name: "email_send_attempts", Default: 1, Desc: "Delivery attempts before giving up"},
	{Name: "app_name", Default: "Unknown App", Desc: "App name"},
	{Name: "org_name", Default: "Unknown Organization", Desc: "Organization name"},
	{Name: "user_name", Default: "Unknown User", Desc: "User who triggered the build"},
	{Name: "version_name", Default: "1.0.0", Desc: "App version name"},
	{Name: "version_code", Default: "1", Desc: "App version code"},
	{Name: "web_url", Default: "https://example.com", Desc: "Web URL shown in the email"},
	{Name: "pushgateway_url", Default: "", Desc: "Prometheus Pushgateway URL for notify metrics (optional)"},
}

// Settings is the resolved notify configuration.
type Settings struct {
	Server   string
	Port     int
	User     string
	Pass     string
	To       []string
	Template string
	Brand    string
	Timeout  time.Duration
	Attempts int

	AppName     string
	OrgName     string
	UserName    string
	VersionName string
	VersionCode string
	WebURL      string

	PushgatewayURL string
}

// SettingsFrom converts loaded config values into Settings.
func SettingsFrom(vals config.AppConfigValues) (Settings, error) {
	s := Settings{
		Server:         strings.TrimSpace(vals.String("email_smtp_server")),
		Port:           vals.Int("email_smtp_port"),
		User:           strings.TrimSpace(vals.String("email_smtp_user")),
		Pass:           vals.String("email_smtp_pass"),
		Template:       strings.ToLower(strings.TrimSpace(vals.String("email_template"))),
		Brand:          vals.String("email_brand"),
		Timeout:        vals.Duration("email_smtp_timeout", 30*time.Second),
		Attempts:       vals.Int("email_send_attempts"),
		AppName:        vals.String("app_name"),
		OrgName:        vals.String("org_name"),
		UserName:       vals.String("user_name"),
		VersionName:    vals.String("version_name"),
		VersionCode:    vals.String("version_code"),
		WebURL:         vals.String("web_url"),
		PushgatewayURL: strings.TrimSpace(vals.String("pushgateway_url")),
	}

	s.To = splitAddresses(vals.String("email_id"))
	if len(s.To) == 0 && s.User != "" {
		s.To = []string{s.User}
	}

	var invalid []string
	if s.Port <= 0 || s.Port > 65535 {
		invalid = append(invalid, "email_smtp_port must be in 1..65535")
	}
	if s.Template != TemplatePlain && s.Template != TemplateStyled {
		invalid = append(invalid, fmt.Sprintf("email_template must be %q or %q", TemplatePlain, TemplateStyled))
	}
	if s.Attempts < 1 {
		invalid = append(invalid, "email_send_attempts must be >= 1")
	}
	if strings.TrimSpace(s.WebURL) != "" {
		if !urlutil.IsValidAbsHTTPURL(s.WebURL) {
			invalid = append(invalid, "web_url must be an absolute http(s) URL")
		}
		s.WebURL = strings.TrimSpace(s.WebURL)
	}
	if s.PushgatewayURL != "" {
		u, err := urlutil.NormalizeEndpoint(s.PushgatewayURL)
		if err != nil {
			invalid = append(invalid, "pushgateway_url: "+err.Error())
		}
		s.PushgatewayURL = u
	}
	if len(invalid) > 0 {
		return Settings{}, fmt.Errorf("notify configuration errors: invalid: %s", strings.Join(invalid, ", "))
	}
	return s, nil
}

// HasCredentials reports whether both SMTP username and password are set.
func (s Settings) HasCredentials() bool {
	return s.User != "" && s.Pass != ""
}

// SMTP returns the relay configuration for NewSender.
func (s Settings) SMTP() SMTPConfig {
	return SMTPConfig{
		Host:      s.Server,
		Port:      s.Port,
		Username:  s.User,
		Password:  s.Pass,
		From:      s.User,
		TLSPolicy: mail.TLSMandatory,
		Timeout:   s.Timeout,
	}
}

func splitAddresses(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
