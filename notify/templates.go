// notify/templates.go
package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"sync"
	texttemplate "text/template"
)

// EmailTemplate pairs subject, text and HTML templates for one layout.
type EmailTemplate struct {
	Name     string // Template name/identifier
	Subject  string // text/template syntax
	TextBody string // text/template syntax
	HTMLBody string // html/template syntax; values are escaped
}

// TemplateStore holds compiled email templates by name.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*compiledTemplate
}

type compiledTemplate struct {
	subject  *texttemplate.Template
	textBody *texttemplate.Template
	htmlBody *htmltemplate.Template
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		templates: make(map[string]*compiledTemplate),
	}
}

// DefaultTemplates returns a store with the plain and styled build layouts.
func DefaultTemplates() *TemplateStore {
	s := NewTemplateStore()
	for _, tpl := range []EmailTemplate{PlainTemplate, StyledTemplate} {
		if err := s.Register(tpl); err != nil {
			// Built-in templates are compiled from constants.
			panic(err)
		}
	}
	return s
}

// Register compiles and stores tpl, replacing any template with the same name.
func (s *TemplateStore) Register(tpl EmailTemplate) error {
	compiled := &compiledTemplate{}

	if tpl.Subject != "" {
		t, err := texttemplate.New(tpl.Name + "_subject").Parse(tpl.Subject)
		if err != nil {
			return fmt.Errorf("notify: failed to parse subject template %s: %w", tpl.Name, err)
		}
		compiled.subject = t
	}
	if tpl.TextBody != "" {
		t, err := texttemplate.New(tpl.Name + "_text").Parse(tpl.TextBody)
		if err != nil {
			return fmt.Errorf("notify: failed to parse text template %s: %w", tpl.Name, err)
		}
		compiled.textBody = t
	}
	if tpl.HTMLBody != "" {
		t, err := htmltemplate.New(tpl.Name + "_html").Parse(tpl.HTMLBody)
		if err != nil {
			return fmt.Errorf("notify: failed to parse HTML template %s: %w", tpl.Name, err)
		}
		compiled.htmlBody = t
	}

	s.mu.Lock()
	s.templates[tpl.Name] = compiled
	s.mu.Unlock()
	return nil
}

// Render executes the named template with data. The returned message has no
// recipients.
func (s *TemplateStore) Render(name string, data any) (Message, error) {
	s.mu.RLock()
	tpl, exists := s.templates[name]
	s.mu.RUnlock()
	if !exists {
		return Message{}, fmt.Errorf("notify: template %s not found", name)
	}

	var msg Message
	var buf bytes.Buffer

	if tpl.subject != nil {
		if err := tpl.subject.Execute(&buf, data); err != nil {
			return Message{}, fmt.Errorf("notify: failed to render subject: %w", err)
		}
		msg.Subject = buf.String()
		buf.Reset()
	}
	if tpl.textBody != nil {
		if err := tpl.textBody.Execute(&buf, data); err != nil {
			return Message{}, fmt.Errorf("notify: failed to render text body: %w", err)
		}
		msg.TextBody = buf.String()
		buf.Reset()
	}
	if tpl.htmlBody != nil {
		if err := tpl.htmlBody.Execute(&buf, data); err != nil {
			return Message{}, fmt.Errorf("notify: failed to render HTML body: %w", err)
		}
		msg.HTMLBody = buf.String()
	}
	return msg, nil
}

// Has returns true if a template exists.
func (s *TemplateStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.templates[name]
	return exists
}

// List returns the registered template names in sorted order.
func (s *TemplateStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// templateData is what the build templates see.
type templateData struct {
	Build
	Brand       string
	StatusLabel string
	Style       StatusStyle
	Accent      htmltemplate.CSS
}

func newTemplateData(b Build, brand string) templateData {
	st := StyleFor(b.Status)
	return templateData{
		Build:       b,
		Brand:       brand,
		StatusLabel: Capitalize(b.Status),
		Style:       st,
		// Colors come from the fixed style table, never from input.
		Accent: htmltemplate.CSS(st.Color),
	}
}

const subjectTemplate = `{{.Brand}} Build {{.StatusLabel}} - {{.AppName}}`

const textTemplate = `{{.Brand}} Build Notification

Status:       {{.StatusLabel}}
Platform:     {{.Platform}}
Build ID:     {{.BuildID}}
App:          {{.AppName}} (v{{.VersionName}} / {{.VersionCode}})
Organization: {{.OrgName}}
User:         {{.UserName}}
Web URL:      {{.WebURL}}
Message:      {{.Message}}
`

// PlainTemplate is the minimal layout: a heading and one labelled line per field.
var PlainTemplate = EmailTemplate{
	Name:     TemplatePlain,
	Subject:  subjectTemplate,
	TextBody: textTemplate,
	HTMLBody: `<html>
<head></head>
<body>
<h2>{{.Brand}} Build Notification</h2>
<p><b>Status:</b> {{.StatusLabel}}</p>
<p><b>Platform:</b> {{.Platform}}</p>
<p><b>Build ID:</b> {{.BuildID}}</p>
<p><b>App:</b> {{.AppName}} (v{{.VersionName}} / {{.VersionCode}})</p>
<p><b>Organization:</b> {{.OrgName}}</p>
<p><b>User:</b> {{.UserName}}</p>
<p><b>Web URL:</b> {{.WebURL}}</p>
<p><b>Message:</b> {{.Message}}</p>
</body>
</html>
`,
}

// StyledTemplate carries the same fields as PlainTemplate in a card layout
// with a status-colored banner.
var StyledTemplate = EmailTemplate{
	Name:     TemplateStyled,
	Subject:  subjectTemplate,
	TextBody: textTemplate,
	HTMLBody: `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; padding: 24px; background: #f4f5f7; font-family: -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; color: #212529; }
  .card { max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 6px rgba(0,0,0,0.08); }
  .banner { padding: 20px 24px; color: #ffffff; font-size: 20px; font-weight: 600; }
  .content { padding: 16px 24px 24px; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 8px 0; border-bottom: 1px solid #e9ecef; vertical-align: top; }
  td.label { width: 140px; color: #6c757d; font-weight: 600; }
  .message { margin-top: 16px; padding: 12px; background: #f8f9fa; border-left: 4px solid #adb5bd; white-space: pre-wrap; }
  .footer { padding: 12px 24px; font-size: 12px; color: #adb5bd; text-align: center; }
</style>
</head>
<body>
<div class="card">
  <div class="banner" style="background-color: {{.Accent}};">{{.Style.Icon}} {{.Brand}} Build {{.StatusLabel}}</div>
  <div class="content">
    <table>
      <tr><td class="label">Status</td><td>{{.StatusLabel}}</td></tr>
      <tr><td class="label">Platform</td><td>{{.Platform}}</td></tr>
      <tr><td class="label">Build ID</td><td>{{.BuildID}}</td></tr>
      <tr><td class="label">App</td><td>{{.AppName}} (v{{.VersionName}} / {{.VersionCode}})</td></tr>
      <tr><td class="label">Organization</td><td>{{.OrgName}}</td></tr>
      <tr><td class="label">User</td><td>{{.UserName}}</td></tr>
      <tr><td class="label">Web URL</td><td><a href="{{.WebURL}}">{{.WebURL}}</a></td></tr>
    </table>
    <div class="message" style="border-left-color: {{.Accent}};">{{.Message}}</div>
  </div>
  <div class="footer">Sent by {{.Brand}} CI</div>
</div>
</body>
</html>
`,
}
