package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
)

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting   string // Dynamic greeting based on recipient count
	Source     string
	Count      int
	Segments   []SharedSegment
	SenderName string
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// DefaultTemplate lists every shared segment with its link
var DefaultTemplate = EmailTemplate{
	SubjectFormat: `{{.Source}}: {{.Count}} segment{{if ne .Count 1}}s{{end}} ready`,
	PlainText: `{{.Greeting}}

{{if eq .Count 1}}Here is the segment{{else}}Here are the {{.Count}} segments{{end}} cut from {{.Source}}:

{{range .Segments}}{{.Name}}: {{.URL}}
{{end}}
Thanks!{{if .SenderName}}
~{{.SenderName}}{{end}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
{{if eq .Count 1}}Here is the segment{{else}}Here are the {{.Count}} segments{{end}} cut from {{.Source}}:<br>
<ul>
{{range .Segments}}<li><a href="{{.URL}}">{{.Name}}</a></li>
{{end}}</ul>
Thanks!{{if .SenderName}}<br>
~{{.SenderName}}{{end}}</div>`,
}

// FormatGreeting creates an appropriate greeting based on number of recipients
// 1 recipient: "Hi John,"
// 2 recipients: "Hi John & Jane,"
// 3+ recipients: "Hi everyone,"
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		if name := firstName(recipients[0].Name); name != "" {
			return fmt.Sprintf("Hi %s,", name)
		}
		return "Hello,"
	case 2:
		name1 := firstName(recipients[0].Name)
		name2 := firstName(recipients[1].Name)
		if name1 == "" || name2 == "" {
			return "Hello,"
		}
		return fmt.Sprintf("Hi %s & %s,", name1, name2)
	default:
		return "Hi everyone,"
	}
}

func firstName(fullName string) string {
	if i := strings.IndexByte(fullName, ' '); i >= 0 {
		return fullName[:i]
	}
	return fullName
}

// NewTemplateData builds the rendering data for req
func NewTemplateData(req *ShareRequest) TemplateData {
	return TemplateData{
		Greeting:   FormatGreeting(req.To),
		Source:     req.Source,
		Count:      len(req.Segments),
		Segments:   req.Segments,
		SenderName: req.SenderName,
	}
}

// RenderSubject renders the email subject using the template
func (t *EmailTemplate) RenderSubject(data TemplateData) (string, error) {
	return renderTemplate("subject", t.SubjectFormat, data)
}

// RenderPlainText renders the plain text email body
func (t *EmailTemplate) RenderPlainText(data TemplateData) (string, error) {
	return renderTemplate("plaintext", t.PlainText, data)
}

// RenderHTML renders the HTML email body, escaping file names and URLs
func (t *EmailTemplate) RenderHTML(data TemplateData) (string, error) {
	tmpl, err := htmltemplate.New("html").Parse(t.HTML)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func renderTemplate(name, tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
