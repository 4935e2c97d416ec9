package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

const layoutHTML = `<!DOCTYPE html>
<html>
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px">
  <div style="background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;padding:30px;border-radius:8px 8px 0 0;text-align:center">
    <h1 style="margin:0">{{.Heading}}</h1>
  </div>
  <div style="background:#f8f9fa;padding:30px;border-radius:0 0 8px 8px">
    {{template "body" .}}
    {{if .TrackingURL}}
    <p style="text-align:center"><a href="{{.TrackingURL}}" style="display:inline-block;background:#667eea;color:#fff;padding:12px 30px;text-decoration:none;border-radius:6px">{{.ButtonLabel}}</a></p>
    {{end}}
    <p>Best regards,<br /><strong>Albedo Support Team</strong></p>
  </div>
  <p style="text-align:center;color:#666;font-size:12px;margin-top:30px;padding-top:20px;border-top:1px solid #ddd">This is an automated message. Please do not reply to this email.<br />&copy;{{year}} Albedo Support</p>
</body>
</html>`

const detailsBoxStyle = `background:#fff;padding:20px;border-radius:6px;margin:20px 0;border-left:4px solid #667eea`

var (
	ticketConfirmationHTML = `{{define "body"}}
<p>Hello {{.Name}},</p>
<p>Thank you for contacting <strong>Albedo Support</strong>! We have received your support request and our team will review it shortly.</p>
<div style="` + detailsBoxStyle + `">
  <h3 style="margin-top:0">Support Request Details</h3>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <p><strong>Tracking ID:</strong> <code>{{.Token}}</code></p>
  <p><strong>Your Message:</strong></p>
  <p style="white-space:pre-wrap">{{.Message}}</p>
</div>
<p>We aim to respond within 24 hours. If you have urgent concerns, reach us at {{.SupportContact}}.</p>
{{end}}`

	ticketConfirmationText = `Hello {{.Name}},

Thank you for contacting Albedo Support!

We have received your support request and our team will review it shortly.

Support Request Details:
------------------------
Subject: {{.Subject}}
Tracking ID: {{.Token}}

Your Message:
{{.Message}}

Track Your Request:
{{.TrackingURL}}

We aim to respond within 24 hours. If you have any urgent concerns, reach us at {{.SupportContact}}.

Best regards,
Albedo Support Team`

	ticketResponseHTML = `{{define "body"}}
<p>Hello {{.Name}},</p>
<p>Our support team has responded to your request.</p>
<div style="` + detailsBoxStyle + `">
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <p><strong>Tracking ID:</strong> <code>{{.Token}}</code></p>
  {{if .Status}}<p><strong>Status:</strong> {{.StatusLabel}}</p>{{end}}
  <p><strong>Support Team Response:</strong></p>
  <div>{{.ResponseHTML}}</div>
</div>
<p>If you have any follow-up questions, contact us at {{.SupportContact}}.</p>
{{end}}`

	ticketResponseText = `Hello {{.Name}},

Our support team has responded to your request!

Subject: {{.Subject}}
Tracking ID: {{.Token}}
{{- if .Status}}
Status: {{.StatusLabel}}
{{- end}}

Support Team Response:
{{.AdminResponse}}

View Full Conversation:
{{.TrackingURL}}

If you have any follow-up questions, contact us at {{.SupportContact}}.

Best regards,
Albedo Support Team`

	ticketStatusHTML = `{{define "body"}}
<p>Hello {{.Name}},</p>
<p>The status of your support request has changed.</p>
<div style="` + detailsBoxStyle + `">
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <p><strong>Tracking ID:</strong> <code>{{.Token}}</code></p>
  <p><strong>New Status:</strong> {{.StatusLabel}}</p>
</div>
{{end}}`

	ticketStatusText = `Hello {{.Name}},

The status of your support request has changed.

Subject: {{.Subject}}
Tracking ID: {{.Token}}
New Status: {{.StatusLabel}}

Track Your Request:
{{.TrackingURL}}

Best regards,
Albedo Support Team`

	adminTicketHTML = `{{define "body"}}
<p>A new support request has been submitted.</p>
<div style="` + detailsBoxStyle + `">
  <p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <p><strong>Tracking ID:</strong> <code>{{.Token}}</code></p>
  <p style="white-space:pre-wrap">{{.Message}}</p>
</div>
{{end}}`

	adminTicketText = `A new support request has been submitted.

From: {{.Name}} <{{.Email}}>
Subject: {{.Subject}}
Tracking ID: {{.Token}}

{{.Message}}

Open the request:
{{.TrackingURL}}`

	accountWelcomeHTML = `{{define "body"}}
<p>Hello {{.Username}},</p>
<p>An account has been created for you on <strong>Albedo Support</strong>.</p>
<div style="` + detailsBoxStyle + `">
  <p><strong>Username:</strong> {{.Username}}</p>
  <p><strong>Temporary Password:</strong> <code>{{.Password}}</code></p>
  <p><strong>Role:</strong> {{.Role}}</p>
</div>
<p>Please sign in and change your password as soon as possible.</p>
{{end}}`

	accountWelcomeText = `Hello {{.Username}},

An account has been created for you on Albedo Support.

Username: {{.Username}}
Temporary Password: {{.Password}}
Role: {{.Role}}

Sign in:
{{.TrackingURL}}

Please change your password as soon as possible.

Best regards,
Albedo Support Team`

	adminAccountHTML = `{{define "body"}}
<p>A new account has been created.</p>
<div style="` + detailsBoxStyle + `">
  <p><strong>Username:</strong> {{.Username}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Role:</strong> {{.Role}}</p>
</div>
{{end}}`

	adminAccountText = `A new account has been created.

Username: {{.Username}}
Email: {{.Email}}
Role: {{.Role}}`
)

// TicketData describes a ticket for customer-facing and admin emails.
type TicketData struct {
	Name          string
	Email         string
	Subject       string
	Message       string
	Token         string
	Status        string
	AdminResponse string
}

// AccountData describes a newly created account.
type AccountData struct {
	Username string
	Email    string
	Role     string
	Password string
}

type view struct {
	TicketData
	Username       string
	Role           string
	Password       string
	Heading        string
	ButtonLabel    string
	TrackingURL    string
	SupportContact string
	StatusLabel    string
	ResponseHTML   htmltemplate.HTML
}

// SendTicketConfirmation acknowledges a newly submitted ticket.
func (s *Sender) SendTicketConfirmation(to string, data TicketData) error {
	v := s.ticketView(data, "Support Request Received", "Track Your Request")
	return s.render(to, fmt.Sprintf("Support Request Received - %s", data.Subject), v, ticketConfirmationText, ticketConfirmationHTML)
}

// SendTicketResponse delivers an admin response. A non-empty Status makes it
// the combined response-and-status message.
func (s *Sender) SendTicketResponse(to string, data TicketData) error {
	v := s.ticketView(data, "New Response to Your Request", "View Full Conversation")
	v.ResponseHTML = renderMarkdown(data.AdminResponse)
	return s.render(to, fmt.Sprintf("Response to Your Support Request - %s", data.Subject), v, ticketResponseText, ticketResponseHTML)
}

// SendTicketStatusUpdate tells the submitter that the status changed.
func (s *Sender) SendTicketStatusUpdate(to string, data TicketData) error {
	v := s.ticketView(data, "Support Request Updated", "Track Your Request")
	return s.render(to, fmt.Sprintf("Support Request Status Update - %s", data.Subject), v, ticketStatusText, ticketStatusHTML)
}

// SendAdminTicketNotice alerts an admin about a new ticket.
func (s *Sender) SendAdminTicketNotice(to string, data TicketData) error {
	v := s.ticketView(data, "New Support Request", "Open Request")
	return s.render(to, fmt.Sprintf("New Support Request - %s", data.Subject), v, adminTicketText, adminTicketHTML)
}

// SendAccountWelcome sends credentials to a newly created account.
func (s *Sender) SendAccountWelcome(to string, data AccountData) error {
	v := view{
		TicketData:     TicketData{Email: data.Email},
		Username:       data.Username,
		Role:           data.Role,
		Password:       data.Password,
		Heading:        "Welcome to Albedo Support",
		ButtonLabel:    "Sign In",
		TrackingURL:    s.cfg.FrontendURL + "/admin/login",
		SupportContact: s.cfg.SupportContact,
	}
	return s.render(to, "Your Albedo Support Account", v, accountWelcomeText, accountWelcomeHTML)
}

// SendAdminAccountNotice alerts an admin about a new account.
func (s *Sender) SendAdminAccountNotice(to string, data AccountData) error {
	v := view{
		TicketData:     TicketData{Email: data.Email},
		Username:       data.Username,
		Role:           data.Role,
		Heading:        "New User Created",
		SupportContact: s.cfg.SupportContact,
	}
	return s.render(to, fmt.Sprintf("New User Created - %s", data.Username), v, adminAccountText, adminAccountHTML)
}

// TrackingURL is the public page where a submitter follows a ticket.
func (s *Sender) TrackingURL(token string) string {
	return fmt.Sprintf("%s/support/track/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), token)
}

func (s *Sender) ticketView(data TicketData, heading, button string) view {
	if strings.TrimSpace(data.Name) == "" {
		data.Name = "there"
	}
	return view{
		TicketData:     data,
		Heading:        heading,
		ButtonLabel:    button,
		TrackingURL:    s.TrackingURL(data.Token),
		SupportContact: s.cfg.SupportContact,
		StatusLabel:    StatusLabel(data.Status),
	}
}

// StatusLabel turns a status value such as "in_progress" into "In Progress".
func StatusLabel(status string) string {
	words := strings.Fields(strings.ReplaceAll(status, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (s *Sender) render(to, subject string, v view, textTpl, htmlTpl string) error {
	text, err := renderText(textTpl, v)
	if err != nil {
		return fmt.Errorf("render text: %w", err)
	}
	html, err := renderHTML(htmlTpl, v)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return s.Send(Message{To: []string{to}, Subject: subject, Text: text, HTML: html})
}

func renderHTML(body string, data interface{}) (string, error) {
	t, err := htmltemplate.New("layout").Funcs(htmltemplate.FuncMap{
		"year": func() int { return time.Now().Year() },
	}).Parse(layoutHTML)
	if err != nil {
		return "", err
	}
	if _, err := t.Parse(body); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tpl string, data interface{}) (string, error) {
	t, err := texttemplate.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}
