package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds SMTP settings and the links embedded in messages.
type Config struct {
	Enable         bool
	Host           string
	Port           int
	User           string
	Pass           string
	FromEmail      string
	FromName       string
	SupportContact string
	FrontendURL    string
}

// Message is a single email to send. Text and HTML are sent as
// multipart/alternative when both are set.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers an already encoded message.
type Transport interface {
	Deliver(from string, to []string, raw []byte) error
}

// Sender renders and sends emails. When disabled or missing credentials it
// logs what it would have sent and returns nil.
type Sender struct {
	cfg       Config
	transport Transport
	logger    *zap.Logger
}

type Option func(*Sender)

// WithLogger sets the logger used for disabled-mode and delivery messages.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sender) {
		if l != nil {
			s.logger = l.Named("Mail")
		}
	}
}

// WithTransport replaces SMTP delivery.
func WithTransport(t Transport) Option {
	return func(s *Sender) {
		if t != nil {
			s.transport = t
		}
	}
}

func New(cfg Config, opts ...Option) *Sender {
	s := &Sender{cfg: cfg, logger: zap.NewNop()}
	s.transport = &smtpTransport{host: cfg.Host, port: cfg.Port, user: cfg.User, pass: cfg.Pass}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether messages are actually delivered.
func (s *Sender) Enabled() bool {
	return s.cfg.Enable && strings.TrimSpace(s.cfg.User) != ""
}

// Send dispatches an email.
func (s *Sender) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	if !s.Enabled() {
		s.logger.Info("email disabled, would send",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return nil
	}

	raw, err := s.encode(msg, time.Now())
	if err != nil {
		return err
	}
	if err := s.transport.Deliver(s.fromAddress(), msg.To, raw); err != nil {
		return fmt.Errorf("mail: deliver to %s: %w", strings.Join(msg.To, ","), err)
	}
	s.logger.Info("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *Sender) fromAddress() string {
	if s.cfg.FromEmail != "" {
		return s.cfg.FromEmail
	}
	return s.cfg.User
}

func (s *Sender) fromHeader() string {
	addr := s.fromAddress()
	if s.cfg.FromName == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.FromName), addr)
}

// encode builds the RFC 5322 message with a multipart/alternative body.
func (s *Sender) encode(msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}

	writeHeader("MIME-Version", "1.0")
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(s.fromAddress())))
	writeHeader("From", s.fromHeader())
	writeHeader("To", strings.Join(msg.To, ", "))
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))

	if msg.HTML == "" || msg.Text == "" {
		contentType := "text/plain; charset=UTF-8"
		body := msg.Text
		if msg.HTML != "" {
			contentType = "text/html; charset=UTF-8"
			body = msg.HTML
		}
		writeHeader("Content-Type", contentType)
		buf.WriteString("\r\n")
		buf.WriteString(body)
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
