package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const implicitTLSPort = 465

// smtpTransport sends through net/smtp. Port 465 uses implicit TLS; other
// ports upgrade with STARTTLS when the server offers it.
type smtpTransport struct {
	host string
	port int
	user string
	pass string
}

func (t *smtpTransport) Deliver(from string, to []string, raw []byte) error {
	port := t.port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(t.host, strconv.Itoa(port))
	auth := smtp.PlainAuth("", t.user, t.pass, t.host)

	if port != implicitTLSPort {
		return smtp.SendMail(addr, auth, from, to, raw)
	}

	dialer := &net.Dialer{Timeout: 15 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: t.host})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
