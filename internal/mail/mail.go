// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTP talks implicit TLS (port 465) with PLAIN auth.
type SMTP struct {
	Host     string
	Port     int
	From     string
	Password string
	Timeout  time.Duration
}

func NewSMTP(host string, port int, from, password string) *SMTP {
	return &SMTP{Host: host, Port: port, From: from, Password: password, Timeout: 10 * time.Second}
}

// Message renders a plain text RFC 5322 message.
func Message(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", strings.NewReplacer("\r", "", "\n", "").Replace(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", at.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	d := &tls.Dialer{NetDialer: &net.Dialer{Timeout: s.Timeout}, Config: &tls.Config{ServerName: s.Host}}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", s.From, s.Password, s.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(Message(s.From, to, subject, body, time.Now())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Log prints messages instead of sending them. Used when SMTP is not configured.
type Log struct{}

func (Log) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[mail] smtp disabled, dropping %q to %s", subject, to)
	return nil
}
