package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// Message is one outgoing email.
type Message struct {
	FromName string
	To       string
	Subject  string
	HTML     string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP relay. Every network step of a send
// is bounded by the caller's context.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	dialer   net.Dialer
}

// NewSMTPMailer creates an SMTPMailer. from is the envelope sender address.
// Port 465 uses implicit TLS; other ports upgrade with STARTTLS when offered.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

// Send composes msg and delivers it to the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	if msg.FromName != "" {
		gm.SetAddressHeader("From", m.from, msg.FromName)
	} else {
		gm.SetHeader("From", m.from)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	send := gomail.SendFunc(func(from string, to []string, body io.WriterTo) error {
		return m.deliver(ctx, from, to, body)
	})
	if err := gomail.Send(send, gm); err != nil {
		if ctxErr := expired(ctx); ctxErr != nil {
			return fmt.Errorf("sending mail to %s: %w: %v", msg.To, ctxErr, err)
		}
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// expired reports why ctx is done. A connection deadline can fire a moment
// before the context's own timer does.
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, from string, to []string, body io.WriterTo) error {
	conn, err := m.dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.host, strconv.Itoa(m.port)))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	// Unblocks any pending read or write once the context is done.
	raw := conn
	stop := context.AfterFunc(ctx, func() { raw.Close() })
	defer stop()

	tlsConfig := &tls.Config{ServerName: m.host}
	if m.port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if m.port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if m.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", m.user, m.password, m.host)); err != nil {
				return err
			}
		}
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
	if _, err := body.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// LogMailer only logs messages. It is used when no SMTP relay is configured.
type LogMailer struct{}

// Send logs the message headers.
func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail delivery disabled, message not sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
