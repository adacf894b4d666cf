// internal/app/system/mailer/mailer.go
package mailer

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoRecipient is returned by Send when the email has no To address.
var ErrNoRecipient = errors.New("email has no recipient")

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends emails via SMTP.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	from     string
	fromName string
	log      *zap.Logger

	send sendFunc
	now  func() time.Time
}

// Config holds the configuration for creating a Mailer.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// New creates a new Mailer with the given configuration.
// A blank From falls back to User.
func New(cfg Config, log *zap.Logger) *Mailer {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = strings.TrimSpace(cfg.User)
	}
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		pass:     cfg.Pass,
		from:     from,
		fromName: cfg.FromName,
		log:      log,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// FromName returns the configured sender display name.
func (m *Mailer) FromName() string {
	return m.fromName
}

// Email represents an email to be sent.
type Email struct {
	To       string
	ReplyTo  string // optional
	Subject  string
	TextBody string
	HTMLBody string
}

// Send sends an email. If HTMLBody is provided, sends a multipart email with
// both plain text and HTML versions.
func (m *Mailer) Send(email Email) error {
	if strings.TrimSpace(email.To) == "" {
		return ErrNoRecipient
	}

	msg := m.buildMessage(email)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.user != "" && m.pass != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := m.send(addr, auth, m.from, []string{email.To}, msg); err != nil {
		m.log.Error("failed to send email",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))

	return nil
}

// buildMessage renders RFC 5322 headers and a quoted-printable body.
// Header values are Q-encoded so Vietnamese subjects survive transport.
func (m *Mailer) buildMessage(email Email) []byte {
	from := (&mail.Address{Name: m.fromName, Address: m.from}).String()

	var msg bytes.Buffer
	header := func(k, v string) {
		msg.WriteString(k + ": " + v + "\r\n")
	}

	header("From", from)
	header("To", email.To)
	if rt := strings.TrimSpace(email.ReplyTo); rt != "" {
		header("Reply-To", rt)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", email.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", randomToken(), messageIDHost(m.from)))
	header("MIME-Version", "1.0")

	if email.HTMLBody == "" {
		writePart(&msg, "text/plain", email.TextBody)
		return msg.Bytes()
	}

	boundary := "----=_Part_" + randomToken()
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	msg.WriteString("\r\n")

	msg.WriteString("--" + boundary + "\r\n")
	writePart(&msg, "text/plain", email.TextBody)
	msg.WriteString("\r\n--" + boundary + "\r\n")
	writePart(&msg, "text/html", email.HTMLBody)
	msg.WriteString("\r\n--" + boundary + "--\r\n")

	return msg.Bytes()
}

func writePart(buf *bytes.Buffer, contentType, body string) {
	buf.WriteString("Content-Type: " + contentType + "; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	qp := quotedprintable.NewWriter(buf)
	_, _ = qp.Write([]byte(body))
	_ = qp.Close()
}

func messageIDHost(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return from[i+1:]
	}
	return "localhost"
}

func randomToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
