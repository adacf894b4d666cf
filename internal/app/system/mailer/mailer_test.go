package mailer

import (
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
	auth bool
}

func newTestMailer(cfg Config, sendErr error) (*Mailer, *captured) {
	m := New(cfg, zap.NewNop())
	c := &captured{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg, c.auth = addr, from, to, string(msg), a != nil
		return sendErr
	}
	m.now = func() time.Time { return time.Date(2025, 12, 24, 10, 0, 0, 0, time.UTC) }
	return m, c
}

func TestMailer_Send(t *testing.T) {
	m, c := newTestMailer(Config{
		Host: "smtp.example.com", Port: 587,
		User: "bot@achi.vn", Pass: "secret",
		FromName: "Achi Vegan House",
	}, nil)

	err := m.Send(Email{
		To:       "owner@achi.vn",
		ReplyTo:  "guest@example.com",
		Subject:  "[Achi Vegan House] Yêu cầu đặt bàn mới từ Lan",
		TextBody: "Số khách: 4",
		HTMLBody: "<p>Số khách: 4</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if c.addr != "smtp.example.com:587" || c.from != "bot@achi.vn" || !c.auth {
		t.Errorf("envelope = %+v", c)
	}
	if len(c.to) != 1 || c.to[0] != "owner@achi.vn" {
		t.Errorf("to = %v", c.to)
	}
	for _, want := range []string{
		"From: \"Achi Vegan House\" <bot@achi.vn>\r\n",
		"Reply-To: guest@example.com\r\n",
		"Date: Wed, 24 Dec 2025 10:00:00 +0000\r\n",
		"Message-ID: <",
		"@achi.vn>\r\n",
		"multipart/alternative",
		"Content-Type: text/html; charset=UTF-8",
		"Content-Transfer-Encoding: quoted-printable",
	} {
		if !strings.Contains(c.msg, want) {
			t.Errorf("message missing %q:\n%s", want, c.msg)
		}
	}

	var subject string
	for _, line := range strings.Split(c.msg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subject = strings.TrimPrefix(line, "Subject: ")
		}
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	if err != nil || decoded != "[Achi Vegan House] Yêu cầu đặt bàn mới từ Lan" {
		t.Errorf("Subject decodes to %q (%v)", decoded, err)
	}
}

func TestMailer_Send_PlainOnlyWithoutReplyTo(t *testing.T) {
	m, c := newTestMailer(Config{Host: "localhost", Port: 1025, From: "noreply@achi.vn"}, nil)
	if err := m.Send(Email{To: "owner@achi.vn", Subject: "hi", TextBody: "plain"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if c.auth {
		t.Error("auth used without credentials")
	}
	if strings.Contains(c.msg, "Reply-To:") || strings.Contains(c.msg, "multipart") {
		t.Errorf("unexpected headers:\n%s", c.msg)
	}
	if !strings.Contains(c.msg, "From: <noreply@achi.vn>") {
		t.Errorf("From header wrong:\n%s", c.msg)
	}
}

func TestMailer_Send_Errors(t *testing.T) {
	m, _ := newTestMailer(Config{Host: "localhost", Port: 25, From: "a@b.c"}, errors.New("connection refused"))
	if err := m.Send(Email{To: "x@y.z", Subject: "s"}); err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Send() error = %v, want wrapped transport error", err)
	}
	if err := m.Send(Email{Subject: "s"}); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("Send() without To error = %v, want ErrNoRecipient", err)
	}
}

func TestNew_FromFallsBackToUser(t *testing.T) {
	m := New(Config{User: "bot@achi.vn"}, zap.NewNop())
	if m.from != "bot@achi.vn" {
		t.Errorf("from = %q, want user", m.from)
	}
}
