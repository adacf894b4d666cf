package reservations

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/stratacms/internal/app/system/mailer"
	"github.com/dalemusser/stratacms/internal/testutil"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []mailer.Email
	err  error
}

func (f *fakeSender) Send(email mailer.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func validBody() map[string]any {
	return map[string]any{
		"fullName":        "  Trần Minh  ",
		"phoneNumber":     "+84 901 234 567",
		"email":           "minh@example.com",
		"guestCount":      2,
		"reservationDate": "2025-12-31",
		"reservationTime": "19:00",
		"source":          "Website",
	}
}

func submit(h *Handler, body any, acceptLanguage string) *testutil.ResponseRecorder {
	req := testutil.NewJSONRequest(http.MethodPost, "/", body)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	rec := testutil.NewRecorder()
	Routes(h, nil).ServeHTTP(rec, req)
	return rec
}

func TestSubmit_Accepted(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, "booking@achi.vn", "", zap.NewNop())

	rec := submit(h, validBody(), "en-US,en;q=0.9")
	rec.AssertStatus(t, http.StatusAccepted)

	var body map[string]bool
	rec.DecodeJSON(t, &body)
	if !body["ok"] {
		t.Errorf("body = %v, want ok true", body)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.To != "booking@achi.vn" || got.ReplyTo != "minh@example.com" {
		t.Errorf("To = %q, ReplyTo = %q", got.To, got.ReplyTo)
	}
	if got.Subject != "[Achi Vegan House] New reservation from Trần Minh" {
		t.Errorf("Subject = %q", got.Subject)
	}
	if !strings.Contains(got.TextBody, "Website") || !strings.Contains(got.HTMLBody, "mailto:minh@example.com") {
		t.Errorf("bodies missing source or email row")
	}
}

func TestSubmit_LocaleFieldWins(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, "booking@achi.vn", "Achi Saigon", zap.NewNop())

	body := validBody()
	body["locale"] = "vi"
	delete(body, "email")
	submit(h, body, "en").AssertStatus(t, http.StatusAccepted)

	got := sender.sent[0]
	if !strings.HasPrefix(got.Subject, "[Achi Saigon] Yêu cầu đặt bàn mới từ") {
		t.Errorf("Subject = %q, want Vietnamese with custom brand", got.Subject)
	}
	if got.ReplyTo != "" {
		t.Errorf("ReplyTo = %q, want empty without an email", got.ReplyTo)
	}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"missing name", func(b map[string]any) { b["fullName"] = "   " }, "fullName"},
		{"missing phone", func(b map[string]any) { delete(b, "phoneNumber") }, "phoneNumber"},
		{"short phone", func(b map[string]any) { b["phoneNumber"] = "12345" }, "phoneNumber"},
		{"zero guests", func(b map[string]any) { b["guestCount"] = 0 }, "guestCount"},
		{"too many guests", func(b map[string]any) { b["guestCount"] = 101 }, "guestCount"},
		{"missing date", func(b map[string]any) { delete(b, "reservationDate") }, "reservationDate"},
		{"bad date", func(b map[string]any) { b["reservationDate"] = "31/12/2025" }, "reservationDate"},
		{"bad time", func(b map[string]any) { b["reservationTime"] = "7pm" }, "reservationTime"},
		{"bad email", func(b map[string]any) { b["email"] = "not-an-email" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			body := validBody()
			tt.edit(body)

			rec := submit(NewHandler(sender, "booking@achi.vn", "", zap.NewNop()), body, "")
			rec.AssertStatus(t, http.StatusBadRequest)

			var resp struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			rec.DecodeJSON(t, &resp)
			if resp.Fields[tt.field] == "" {
				t.Errorf("fields = %v, want a problem for %s", resp.Fields, tt.field)
			}
			if len(sender.sent) != 0 {
				t.Error("email sent for an invalid reservation")
			}
		})
	}
}

func TestSubmit_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		h := NewHandler(&fakeSender{}, "booking@achi.vn", "", zap.NewNop())
		submit(h, `{"fullName":`, "").AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("mail failure", func(t *testing.T) {
		h := NewHandler(&fakeSender{err: errors.New("dial tcp: connection refused")}, "booking@achi.vn", "", zap.NewNop())
		rec := submit(h, validBody(), "")
		rec.AssertStatus(t, http.StatusBadGateway)
		if msg := rec.ErrorMessage(t); msg != "could not send reservation email" {
			t.Errorf("error = %q", msg)
		}
	})
}
