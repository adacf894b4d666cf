// Package reservations accepts table requests from the public site and
// forwards them to the restaurant by email.
package reservations

import (
	"net/http"
	"strings"

	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	apistatsystem "github.com/dalemusser/stratacms/internal/app/system/apistats"
	"github.com/dalemusser/stratacms/internal/app/system/inputval"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/mailer"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Sender delivers a rendered email. *mailer.Mailer satisfies it.
type Sender interface {
	Send(email mailer.Email) error
}

// Handler handles reservation submissions.
type Handler struct {
	sender Sender
	to     string
	brand  string
	logger *zap.Logger
}

// NewHandler creates a reservation handler that mails requests to to.
// An empty brand uses mailer.DefaultBrand.
func NewHandler(sender Sender, to, brand string, logger *zap.Logger) *Handler {
	if strings.TrimSpace(brand) == "" {
		brand = mailer.DefaultBrand
	}
	return &Handler{sender: sender, to: to, brand: brand, logger: logger}
}

type reservationInput struct {
	FullName        string `json:"fullName" validate:"required,max=160" label:"Full name"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone" label:"Phone number"`
	Email           string `json:"email" label:"Email"`
	GuestCount      int    `json:"guestCount" validate:"min=1,max=100" label:"Guests"`
	ReservationDate string `json:"reservationDate" validate:"required,date" label:"Date"`
	ReservationTime string `json:"reservationTime" validate:"required,clock" label:"Time"`
	Note            string `json:"note" validate:"max=2000" label:"Note"`
	Source          string `json:"source" validate:"max=40" label:"Source"`
	Locale          string `json:"locale" label:"Locale"`
}

func (in *reservationInput) trim() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.ReservationDate = strings.TrimSpace(in.ReservationDate)
	in.ReservationTime = strings.TrimSpace(in.ReservationTime)
	in.Note = strings.TrimSpace(in.Note)
	in.Source = strings.ToLower(strings.TrimSpace(in.Source))
	in.Locale = strings.TrimSpace(in.Locale)
}

func (in reservationInput) payload() mailer.ReservationPayload {
	return mailer.ReservationPayload{
		FullName:        in.FullName,
		PhoneNumber:     in.PhoneNumber,
		Email:           in.Email,
		GuestCount:      in.GuestCount,
		ReservationDate: in.ReservationDate,
		ReservationTime: in.ReservationTime,
		Note:            in.Note,
		Source:          in.Source,
		Locale:          in.Locale,
	}
}

// Submit handles POST /api/reservations.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in reservationInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	in.trim()

	res := inputval.Validate(in)
	fields := res.Fields()
	if in.Email != "" && !inputval.IsValidEmail(in.Email) {
		if _, seen := fields["email"]; !seen {
			fields["email"] = "Email must be a valid email address."
		}
	}
	if len(fields) > 0 {
		jsonutil.ValidationError(w, fields)
		return
	}

	// The form's locale hint wins; otherwise use the request's language.
	if in.Locale == "" {
		in.Locale = r.Header.Get("Accept-Language")
	}
	email := mailer.RenderReservation(in.payload(), h.brand)

	if err := h.sender.Send(mailer.Email{
		To:       h.to,
		ReplyTo:  in.Email,
		Subject:  email.Subject,
		TextBody: email.Text,
		HTMLBody: email.HTML,
	}); err != nil {
		h.logger.Error("reservation email failed",
			zap.String("full_name", in.FullName),
			zap.String("date", in.ReservationDate),
			zap.Error(err))
		jsonutil.BadGateway(w, "could not send reservation email")
		return
	}

	h.logger.Info("reservation submitted",
		zap.String("date", in.ReservationDate),
		zap.String("time", in.ReservationTime),
		zap.Int("guests", in.GuestCount))
	jsonutil.Accepted(w, map[string]bool{"ok": true})
}

// Routes returns the router mounted at /api/reservations.
func Routes(h *Handler, stats *apistatsystem.Recorder) http.Handler {
	r := chi.NewRouter()
	r.Use(apistatsystem.MiddlewareWithRecorder(stats, apistatsstore.StatTypeReservationSubmit))
	r.Post("/", h.Submit)
	return r
}
