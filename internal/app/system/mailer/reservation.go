// internal/app/system/mailer/reservation.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
)

// DefaultBrand names the restaurant when no sender name is configured.
const DefaultBrand = "Achi Vegan House"

// ReservationPayload is a table request submitted from the public site.
type ReservationPayload struct {
	FullName        string `json:"fullName"`
	PhoneNumber     string `json:"phoneNumber"`
	Email           string `json:"email,omitempty"`
	GuestCount      int    `json:"guestCount"`
	ReservationDate string `json:"reservationDate"`
	ReservationTime string `json:"reservationTime"`
	Note            string `json:"note,omitempty"`
	Source          string `json:"source,omitempty"`
	Locale          string `json:"locale,omitempty"`
}

// RenderedEmail is the output of RenderReservation.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type reservationCopy struct {
	subject  string // formatted with the guest's name
	title    string
	subtitle string
	intro    string
	heading  string
	footer   string
	labels   reservationLabels
	sources  map[string]string
}

type reservationLabels struct {
	FullName, Phone, Email, Guests, Date, Time, Source, Note string
}

var reservationCopies = map[i18n.Locale]reservationCopy{
	i18n.Vietnamese: {
		subject:  "Yêu cầu đặt bàn mới từ %s",
		title:    "Đặt bàn mới",
		subtitle: "Yêu cầu đặt bàn mới từ website",
		intro:    "Thông tin đặt bàn được gửi từ website. Bạn có thể trả lời email này để liên hệ khách.",
		heading:  "Yêu cầu đặt bàn mới",
		footer:   "Email này được gửi tự động từ website %s. Vui lòng trả lời email để liên hệ khách.",
		labels: reservationLabels{
			FullName: "Họ và tên",
			Phone:    "Số điện thoại",
			Email:    "Email",
			Guests:   "Số khách",
			Date:     "Ngày",
			Time:     "Giờ",
			Source:   "Nguồn",
			Note:     "Ghi chú / Yêu cầu đặc biệt",
		},
		sources: map[string]string{
			"website": "Website",
			"phone":   "Điện thoại",
			"walk_in": "Khách đến trực tiếp",
			"other":   "Khác",
		},
	},
	i18n.English: {
		subject:  "New reservation from %s",
		title:    "Reservation Request",
		subtitle: "New reservation request from the website",
		intro:    "Reservation details submitted from the website. Click Reply to contact the guest.",
		heading:  "New reservation request",
		footer:   "This email was sent automatically from the %s website. Click Reply to respond.",
		labels: reservationLabels{
			FullName: "Full name",
			Phone:    "Phone",
			Email:    "Email",
			Guests:   "Guests",
			Date:     "Date",
			Time:     "Time",
			Source:   "Source",
			Note:     "Note / Special request",
		},
		sources: map[string]string{
			"website": "Website",
			"phone":   "Phone",
			"walk_in": "Walk-in",
			"other":   "Other",
		},
	},
}

type reservationRow struct {
	Label  string
	Value  string
	Mailto bool
	Shade  bool
}

type reservationView struct {
	Lang     string
	Subject  string
	Brand    string
	Title    string
	Subtitle string
	Intro    string
	Rows     []reservationRow
	NoteHead string
	Note     string
	Footer   string
}

var reservationHTML = template.Must(template.New("reservation").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;background:#f8fafc;font-family:Inter,-apple-system,BlinkMacSystemFont,'Segoe UI',Arial,sans-serif;">
  <div style="max-width:720px;margin:24px auto;padding:0 12px;">
    <div style="background:#fff;border:1px solid #e2e8f0;border-radius:12px;overflow:hidden;">
      <div style="padding:20px 24px;border-bottom:1px solid #e2e8f0;background:#ecfeff;">
        <div style="font-size:18px;font-weight:700;color:#0f766e;">{{.Brand}} · {{.Title}}</div>
        <div style="margin-top:4px;font-size:13px;color:#475569;">{{.Subtitle}}</div>
      </div>
      <div style="padding:20px 24px 4px;color:#0f172a;">
        <p style="margin:0 0 16px;font-size:14px;color:#475569;">{{.Intro}}</p>
        <table cellspacing="0" cellpadding="10" style="width:100%;border-collapse:collapse;border:1px solid #e2e8f0;">
          <tbody>
{{- range $row := .Rows}}
            <tr{{if $row.Shade}} style="background:#f8fafc;"{{end}}>
              <td style="width:160px;font-weight:600;">{{$row.Label}}</td>
              <td>{{if $row.Mailto}}<a href="mailto:{{$row.Value}}" style="color:#0f766e;text-decoration:none;">{{$row.Value}}</a>{{else}}{{$row.Value}}{{end}}</td>
            </tr>
{{- end}}
          </tbody>
        </table>
{{- if .Note}}
        <div style="margin-top:18px;">
          <div style="font-weight:700;font-size:14px;margin-bottom:8px;">{{.NoteHead}}</div>
          <div style="white-space:pre-wrap;border:1px solid #e2e8f0;padding:12px 14px;border-radius:10px;">{{.Note}}</div>
        </div>
{{- end}}
      </div>
      <div style="padding:14px 24px;border-top:1px solid #e2e8f0;background:#f8fafc;font-size:12px;color:#475569;">{{.Footer}}</div>
    </div>
  </div>
</body></html>
`))

// RenderReservation builds the notification sent to the restaurant for a
// reservation request. It performs no I/O. brand defaults to DefaultBrand.
func RenderReservation(p ReservationPayload, brand string) RenderedEmail {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		brand = DefaultBrand
	}
	loc := i18n.DetectLocale(p.Locale)
	c, ok := reservationCopies[loc]
	if !ok {
		c = reservationCopies[i18n.Vietnamese]
	}

	name := strings.TrimSpace(p.FullName)
	email := strings.TrimSpace(p.Email)
	note := strings.TrimSpace(p.Note)
	source := sourceLabel(c, p.Source)

	subject := fmt.Sprintf("[%s] %s", brand, fmt.Sprintf(c.subject, name))

	rows := []reservationRow{
		{Label: c.labels.FullName, Value: name},
		{Label: c.labels.Phone, Value: strings.TrimSpace(p.PhoneNumber)},
	}
	if email != "" {
		rows = append(rows, reservationRow{Label: c.labels.Email, Value: email, Mailto: true})
	}
	rows = append(rows,
		reservationRow{Label: c.labels.Guests, Value: strconv.Itoa(p.GuestCount)},
		reservationRow{Label: c.labels.Date, Value: strings.TrimSpace(p.ReservationDate)},
		reservationRow{Label: c.labels.Time, Value: strings.TrimSpace(p.ReservationTime)},
	)
	if source != "" {
		rows = append(rows, reservationRow{Label: c.labels.Source, Value: source})
	}

	for i := range rows {
		rows[i].Shade = i%2 == 0
	}

	view := reservationView{
		Lang:     string(loc),
		Subject:  subject,
		Brand:    brand,
		Title:    c.title,
		Subtitle: c.subtitle,
		Intro:    c.intro,
		Rows:     rows,
		NoteHead: c.labels.Note,
		Note:     note,
		Footer:   fmt.Sprintf(c.footer, brand),
	}

	var html bytes.Buffer
	if err := reservationHTML.Execute(&html, view); err != nil {
		// Only reachable through a template bug; fall back to plain text.
		html.Reset()
	}

	var text strings.Builder
	text.WriteString(subject + "\n\n")
	text.WriteString(c.heading + "\n")
	for _, r := range rows {
		text.WriteString(r.Label + ": " + r.Value + "\n")
	}
	if note != "" {
		text.WriteString(c.labels.Note + ": " + note + "\n")
	}
	text.WriteString("\n" + view.Footer + "\n")

	return RenderedEmail{Subject: subject, HTML: html.String(), Text: text.String()}
}

// sourceLabel maps known source codes to display labels; unknown values are
// shown as given.
func sourceLabel(c reservationCopy, source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	if label, ok := c.sources[strings.ToLower(source)]; ok {
		return label
	}
	return source
}
