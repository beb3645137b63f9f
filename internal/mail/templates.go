package mail

import (
	"strings"
	"text/template"
	"time"

	"github.com/edutech-labs/course-booking/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// chf formats amounts with Swiss grouping for email bodies.
var chf = message.NewPrinter(language.MustParse("de-CH"))

func formatPrice(amount float64) string {
	return chf.Sprintf("CHF %.2f", amount)
}

// formatDate renders the long localized form used in both email bodies,
// e.g. "Monday, 2 March 2026".
func formatDate(t time.Time) string {
	return t.Format("Monday, 2 January 2006")
}

// bookingEmailData is the shared template context for both booking emails.
type bookingEmailData struct {
	Course             *model.Course
	Booking            model.BookingRequest
	ConfirmationNumber string
	BookingDate        string
	StartDate          string
	EndDate            string
	TotalPrice         string
	Requirements       string
	FromName           string
}

func newBookingEmailData(cfg *model.EmailConfig, course *model.Course, booking model.BookingRequest, code string, now time.Time) bookingEmailData {
	requirements := strings.TrimSpace(booking.SpecialRequirements)
	if requirements == "" {
		requirements = "None"
	}
	return bookingEmailData{
		Course:             course,
		Booking:            booking,
		ConfirmationNumber: code,
		BookingDate:        now.Format("02/01/2006 15:04"),
		StartDate:          formatDate(course.StartDate),
		EndDate:            formatDate(course.EndDate),
		TotalPrice:         formatPrice(float64(booking.Tickets) * course.Price),
		Requirements:       requirements,
		FromName:           cfg.FromName,
	}
}

var customerBodyTmpl = template.Must(template.New("customer").Parse(`Dear {{.Booking.FullName}},

Thank you for booking your spot in "{{.Course.Title}}"!

Booking Details:
---------------
Confirmation Number: {{.ConfirmationNumber}}
Booking Date: {{.BookingDate}}

Course Information:
------------------
Course: {{.Course.Title}}
Date: {{.StartDate}} - {{.EndDate}}
Time: {{.Course.Time}}
Duration: {{.Course.Duration}}
Instructor: {{.Course.Instructor}}

Your Booking:
------------
Number of Tickets: {{.Booking.Tickets}}
Total Price: {{.TotalPrice}}

Next Steps:
-----------
1. You will receive an invoice separately
2. Please arrive 15 minutes before the start time
3. Bring your laptop and any required materials
4. The venue address and additional details will be sent one week before the course

If you have any questions, please don't hesitate to contact us.

Best regards,
The {{.FromName}} Team
`))

var adminBodyTmpl = template.Must(template.New("admin").Parse(`New Course Booking Notification

Booking Reference: {{.ConfirmationNumber}}
Timestamp: {{.BookingDate}}

Course Details:
--------------
Title: {{.Course.Title}}
Date: {{.StartDate}} - {{.EndDate}}
Time: {{.Course.Time}}
Instructor: {{.Course.Instructor}}

Customer Information:
-------------------
Name: {{.Booking.FullName}}
Email: {{.Booking.Email}}
Phone: {{.Booking.Phone}}
Number of Tickets: {{.Booking.Tickets}}
Total Price: {{.TotalPrice}}
Special Requirements: {{.Requirements}}

System Information:
-----------------
Course ID: {{.Course.ID}}
Booking Platform: Web
`))

func renderBody(tmpl *template.Template, data bookingEmailData) string {
	var b strings.Builder
	// The templates reference only fields that exist; Execute cannot fail.
	_ = tmpl.Execute(&b, data)
	return b.String()
}
