package notify

import (
	"strconv"
	"strings"

	"github.com/wolfman30/bookline/internal/appointments"
)

// Render substitutes {{placeholder}} markers in the template's subject and
// body with values from the appointment. Substitution is literal string
// replacement, not template-language evaluation; unknown markers pass through
// untouched.
//
// Supported placeholders: {{customer_name}}, {{customer_email}},
// {{activity_name}}, {{appointment_date}}, {{appointment_time}},
// {{duration_minutes}}.
func Render(tpl *EmailTemplate, appt *appointments.Appointment) (subject, body string) {
	r := strings.NewReplacer(
		"{{customer_name}}", appt.Client.Name,
		"{{customer_email}}", appt.Client.Email,
		"{{activity_name}}", appt.ActivityName,
		"{{appointment_date}}", appt.StartTime.Format("Monday, January 2, 2006"),
		"{{appointment_time}}", appt.StartTime.Format("3:04 PM"),
		"{{duration_minutes}}", strconv.Itoa(appt.DurationMinutes),
	)
	return r.Replace(tpl.Subject), r.Replace(tpl.Body)
}
