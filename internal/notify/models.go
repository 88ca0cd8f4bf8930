package notify

import (
	"time"

	"github.com/google/uuid"
)

// TemplateType identifies which appointment email a template renders.
type TemplateType string

const (
	TemplateConfirmation    TemplateType = "confirmation"
	TemplateCancellation    TemplateType = "cancellation"
	TemplateReminder        TemplateType = "reminder"
	TemplateAdminNewBooking TemplateType = "admin_new_booking"
)

// EmailSettings holds the sender and admin addresses. Transport-level
// configuration (SMTP host, API keys) lives outside this module; an empty
// sender address means email is not configured and every send short-circuits
// to "not sent".
type EmailSettings struct {
	SenderAddress string `json:"sender_address"`
	SenderName    string `json:"sender_name"`
	AdminAddress  string `json:"admin_address"`
}

// Configured reports whether outbound email can be attempted at all.
func (s *EmailSettings) Configured() bool {
	return s != nil && s.SenderAddress != ""
}

// EmailTemplate is a stored subject/body pair with {{placeholder}} markers.
// A disabled template suppresses its email type without being an error.
type EmailTemplate struct {
	Type    TemplateType `json:"type"`
	Subject string       `json:"subject"`
	Body    string       `json:"body"`
	Enabled bool         `json:"enabled"`
}

// EmailLogStatus records the outcome of a send attempt.
type EmailLogStatus string

const (
	EmailLogSent   EmailLogStatus = "sent"
	EmailLogFailed EmailLogStatus = "failed"
)

// EmailLog is the audit record written for every send attempt, success or
// failure.
type EmailLog struct {
	ID            uuid.UUID      `json:"id"`
	AppointmentID uuid.UUID      `json:"appointment_id"`
	TemplateType  TemplateType   `json:"template_type"`
	Recipient     string         `json:"recipient"`
	Subject       string         `json:"subject"`
	Status        EmailLogStatus `json:"status"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
