package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/pkg/logging"
)

// SettingsRepository provides email settings, templates, and the audit log.
type SettingsRepository interface {
	GetEmailSettings(ctx context.Context) (*EmailSettings, error)
	GetTemplate(ctx context.Context, typ TemplateType) (*EmailTemplate, error)
	SaveEmailLog(ctx context.Context, entry *EmailLog) error
}

// AppointmentReader loads appointments for the reminder use case's own
// status re-check.
type AppointmentReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*appointments.Appointment, error)
}

// Mailer implements the appointment email use cases. Every method returns a
// bool: true means the email went out, false means it was skipped or failed.
// Skips (unconfigured settings, disabled template, failed gating check) are
// policy outcomes, not errors; genuine transport failures are logged, recorded
// in the email log, and still surface as false.
type Mailer struct {
	settings SettingsRepository
	sender   EmailSender
	appts    AppointmentReader
	metrics  *metrics.EmailMetrics
	logger   *logging.Logger
}

// NewMailer constructs the appointment mailer.
func NewMailer(settings SettingsRepository, sender EmailSender, appts AppointmentReader, m *metrics.EmailMetrics, logger *logging.Logger) *Mailer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Mailer{
		settings: settings,
		sender:   sender,
		appts:    appts,
		metrics:  m,
		logger:   logger,
	}
}

// SendConfirmation emails the client that their appointment is confirmed.
func (m *Mailer) SendConfirmation(ctx context.Context, appt *appointments.Appointment) bool {
	return m.send(ctx, TemplateConfirmation, appt, appt.Client.Email)
}

// SendCancellation emails the client about a cancelled appointment. The
// status is re-verified here: caller intent alone does not fire the email.
func (m *Mailer) SendCancellation(ctx context.Context, appt *appointments.Appointment) bool {
	if appt.Status != appointments.StatusCancelled {
		m.logger.Warn("cancellation email skipped: appointment not cancelled",
			"appointment_id", appt.ID, "status", appt.Status)
		m.metrics.ObserveSend(string(TemplateCancellation), "skipped")
		return false
	}
	return m.send(ctx, TemplateCancellation, appt, appt.Client.Email)
}

// SendBookingReceived emails the admin address about a new booking.
func (m *Mailer) SendBookingReceived(ctx context.Context, appt *appointments.Appointment) bool {
	settings, err := m.settings.GetEmailSettings(ctx)
	if err != nil {
		m.logger.Error("admin booking email: load settings", "error", err)
		return false
	}
	if !settings.Configured() || settings.AdminAddress == "" {
		return false
	}
	return m.send(ctx, TemplateAdminNewBooking, appt, settings.AdminAddress)
}

// SendReminder sends the reminder email for one appointment, identified by
// id. The appointment is re-fetched and re-checked here (confirmed and not
// yet reminded) as a defense-in-depth duplicate of the scheduler's own
// checks. Returns whether the email actually went out; callers use this to
// decide whether to persist the reminder flag.
func (m *Mailer) SendReminder(ctx context.Context, id uuid.UUID) bool {
	appt, err := m.appts.FindByID(ctx, id)
	if err != nil {
		m.logger.Error("reminder email: load appointment", "appointment_id", id, "error", err)
		return false
	}
	if appt.Status != appointments.StatusConfirmed {
		m.logger.Warn("reminder email skipped: appointment not confirmed",
			"appointment_id", id, "status", appt.Status)
		m.metrics.ObserveSend(string(TemplateReminder), "skipped")
		return false
	}
	if appt.ReminderSent {
		m.logger.Warn("reminder email skipped: already sent", "appointment_id", id)
		m.metrics.ObserveSend(string(TemplateReminder), "skipped")
		return false
	}
	return m.send(ctx, TemplateReminder, appt, appt.Client.Email)
}

// send is the shared pipeline: settings, template, render, transport, audit.
func (m *Mailer) send(ctx context.Context, typ TemplateType, appt *appointments.Appointment, recipient string) bool {
	settings, err := m.settings.GetEmailSettings(ctx)
	if err != nil {
		m.logger.Error("email pipeline: load settings", "template", typ, "error", err)
		return false
	}
	if !settings.Configured() {
		m.logger.Info("email skipped: sender not configured", "template", typ)
		m.metrics.ObserveSend(string(typ), "skipped")
		return false
	}

	tpl, err := m.settings.GetTemplate(ctx, typ)
	if err != nil {
		m.logger.Error("email pipeline: load template", "template", typ, "error", err)
		return false
	}
	if tpl == nil || !tpl.Enabled {
		m.logger.Info("email skipped: template missing or disabled", "template", typ)
		m.metrics.ObserveSend(string(typ), "skipped")
		return false
	}

	subject, body := Render(tpl, appt)
	sendErr := m.sender.Send(ctx, EmailMessage{
		From:     settings.SenderAddress,
		FromName: settings.SenderName,
		To:       recipient,
		ToName:   appt.Client.Name,
		Subject:  subject,
		Body:     body,
	})

	m.writeLog(ctx, typ, appt.ID, recipient, subject, sendErr)

	if sendErr != nil {
		m.logger.Error("email send failed", "template", typ, "appointment_id", appt.ID, "error", sendErr)
		m.metrics.ObserveSend(string(typ), "failed")
		return false
	}
	m.metrics.ObserveSend(string(typ), "sent")
	return true
}

// writeLog records the audit entry. Log failures are swallowed: they must
// never change the outcome of the send itself.
func (m *Mailer) writeLog(ctx context.Context, typ TemplateType, apptID uuid.UUID, recipient, subject string, sendErr error) {
	entry := &EmailLog{
		AppointmentID: apptID,
		TemplateType:  typ,
		Recipient:     recipient,
		Subject:       subject,
		Status:        EmailLogSent,
	}
	if sendErr != nil {
		entry.Status = EmailLogFailed
		entry.ErrorMessage = sendErr.Error()
	}
	if err := m.settings.SaveEmailLog(ctx, entry); err != nil {
		m.logger.Error("email log write failed", "template", typ, "appointment_id", apptID, "error", err)
	}
}
