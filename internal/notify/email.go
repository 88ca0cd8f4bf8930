package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/bookline/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SendGrid, SES, stub) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent. The sender address comes from
// the stored email settings, not from transport configuration.
type EmailMessage struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	Body     string
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client *sendgrid.Client
	logger *logging.Logger
}

// NewSendGridSender creates a new SendGrid email sender. Returns nil when no
// API key is configured.
func NewSendGridSender(apiKey string, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		logger: logger,
	}
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(msg.FromName, msg.From)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject)
	return nil
}

// StubEmailSender is a no-op sender for development or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}
