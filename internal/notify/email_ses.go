package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/wolfman30/bookline/pkg/logging"
)

// SESSender sends emails via AWS SES.
type SESSender struct {
	client *sesv2.Client
	logger *logging.Logger
}

// NewSESSender creates a new AWS SES email sender.
func NewSESSender(client *sesv2.Client, logger *logging.Logger) *SESSender {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SESSender{client: client, logger: logger}
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}

	fromAddress := msg.From
	if msg.FromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(msg.Body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.logger.Error("ses send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.logger.Info("email sent via ses", "to", msg.To, "subject", msg.Subject)
	return nil
}
