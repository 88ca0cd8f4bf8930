package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/bookline/internal/config"
	"github.com/wolfman30/bookline/internal/notify"
	"github.com/wolfman30/bookline/pkg/logging"
)

// AWSConfigLoader supplies an AWS config for the SES transport. Split out so
// email wiring stays testable without AWS credentials.
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// BuildEmailSender selects the outbound email transport from configuration.
// Unknown or unconfigured providers fall back to the stub sender, which logs
// instead of sending; startup never fails on email wiring alone.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(cfg.SendGridAPIKey, logger); sender != nil {
			logger.Info("email transport: sendgrid")
			return sender, nil
		}
		logger.Warn("sendgrid selected but no api key; using stub sender")
	case "ses":
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: ses transport needs an aws config loader")
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("email transport: ses", "region", cfg.AWSRegion)
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), logger), nil
	case "stub", "":
	default:
		logger.Warn("unknown email provider; using stub sender", "provider", cfg.EmailProvider)
	}
	return notify.NewStubEmailSender(logger), nil
}
