package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESConfig holds AWS SES email sender configuration.
type SESConfig struct {
	Region      string `env:"AWS_SES_REGION" envDefault:"us-east-1"`
	SenderEmail string `env:"AWS_SES_SENDER_EMAIL"`
}

type sesSender struct {
	client *ses.Client
	config SESConfig
}

// NewSESSender creates an AWS SES backed email sender using the default
// credential chain for the configured region.
func NewSESSender(ctx context.Context, cfg SESConfig) (Sender, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &sesSender{
		client: ses.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

func (s *sesSender) Send(ctx context.Context, address, subject, body string) (string, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.config.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{address},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return aws.ToString(out.MessageId), nil
}
