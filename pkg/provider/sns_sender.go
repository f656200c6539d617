package provider

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSConfig holds AWS SNS SMS sender configuration.
type SNSConfig struct {
	Region   string `env:"AWS_SNS_REGION" envDefault:"us-east-1"`
	SenderID string `env:"AWS_SNS_SENDER_ID"`
}

type snsSender struct {
	client *sns.Client
	config SNSConfig
}

// NewSNSSender creates an AWS SNS backed SMS sender using the default
// credential chain for the configured region.
func NewSNSSender(ctx context.Context, cfg SNSConfig) (Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &snsSender{
		client: sns.NewFromConfig(awsCfg),
		config: cfg,
	}, nil
}

// Send publishes the body as an SMS to the phone number in address.
// The subject is ignored; SMS has no subject line.
func (s *snsSender) Send(ctx context.Context, address, subject, body string) (string, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(address),
		Message:     aws.String(body),
	}
	if s.config.SenderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.config.SenderID),
			},
		}
	}
	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return aws.ToString(out.MessageId), nil
}
