package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds Postmark email sender configuration.
// SenderEmail establishes the sender identity for all outbound emails.
type PostmarkConfig struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"POSTMARK_SENDER_EMAIL"`
	ReplyTo      string `env:"POSTMARK_REPLY_TO"`
}

type postmarkSender struct {
	client *postmark.Client
	config PostmarkConfig
}

// NewPostmarkSender creates a Postmark-backed email sender.
// Both tokens are required for runtime operation - this enforces explicit
// configuration rather than silent failures in production.
func NewPostmarkSender(cfg PostmarkConfig) (Sender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: ServerToken is required", ErrInvalidConfig)
	}
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("%w: AccountToken is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		config: cfg,
	}, nil
}

// Send delivers an email through Postmark's transactional API and returns
// Postmark's message id for webhook correlation. Open tracking is enabled;
// link tracking is limited to HTML to avoid mangling plain text.
func (s *postmarkSender) Send(ctx context.Context, address, subject, body string) (string, error) {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.config.SenderEmail,
		ReplyTo:    s.config.ReplyTo,
		To:         address,
		Subject:    subject,
		HTMLBody:   body,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(
			ErrSendFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return resp.MessageID, nil
}
