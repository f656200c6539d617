package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// WebhookConfig holds signed webhook sender configuration.
type WebhookConfig struct {
	SigningSecret string        `env:"WEBHOOK_SIGNING_SECRET,required"`
	Timeout       time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	UserAgent     string        `env:"WEBHOOK_USER_AGENT" envDefault:"notifykit-webhook/1.0"`
}

// webhookPayload is the JSON body posted to recipient endpoints.
type webhookPayload struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SentAt  string `json:"sent_at"`
}

type webhookSender struct {
	client *http.Client
	config WebhookConfig
}

// NewWebhookSender creates a sender that POSTs notification payloads to the
// recipient's webhook URL. Each request carries an HMAC-SHA256 signature over
// "timestamp.payload" in X-Webhook-Signature, with the timestamp and a unique
// delivery ID in X-Webhook-Timestamp and X-Webhook-ID. Retries are the
// caller's responsibility; a non-2xx response is reported as a send failure.
func NewWebhookSender(cfg WebhookConfig) (Sender, error) {
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("%w: signing secret is required", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "notifykit-webhook/1.0"
	}
	return &webhookSender{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
	}, nil
}

// NewWebhookSenderWithClient creates a webhook sender with a custom HTTP
// client, mainly for tests and custom transports.
func NewWebhookSenderWithClient(cfg WebhookConfig, client *http.Client) (Sender, error) {
	s, err := NewWebhookSender(cfg)
	if err != nil {
		return nil, err
	}
	if client != nil {
		s.(*webhookSender).client = client
	}
	return s, nil
}

// Send posts the notification to the webhook URL in address. The returned
// provider message ID is the X-Webhook-ID delivery identifier, which the
// receiving system can echo back in delivery status callbacks.
func (s *webhookSender) Send(ctx context.Context, address, subject, body string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: invalid webhook URL: %w", ErrSendFailed, err)
	}
	// Restrict to HTTP/HTTPS to prevent SSRF via exotic schemes
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: only http and https webhook URLs are supported", ErrSendFailed)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: webhook URL host is required", ErrSendFailed)
	}

	deliveryID := uuid.New().String()
	timestamp := time.Now().Unix()

	payload, err := json.Marshal(webhookPayload{
		ID:      deliveryID,
		Subject: subject,
		Body:    body,
		SentAt:  time.Unix(timestamp, 0).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal payload: %w", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, address, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrSendFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("X-Webhook-Signature", signPayload(s.config.SigningSecret, timestamp, payload))
	req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-Webhook-ID", deliveryID)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: endpoint returned status %d", ErrSendFailed, resp.StatusCode)
	}
	return deliveryID, nil
}

// signPayload computes HMAC-SHA256(secret, timestamp + "." + payload).
// Binding the signature to the timestamp prevents replay attacks; the
// format matches the widely used Stripe-style webhook signature scheme.
func signPayload(secret string, timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.%s", timestamp, payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyWebhookSignature validates a signature produced by the webhook
// sender. Receiving systems can use it to authenticate deliveries. A zero
// maxAge disables the timestamp freshness check.
func VerifyWebhookSignature(secret, signature string, timestamp int64, payload []byte, maxAge time.Duration) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is required", ErrInvalidConfig)
	}
	if maxAge > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > maxAge {
			return fmt.Errorf("%w: signature timestamp too old: %v", ErrInvalidConfig, age)
		}
		if age < -1*time.Minute {
			return fmt.Errorf("%w: signature timestamp is in the future", ErrInvalidConfig)
		}
	}
	expected := signPayload(secret, timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidConfig)
	}
	return nil
}
