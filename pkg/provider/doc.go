// Package provider manages the external delivery services notifications go
// out through: their configuration, health, rate limits and the senders that
// talk to them.
//
// A Registry holds one or more Provider records per channel. Each provider
// is bound to a Sender at registration time; Select picks the provider a
// delivery should use, preferring the primary and falling back to secondary
// providers when the primary is down or over its limits.
//
//	reg := provider.NewRegistry(provider.WithLogger(log))
//
//	pm, err := provider.NewPostmarkSender(postmarkCfg)
//	if err != nil {
//		return err
//	}
//	err = reg.Register(provider.Provider{
//		ID:      "postmark",
//		Name:    "postmark",
//		Channel: notifykit.ChannelEmail,
//		Active:  true,
//		Primary: true,
//		Limits:  provider.Limits{PerMinute: 300},
//	}, pm)
//
// At dispatch time:
//
//	p, err := reg.Select(ctx, notifykit.ChannelEmail)
//	if err != nil {
//		// every provider for the channel is down or rate-limited
//	}
//	sender, _ := reg.Sender(p.Name)
//	id, err := sender.Send(ctx, address, subject, body)
//	_ = reg.RecordUsage(p.ID)
//
// Bundled senders cover email via Postmark (NewPostmarkSender) and AWS SES
// (NewSESSender), SMS via AWS SNS (NewSNSSender), signed webhook delivery
// (NewWebhookSender) and a logging DevSender for local development and for
// channels without a production adapter.
//
// Health is push-based: call SetHealth from your own checks, or run
// RunHealthChecks with a Probe to poll providers on an interval.
package provider
