package preference

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit"
)

// Deny reasons reported by the gate. The zero value means allowed.
const (
	ReasonBlacklisted     = "address_blacklisted"
	ReasonUnsubscribed    = "recipient_unsubscribed"
	ReasonChannelDisabled = "channel_disabled"
	ReasonCategoryOptOut  = "category_opt_out"
	ReasonQuietHours      = "quiet_hours"
)

// Decision is the outcome of a preference check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Gate decides whether a notification may be sent to a recipient on a given
// channel. Checks run cheapest-terminal first: a blacklisted address denies
// without consulting any preference record. Any case the recipient has not
// explicitly configured defaults to allow (opt-out model).
type Gate struct {
	blacklist Blacklist
	logger    *slog.Logger
	now       func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the logger for the Gate.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock overrides the time source used for quiet-hour checks.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate creates a preference gate backed by the given blacklist.
func NewGate(blacklist Blacklist, opts ...GateOption) (*Gate, error) {
	if blacklist == nil {
		return nil, ErrBlacklistNil
	}

	g := &Gate{
		blacklist: blacklist,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CanSend checks, in order: address blacklist, global unsubscribe, channel
// enabled flag, category opt-out, quiet hours. Transactional and alert
// traffic is exempt from quiet hours. The returned error is non-nil only for
// blacklist storage failures; preference denials are a Decision, not an error.
func (g *Gate) CanSend(ctx context.Context, recipient notifykit.Recipient, channel notifykit.Channel, category notifykit.Category) (Decision, error) {
	if address := recipient.Address(channel); address != "" {
		blocked, err := g.blacklist.IsBlacklisted(ctx, address)
		if err != nil {
			return Decision{}, err
		}
		if blocked {
			return Decision{Reason: ReasonBlacklisted}, nil
		}
	}

	if recipient.Unsubscribed {
		return Decision{Reason: ReasonUnsubscribed}, nil
	}

	pref := recipient.Preference(channel)
	if !pref.Enabled {
		return Decision{Reason: ReasonChannelDisabled}, nil
	}
	if pref.Unsubscribed(category) {
		return Decision{Reason: ReasonCategoryOptOut}, nil
	}

	if category != notifykit.CategoryTransactional && category != notifykit.CategoryAlert {
		if pref.QuietHours.Contains(g.now()) {
			return Decision{Reason: ReasonQuietHours}, nil
		}
	}

	return Decision{Allowed: true}, nil
}
