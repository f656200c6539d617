package notifykit

import "time"

// QuietHours describes a daily window during which non-urgent notifications
// are suppressed. Start and End are "HH:MM" in the recipient's timezone; a
// window that ends before it starts spans midnight.
type QuietHours struct {
	Enabled  bool   `json:"enabled"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

// Contains reports whether t falls inside the quiet window.
// Malformed windows are treated as disabled rather than blocking delivery.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}
	loc := time.UTC
	if q.Timezone != "" {
		if l, err := time.LoadLocation(q.Timezone); err == nil {
			loc = l
		}
	}
	start, err := time.ParseInLocation("15:04", q.Start, loc)
	if err != nil {
		return false
	}
	end, err := time.ParseInLocation("15:04", q.End, loc)
	if err != nil {
		return false
	}

	local := t.In(loc)
	minutes := local.Hour()*60 + local.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minutes >= startMin && minutes < endMin
	}
	// Window spans midnight.
	return minutes >= startMin || minutes < endMin
}

// ChannelPreference holds a recipient's settings for one delivery channel.
type ChannelPreference struct {
	Enabled                bool       `json:"enabled"`
	UnsubscribedCategories []Category `json:"unsubscribed_categories,omitempty"`
	QuietHours             QuietHours `json:"quiet_hours,omitempty"`
}

// Unsubscribed reports whether the recipient opted out of the given category
// on this channel.
func (p ChannelPreference) Unsubscribed(category Category) bool {
	for _, c := range p.UnsubscribedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Recipient is the addressable target of a notification. It is supplied by
// the caller at send time and snapshotted onto the created message; the
// toolkit does not own or persist recipient records.
type Recipient struct {
	UserID       string                        `json:"user_id,omitempty"`
	Email        string                        `json:"email,omitempty"`
	Phone        string                        `json:"phone,omitempty"`
	PushTokens   []string                      `json:"push_tokens,omitempty"`
	WebhookURL   string                        `json:"webhook_url,omitempty"`
	Preferences  map[Channel]ChannelPreference `json:"preferences,omitempty"`
	Unsubscribed bool                          `json:"unsubscribed,omitempty"`
}

// Address resolves the recipient's address for the given channel.
// Push resolves to the first registered token; an empty string means the
// recipient is not addressable on that channel.
func (r Recipient) Address(channel Channel) string {
	switch channel {
	case ChannelEmail:
		return r.Email
	case ChannelSMS, ChannelWhatsApp:
		return r.Phone
	case ChannelPush:
		if len(r.PushTokens) > 0 {
			return r.PushTokens[0]
		}
		return ""
	case ChannelWebhook:
		return r.WebhookURL
	}
	return ""
}

// Preference returns the recipient's settings for the channel. Absent
// preference records default to enabled, matching the opt-out model.
func (r Recipient) Preference(channel Channel) ChannelPreference {
	if p, ok := r.Preferences[channel]; ok {
		return p
	}
	return ChannelPreference{Enabled: true}
}
