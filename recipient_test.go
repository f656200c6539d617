package notifykit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifykit"
)

func TestQuietHoursContains(t *testing.T) {
	t.Parallel()

	at := func(hour, min int) time.Time {
		return time.Date(2025, 6, 15, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		hours notifykit.QuietHours
		at    time.Time
		want  bool
	}{
		{
			name:  "disabled window never matches",
			hours: notifykit.QuietHours{Enabled: false, Start: "22:00", End: "08:00"},
			at:    at(23, 0),
			want:  false,
		},
		{
			name:  "inside same-day window",
			hours: notifykit.QuietHours{Enabled: true, Start: "09:00", End: "17:00"},
			at:    at(12, 30),
			want:  true,
		},
		{
			name:  "outside same-day window",
			hours: notifykit.QuietHours{Enabled: true, Start: "09:00", End: "17:00"},
			at:    at(18, 0),
			want:  false,
		},
		{
			name:  "window end is exclusive",
			hours: notifykit.QuietHours{Enabled: true, Start: "09:00", End: "17:00"},
			at:    at(17, 0),
			want:  false,
		},
		{
			name:  "midnight-spanning window before midnight",
			hours: notifykit.QuietHours{Enabled: true, Start: "22:00", End: "08:00"},
			at:    at(23, 15),
			want:  true,
		},
		{
			name:  "midnight-spanning window after midnight",
			hours: notifykit.QuietHours{Enabled: true, Start: "22:00", End: "08:00"},
			at:    at(6, 45),
			want:  true,
		},
		{
			name:  "midnight-spanning window daytime gap",
			hours: notifykit.QuietHours{Enabled: true, Start: "22:00", End: "08:00"},
			at:    at(12, 0),
			want:  false,
		},
		{
			name:  "malformed start treated as disabled",
			hours: notifykit.QuietHours{Enabled: true, Start: "not-a-time", End: "08:00"},
			at:    at(3, 0),
			want:  false,
		},
		{
			name:  "unknown timezone falls back to UTC",
			hours: notifykit.QuietHours{Enabled: true, Start: "22:00", End: "23:00", Timezone: "Mars/Olympus"},
			at:    at(22, 30),
			want:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.hours.Contains(tt.at))
		})
	}
}

func TestRecipientAddress(t *testing.T) {
	t.Parallel()

	r := notifykit.Recipient{
		UserID:     "user-1",
		Email:      "user@example.com",
		Phone:      "+15551234567",
		PushTokens: []string{"token-a", "token-b"},
		WebhookURL: "https://example.com/hook",
	}

	assert.Equal(t, "user@example.com", r.Address(notifykit.ChannelEmail))
	assert.Equal(t, "+15551234567", r.Address(notifykit.ChannelSMS))
	assert.Equal(t, "+15551234567", r.Address(notifykit.ChannelWhatsApp))
	assert.Equal(t, "token-a", r.Address(notifykit.ChannelPush))
	assert.Equal(t, "https://example.com/hook", r.Address(notifykit.ChannelWebhook))

	empty := notifykit.Recipient{}
	assert.Empty(t, empty.Address(notifykit.ChannelEmail))
	assert.Empty(t, empty.Address(notifykit.ChannelPush))
	assert.Empty(t, empty.Address(notifykit.Channel("carrier-pigeon")))
}

func TestRecipientPreference(t *testing.T) {
	t.Parallel()

	t.Run("absent preference defaults to enabled", func(t *testing.T) {
		t.Parallel()

		r := notifykit.Recipient{}
		pref := r.Preference(notifykit.ChannelEmail)
		assert.True(t, pref.Enabled)
		assert.Empty(t, pref.UnsubscribedCategories)
	})

	t.Run("stored preference wins over default", func(t *testing.T) {
		t.Parallel()

		r := notifykit.Recipient{
			Preferences: map[notifykit.Channel]notifykit.ChannelPreference{
				notifykit.ChannelSMS: {Enabled: false},
			},
		}
		assert.False(t, r.Preference(notifykit.ChannelSMS).Enabled)
		assert.True(t, r.Preference(notifykit.ChannelEmail).Enabled)
	})
}

func TestChannelPreferenceUnsubscribed(t *testing.T) {
	t.Parallel()

	pref := notifykit.ChannelPreference{
		Enabled:                true,
		UnsubscribedCategories: []notifykit.Category{notifykit.CategoryMarketing},
	}

	assert.True(t, pref.Unsubscribed(notifykit.CategoryMarketing))
	assert.False(t, pref.Unsubscribed(notifykit.CategoryTransactional))
}
