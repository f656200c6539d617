package notifykit

// Channel represents a logical notification delivery medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelWebhook  Channel = "webhook"
)

// Valid reports whether the channel is one of the supported media.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelWhatsApp, ChannelWebhook:
		return true
	}
	return false
}

// Category classifies a notification by intent. Preference checks and
// quiet-hour handling treat transactional and alert traffic as exempt.
type Category string

const (
	CategoryTransactional Category = "transactional"
	CategoryMarketing     Category = "marketing"
	CategorySystem        Category = "system"
	CategoryAlert         Category = "alert"
)

// Valid reports whether the category is one of the supported values.
func (c Category) Valid() bool {
	switch c {
	case CategoryTransactional, CategoryMarketing, CategorySystem, CategoryAlert:
		return true
	}
	return false
}

// Priority represents the notification priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is one of the supported levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
