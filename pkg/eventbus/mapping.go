package eventbus

import (
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/wshub"
)

// channelByFamily maps an event type family to the websocket channel its
// notifications publish on.
var channelByFamily = map[string]string{
	"loan":    "loans",
	"payment": "payments",
	"user":    "users",
	"system":  "system",
}

// MapNotification turns a domain event into its best-effort websocket
// notification. User-scoped events target the user from the payload plus
// the family channel; system events go to the system channel and the
// admin role. Events from an unknown family map to nothing.
func MapNotification(evt Event) (wshub.Notification, bool) {
	family, _, ok := strings.Cut(evt.Type, ".")
	if !ok {
		return wshub.Notification{}, false
	}
	channel, ok := channelByFamily[family]
	if !ok {
		return wshub.Notification{}, false
	}

	n := wshub.Notification{
		Channel: channel,
		Event:   evt.Type,
		Payload: evt.Payload,
	}
	if family == "system" {
		n.Roles = []string{"admin"}
		return n, true
	}

	n.UserID = payloadUserID(evt.Payload)
	return n, true
}

// payloadUserID pulls the target user out of a typed payload, passed
// either by value or by pointer.
func payloadUserID(payload any) string {
	switch p := payload.(type) {
	case LoanPayload:
		return p.UserID
	case *LoanPayload:
		if p != nil {
			return p.UserID
		}
	case PaymentPayload:
		return p.UserID
	case *PaymentPayload:
		if p != nil {
			return p.UserID
		}
	case UserPayload:
		return p.UserID
	case *UserPayload:
		if p != nil {
			return p.UserID
		}
	}
	return ""
}
