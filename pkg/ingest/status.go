package ingest

import "strings"

// CanonicalStatus is the normalized delivery outcome a provider callback
// maps onto.
type CanonicalStatus string

const (
	StatusDelivered  CanonicalStatus = "delivered"
	StatusBounced    CanonicalStatus = "bounced"
	StatusComplained CanonicalStatus = "complained"
	StatusFailed     CanonicalStatus = "failed"
	StatusSent       CanonicalStatus = "sent"
	StatusProcessing CanonicalStatus = "processing"
	// StatusPending is the permissive default for raw statuses no provider
	// family matches.
	StatusPending CanonicalStatus = "pending"
)

// statusByRaw folds the raw status vocabularies of the supported providers
// into the canonical set.
var statusByRaw = map[string]CanonicalStatus{
	"delivered": StatusDelivered,
	"delivery":  StatusDelivered,
	"open":      StatusDelivered,
	"opened":    StatusDelivered,

	"bounce":      StatusBounced,
	"bounced":     StatusBounced,
	"hard_bounce": StatusBounced,
	"soft_bounce": StatusBounced,

	"complaint":  StatusComplained,
	"complained": StatusComplained,
	"spam":       StatusComplained,

	"failed":   StatusFailed,
	"failure":  StatusFailed,
	"error":    StatusFailed,
	"rejected": StatusFailed,
	"dropped":  StatusFailed,

	"sent":     StatusSent,
	"send":     StatusSent,
	"accepted": StatusSent,

	"processing": StatusProcessing,
	"queued":     StatusProcessing,
	"deferred":   StatusProcessing,
}

// Canonical maps a raw provider status onto the canonical set. Unmapped
// values fall back to pending; the second return reports whether the raw
// status was recognized.
func Canonical(raw string) (CanonicalStatus, bool) {
	status, ok := statusByRaw[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return StatusPending, false
	}
	return status, true
}
