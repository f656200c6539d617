// Package preference implements the recipient-side checks that run before a
// notification message is created: a global address blacklist, the
// recipient's unsubscribe flag, per-channel enablement, per-category opt-outs
// and quiet hours.
//
// The gate follows an opt-out model: any case the recipient has not
// explicitly configured resolves to allow. Deployments that need
// opt-in-by-default for marketing traffic should pre-populate recipient
// preferences accordingly before calling the gate.
//
// # Usage
//
//	gate, err := preference.NewGate(preference.NewRedisBlacklist(store))
//	if err != nil {
//	    // handle error
//	}
//
//	decision, err := gate.CanSend(ctx, recipient, notifykit.ChannelEmail, notifykit.CategoryMarketing)
//	if err != nil {
//	    // blacklist storage failure
//	}
//	if !decision.Allowed {
//	    // decision.Reason explains the denial
//	}
package preference
