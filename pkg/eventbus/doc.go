// Package eventbus connects domain events to real-time notifications.
//
// Bus.Publish appends the event to a bounded ring buffer (1000 by
// default, inspectable via Recent), runs every subscriber registered for
// the event type, and maps the event to a best-effort websocket
// notification. Subscriber dispatch is settle-all: each handler runs
// under its own recover, so one panicking handler never blocks the rest
// or the publisher.
//
// The event-to-notification mapping is pure and keyed by event type
// family: loan.*, payment.* and user.* events target the user from their
// payload plus the family channel; system.* events go to the system
// channel and the admin role.
package eventbus
