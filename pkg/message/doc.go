// Package message owns the notification message lifecycle: the record
// itself, the status state machine, and the Manager through which every
// mutation flows.
//
// A message moves pending → processing → sent → delivered on the happy
// path. A processing message may fail; a failed message is re-enqueued to
// pending by the retry machinery until its retry budget is exhausted, at
// which point failed is terminal. A pending message can be cancelled.
// Illegal moves return *InvalidTransitionError.
//
// Manager.Create checks the recipient against the preference gate before
// anything is persisted, renders the template, stores the message as
// pending and hands it to the injected Dispatcher unless it is scheduled
// for the future. Manager.Transition is the single mutation entry point
// and serializes per message id, so concurrent status changes on one
// message cannot race.
//
// Storage has in-memory and Redis implementations; the Redis one keeps
// messages for 30 days and the append-only delivery attempt log for one
// day.
package message
