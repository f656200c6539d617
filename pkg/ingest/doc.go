// Package ingest maps provider delivery callbacks back onto message
// state.
//
// Providers report delivery outcomes in their own vocabularies; Canonical
// folds them into a small status set. A delivered report moves the
// message to delivered, a failure or bounce moves it to failed, and every
// report lands in the message's append-only delivery log. Unknown message
// ids, duplicate callbacks and unmapped statuses are absorbed and logged.
//
// The HTTP handler answers 200 unconditionally so a misbehaving payload
// never triggers a provider retry storm.
package ingest
