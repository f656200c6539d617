// Package notifykit is a notification dispatch and real-time delivery toolkit.
//
// The root package defines the shared domain vocabulary - delivery channels,
// message categories, priorities and the recipient model - used by the
// subpackages under pkg/:
//
//   - pkg/template: message template storage and rendering
//   - pkg/preference: blacklist and opt-in/opt-out checks
//   - pkg/provider: provider registry, health and rate limits, channel senders
//   - pkg/message: message lifecycle state machine and persistence
//   - pkg/dispatch: delivery routing, retries with backoff, bulk sends
//   - pkg/wshub: WebSocket connection registry and fan-out
//   - pkg/eventbus: in-process domain event bus with real-time bridging
//   - pkg/ingest: provider delivery webhook ingestion
//
// Every component is explicitly constructed and wired through dependency
// injection; the toolkit has no package-level singletons. See the package
// documentation of each subpackage for usage examples.
package notifykit
