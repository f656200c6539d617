// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package aims to standardise structured logging across services by
// exposing a single factory – New – that creates a *slog.Logger configured by
// a set of Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from a
//     context value (for example a request id) every time Handle is invoked.
//
// # Architecture
//
// New picks the concrete slog.Handler – slog.NewTextHandler or
// slog.NewJSONHandler – based on the configured Format, then wraps it in a
// decorating handler that runs the registered ContextExtractor callbacks
// before delegating each record to the underlying handler.
//
// Helper constructors such as Error, MessageID, Provider, etc. live in
// attr.go and return the slog.Attr instances the notification pipeline logs
// with, keeping attribute naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/dmitrymomot/notifykit/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithDevelopment("notifyd"),
//	        logger.WithContextValue("message_id", ctxKeyMessageID),
//	    )
//	    logger.SetAsDefault(log)
//
//	    ctx := context.WithValue(context.Background(), ctxKeyMessageID, "msg-123")
//	    log.InfoContext(ctx, "message dispatched",
//	        logger.Provider("postmark"),
//	        logger.Duration(time.Since(start)),
//	    )
//	}
//
// # Configuration
//
// The behaviour of New can be tuned with a variety of Option helpers:
//
//   - WithDevelopment / WithStaging / WithProduction – sensible defaults per environment.
//   - WithFormat / WithTextFormatter / WithJSONFormatter – override output format.
//   - WithLevel – set a custom slog.Level.
//   - WithAttr – attach static attributes.
//   - WithContextExtractors / WithContextValue – inject attributes from context.
//
// # Error Handling
//
// The Error helper produces an attribute only when the supplied error value
// is non-nil, allowing calls like:
//
//	log.Info("operation succeeded", logger.Error(err))
//
// without an additional nil check.
package logger
