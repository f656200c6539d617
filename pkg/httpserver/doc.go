// Package httpserver runs the notifykit HTTP surface: the provider callback
// endpoints and the health probes. It wraps net/http with graceful shutdown,
// configurable timeouts, and structured logging via slog.
//
// Construction goes through New or NewFromConfig with Option helpers such as
// WithAddr and WithLogger. Run blocks until the context is cancelled or an
// interrupt/TERM signal arrives, then shuts the listener down with
// http.Server.Shutdown under the configured deadline. HealthCheckHandler
// serves liveness and readiness probes from the same handler.
//
// # Usage
//
//	import (
//		"context"
//		"log/slog"
//
//		"github.com/go-chi/chi/v5"
//		"github.com/dmitrymomot/notifykit/pkg/httpserver"
//	)
//
//	func main() {
//		r := chi.NewRouter()
//		r.Get("/healthz", httpserver.HealthCheckHandler(context.Background(), slog.Default()))
//
//		srv := httpserver.New(
//			httpserver.WithAddr(":8080"),
//			httpserver.WithShutdownTimeout(10*time.Second),
//		)
//
//		if err := srv.Run(context.Background(), r); err != nil {
//			slog.Error("server stopped", "err", err)
//		}
//	}
//
// Run wraps listen failures with ErrStart and Shutdown wraps underlying
// shutdown errors with ErrShutdown; inspect them with errors.Is.
package httpserver
