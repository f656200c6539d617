package ingest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Handler serves POST /webhooks/delivery. It answers 200 {"status":"ok"}
// unconditionally, malformed bodies included: anything else makes
// providers retry the same callback in a loop.
func Handler(ingestor *Ingestor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer writeOK(w)

		var cb Callback
		if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
			ingestor.logger.LogAttrs(r.Context(), slog.LevelWarn, "malformed delivery callback",
				logger.Error(err),
			)
			return
		}

		if err := ingestor.HandleWebhook(r.Context(), cb); err != nil {
			ingestor.logger.LogAttrs(r.Context(), slog.LevelError, "failed to process delivery callback",
				logger.Provider(cb.Provider),
				logger.MessageID(cb.MessageID),
				logger.Error(err),
			)
		}
	})
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// RouterOptions configures the notification HTTP surface.
type RouterOptions struct {
	Ingestor *Ingestor
	// WSHandler is the websocket upgrade handler, typically wshub.Handler.
	WSHandler http.Handler
}

// Router wires the inbound notification endpoints: the provider delivery
// webhook and the websocket upgrade.
//
//	r := chi.NewRouter()
//	r.Mount("/", ingest.Router(ingest.RouterOptions{
//		Ingestor:  ingestor,
//		WSHandler: wshub.Handler(hub),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Ingestor != nil {
		r.Post("/webhooks/delivery", Handler(opts.Ingestor).ServeHTTP)
	}
	if opts.WSHandler != nil {
		r.Get("/ws", opts.WSHandler.ServeHTTP)
	}

	return r
}
