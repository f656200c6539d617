package ingest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/ingest"
	"github.com/dmitrymomot/notifykit/pkg/message"
)

func postCallback(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid callback", func(t *testing.T) {
		t.Parallel()

		manager, templateID := newTestManager(t)
		ingestor, err := ingest.NewIngestor(manager)
		require.NoError(t, err)

		msg := sentMessage(t, manager, templateID)
		rec := postCallback(t, ingest.Handler(ingestor),
			`{"provider":"postmark","messageId":"`+msg.ID+`","status":"delivered"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

		got, err := manager.Get(context.Background(), msg.ID)
		require.NoError(t, err)
		assert.Equal(t, message.StatusDelivered, got.Status)
	})

	t.Run("malformed body still returns 200", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(t)
		ingestor, err := ingest.NewIngestor(manager)
		require.NoError(t, err)

		rec := postCallback(t, ingest.Handler(ingestor), `{not json`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("unknown message still returns 200", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(t)
		ingestor, err := ingest.NewIngestor(manager)
		require.NoError(t, err)

		rec := postCallback(t, ingest.Handler(ingestor),
			`{"provider":"postmark","messageId":"ghost","status":"delivered"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	manager, templateID := newTestManager(t)
	ingestor, err := ingest.NewIngestor(manager)
	require.NoError(t, err)

	router := ingest.Router(ingest.RouterOptions{
		Ingestor: ingestor,
		WSHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusSwitchingProtocols)
		}),
	})

	msg := sentMessage(t, manager, templateID)
	rec := postCallback(t, router,
		`{"provider":"postmark","messageId":"`+msg.ID+`","status":"delivered"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	wsRec := httptest.NewRecorder()
	router.ServeHTTP(wsRec, req)
	assert.Equal(t, http.StatusSwitchingProtocols, wsRec.Code)
}
