package dispatch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/message"
	"github.com/dmitrymomot/notifykit/pkg/preference"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

func bulkRecipients(n int) []notifykit.Recipient {
	out := make([]notifykit.Recipient, n)
	for i := range out {
		out[i] = notifykit.Recipient{
			UserID: fmt.Sprintf("user-%d", i),
			Email:  fmt.Sprintf("user-%d@example.com", i),
		}
	}
	return out
}

func newBulkEnv(t *testing.T) (*message.Manager, *preference.MemoryBlacklist, string) {
	t.Helper()
	ctx := context.Background()

	templates, err := template.NewStore(template.NewMemoryStorage())
	require.NoError(t, err)
	tpl, err := templates.Create(ctx, template.CreateParams{
		Name:     "maintenance_notice",
		Type:     notifykit.ChannelEmail,
		Category: notifykit.CategorySystem,
		Subject:  "Scheduled maintenance",
		Body:     "We will be down at {{when}}",
	})
	require.NoError(t, err)

	blacklist := preference.NewMemoryBlacklist()
	gate, err := preference.NewGate(blacklist)
	require.NoError(t, err)

	manager, err := message.NewManager(message.NewMemoryStorage(), templates, gate)
	require.NoError(t, err)

	return manager, blacklist, tpl.ID
}

func TestBulkDispatcher_SendBulk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("every recipient settles", func(t *testing.T) {
		t.Parallel()

		manager, _, templateID := newBulkEnv(t)
		bulk, err := dispatch.NewBulkDispatcher(manager,
			dispatch.WithBatchSize(100),
			dispatch.WithBatchPause(time.Millisecond))
		require.NoError(t, err)

		result, err := bulk.SendBulk(ctx, bulkRecipients(250), templateID,
			map[string]string{"when": "02:00 UTC"}, message.CreateOptions{})
		require.NoError(t, err)

		assert.Equal(t, 250, result.SuccessCount+result.FailureCount)
		assert.Equal(t, 250, result.SuccessCount)
		assert.Len(t, result.MessageIDs, 250)
	})

	t.Run("bad recipients are counted not propagated", func(t *testing.T) {
		t.Parallel()

		manager, blacklist, templateID := newBulkEnv(t)
		require.NoError(t, blacklist.Add(ctx, "user-3@example.com"))
		require.NoError(t, blacklist.Add(ctx, "user-7@example.com"))

		recipients := bulkRecipients(10)
		recipients[5].Email = "" // no address for the channel

		bulk, err := dispatch.NewBulkDispatcher(manager, dispatch.WithBatchPause(time.Millisecond))
		require.NoError(t, err)

		result, err := bulk.SendBulk(ctx, recipients, templateID, nil, message.CreateOptions{})
		require.NoError(t, err)

		assert.Equal(t, 7, result.SuccessCount)
		assert.Equal(t, 3, result.FailureCount)
		assert.Len(t, result.MessageIDs, 7)
	})

	t.Run("pauses between batches", func(t *testing.T) {
		t.Parallel()

		manager, _, templateID := newBulkEnv(t)
		bulk, err := dispatch.NewBulkDispatcher(manager,
			dispatch.WithBatchSize(10),
			dispatch.WithBatchPause(50*time.Millisecond))
		require.NoError(t, err)

		start := time.Now()
		result, err := bulk.SendBulk(ctx, bulkRecipients(30), templateID, nil, message.CreateOptions{})
		require.NoError(t, err)

		// 3 batches means 2 inter-batch pauses.
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
		assert.Equal(t, 30, result.SuccessCount)
	})

	t.Run("cancelled context stops between batches", func(t *testing.T) {
		t.Parallel()

		manager, _, templateID := newBulkEnv(t)
		bulk, err := dispatch.NewBulkDispatcher(manager,
			dispatch.WithBatchSize(10),
			dispatch.WithBatchPause(time.Hour))
		require.NoError(t, err)

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := bulk.SendBulk(cancelCtx, bulkRecipients(30), templateID, nil, message.CreateOptions{})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 30, result.SuccessCount+result.FailureCount)
		assert.Equal(t, 10, result.SuccessCount)
	})
}
