package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/message"
)

const (
	// DefaultBatchSize is how many recipients one bulk batch processes
	// concurrently.
	DefaultBatchSize = 100
	// DefaultBatchPause is the minimum breather between batches so a burst
	// does not trip a rate-limited provider.
	DefaultBatchPause = 100 * time.Millisecond
)

// BulkResult summarizes a bulk send. SuccessCount+FailureCount equals the
// number of recipients; MessageIDs lists the created messages.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	MessageIDs   []string `json:"message_ids"`
}

// BulkDispatcher fans one template out to a large recipient list in
// batches. Recipients within a batch are processed concurrently and every
// outcome is awaited; one bad recipient never aborts the batch.
type BulkDispatcher struct {
	manager   *message.Manager
	logger    *slog.Logger
	batchSize int
	pause     time.Duration
}

// BulkOption configures a BulkDispatcher.
type BulkOption func(*BulkDispatcher)

// WithBatchSize overrides the per-batch recipient count.
func WithBatchSize(n int) BulkOption {
	return func(b *BulkDispatcher) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithBatchPause overrides the inter-batch pause.
func WithBatchPause(d time.Duration) BulkOption {
	return func(b *BulkDispatcher) {
		if d > 0 {
			b.pause = d
		}
	}
}

// WithBulkLogger sets the logger for the BulkDispatcher.
func WithBulkLogger(l *slog.Logger) BulkOption {
	return func(b *BulkDispatcher) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBulkDispatcher creates a bulk dispatcher over the message manager.
func NewBulkDispatcher(manager *message.Manager, opts ...BulkOption) (*BulkDispatcher, error) {
	if manager == nil {
		return nil, ErrManagerNil
	}
	b := &BulkDispatcher{
		manager:   manager,
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
		pause:     DefaultBatchPause,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// SendBulk creates and dispatches one message per recipient, batch by
// batch. Per-recipient failures (denied preferences, missing addresses)
// are counted, logged and otherwise swallowed. Context cancellation stops
// between batches; recipients not yet reached count as failures.
func (b *BulkDispatcher) SendBulk(ctx context.Context, recipients []notifykit.Recipient, templateID string, vars map[string]string, opts message.CreateOptions) (BulkResult, error) {
	var result BulkResult
	result.MessageIDs = make([]string, 0, len(recipients))

	var mu sync.Mutex

	for start := 0; start < len(recipients); start += b.batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				result.FailureCount += len(recipients) - start
				return result, ctx.Err()
			case <-time.After(b.pause):
			}
		}

		end := min(start+b.batchSize, len(recipients))
		batch := recipients[start:end]

		var wg sync.WaitGroup
		for _, recipient := range batch {
			recipient := recipient
			wg.Add(1)
			go func() {
				defer wg.Done()

				msg, err := b.manager.Create(ctx, recipient, templateID, vars, opts)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.FailureCount++
					b.logger.LogAttrs(ctx, slog.LevelWarn, "bulk recipient skipped",
						logger.UserID(recipient.UserID),
						logger.Error(err),
					)
					return
				}
				result.SuccessCount++
				result.MessageIDs = append(result.MessageIDs, msg.ID)
			}()
		}
		wg.Wait()
	}

	b.logger.LogAttrs(ctx, slog.LevelInfo, "bulk send finished",
		slog.String("template_id", templateID),
		slog.Int("recipients", len(recipients)),
		slog.Int("succeeded", result.SuccessCount),
		slog.Int("failed", result.FailureCount),
	)
	return result, nil
}
