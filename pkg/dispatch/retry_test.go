package dispatch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/dispatch"
	"github.com/dmitrymomot/notifykit/pkg/message"
	"github.com/dmitrymomot/notifykit/pkg/provider"
)

func TestRetryScheduler_Delay(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router, err := dispatch.NewRouter(env.manager, env.registry)
	require.NoError(t, err)
	retries, err := dispatch.NewRetryScheduler(env.manager, router)
	require.NoError(t, err)
	t.Cleanup(retries.Stop)

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, 60 * time.Second},
		{1, 120 * time.Second},
		{2, 240 * time.Second},
		{3, 480 * time.Second},
		{4, 960 * time.Second},
		{5, 1920 * time.Second},
		{6, 3600 * time.Second},
		{10, 3600 * time.Second},
		{100, 3600 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, retries.Delay(tt.retryCount), "retryCount=%d", tt.retryCount)
	}
}

func TestRetryScheduler_FireResubmits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t)

	// First attempt fails, the retry succeeds.
	var calls atomic.Int32
	env.registerSender(t, provider.SenderFunc(func(ctx context.Context, address, subject, body string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("smtp timeout")
		}
		return "ext-2", nil
	}))

	router, err := dispatch.NewRouter(env.manager, env.registry)
	require.NoError(t, err)
	retries, err := dispatch.NewRetryScheduler(env.manager, router,
		dispatch.WithBackoff(10*time.Millisecond, 2, 100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(retries.Stop)

	msg := env.createMessage(t)
	err = router.Dispatch(ctx, msg)
	require.ErrorIs(t, err, dispatch.ErrDeliveryFailed)

	require.Eventually(t, func() bool {
		got, err := env.manager.Get(ctx, msg.ID)
		return err == nil && got.Status == message.StatusSent
	}, time.Second, 5*time.Millisecond)

	got, err := env.manager.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "ext-2", got.ProviderMessageID)
	assert.EqualValues(t, 2, calls.Load())
}

func TestRetryScheduler_RetryBound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t)
	env.registerSender(t, provider.SenderFunc(func(ctx context.Context, address, subject, body string) (string, error) {
		return "", errors.New("permanent outage")
	}))

	router, err := dispatch.NewRouter(env.manager, env.registry)
	require.NoError(t, err)
	retries, err := dispatch.NewRetryScheduler(env.manager, router,
		dispatch.WithBackoff(5*time.Millisecond, 2, 50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(retries.Stop)

	msg := env.createMessage(t)
	err = router.Dispatch(ctx, msg)
	require.ErrorIs(t, err, dispatch.ErrDeliveryFailed)

	// All retries burn down until failed is terminal.
	require.Eventually(t, func() bool {
		got, err := env.manager.Get(ctx, msg.ID)
		return err == nil && got.Terminal()
	}, 2*time.Second, 5*time.Millisecond)

	got, err := env.manager.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, message.StatusFailed, got.Status)
	assert.Equal(t, got.MaxRetries, got.RetryCount)

	// No further attempts once terminal.
	time.Sleep(100 * time.Millisecond)
	final, err := env.manager.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, got.RetryCount, final.RetryCount)
	assert.Equal(t, message.StatusFailed, final.Status)
}

func TestRetryScheduler_Cancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t)
	env.registerSender(t, provider.SenderFunc(func(ctx context.Context, address, subject, body string) (string, error) {
		return "", errors.New("smtp timeout")
	}))

	router, err := dispatch.NewRouter(env.manager, env.registry)
	require.NoError(t, err)
	retries, err := dispatch.NewRetryScheduler(env.manager, router,
		dispatch.WithBackoff(time.Hour, 2, 2*time.Hour))
	require.NoError(t, err)
	t.Cleanup(retries.Stop)

	msg := env.createMessage(t)
	err = router.Dispatch(ctx, msg)
	require.ErrorIs(t, err, dispatch.ErrDeliveryFailed)

	assert.True(t, retries.Cancel(msg.ID))
	assert.False(t, retries.Cancel(msg.ID))
}
