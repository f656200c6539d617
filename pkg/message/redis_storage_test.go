package message

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/redis"
)

func newTestRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(redis.NewStore(client)), mr
}

func testMessage(id string) Message {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Message{
		ID:         id,
		UserID:     "user-1",
		Channel:    notifykit.ChannelEmail,
		Category:   notifykit.CategoryTransactional,
		Priority:   notifykit.PriorityMedium,
		Status:     StatusPending,
		Recipient:  notifykit.Recipient{UserID: "user-1", Email: "jordan@example.com"},
		Subject:    "Loan approved",
		Body:       "Approved for $5000",
		MaxRetries: 3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestRedisStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestRedisStorage(t)

	msg := testMessage("msg-1")
	require.NoError(t, storage.Create(ctx, msg))

	got, err := storage.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.Status, got.Status)
	assert.Equal(t, msg.Recipient.Email, got.Recipient.Email)

	ttl := mr.TTL("message:msg-1")
	assert.Equal(t, DefaultTTL, ttl)
}

func TestRedisStorage_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestRedisStorage(t)

	_, err := storage.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrMessageNotFound)
}

func TestRedisStorage_Save(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestRedisStorage(t)

	require.ErrorIs(t, storage.Save(ctx, testMessage("msg-1")), ErrMessageNotFound)

	msg := testMessage("msg-1")
	require.NoError(t, storage.Create(ctx, msg))

	msg.Status = StatusProcessing
	require.NoError(t, storage.Save(ctx, msg))

	got, err := storage.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)
}

func TestRedisStorage_Attempts(t *testing.T) {
	ctx := context.Background()
	storage, mr := newTestRedisStorage(t)

	attempts, err := storage.Attempts(ctx, "msg-1")
	require.NoError(t, err)
	assert.Empty(t, attempts)

	first := Attempt{Timestamp: time.Now().UTC().Truncate(time.Second), Provider: "postmark", RawStatus: "queued"}
	second := Attempt{Timestamp: time.Now().UTC().Truncate(time.Second), Provider: "postmark", RawStatus: "delivered", Response: "250 OK"}
	require.NoError(t, storage.AppendAttempt(ctx, "msg-1", first))
	require.NoError(t, storage.AppendAttempt(ctx, "msg-1", second))

	attempts, err = storage.Attempts(ctx, "msg-1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "queued", attempts[0].RawStatus)
	assert.Equal(t, "delivered", attempts[1].RawStatus)
	assert.Equal(t, "250 OK", attempts[1].Response)

	ttl := mr.TTL("delivery_status:msg-1")
	assert.Equal(t, DefaultAttemptTTL, ttl)
}
