package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/events"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
)

type fakeStream struct {
	calls []*redis.XAddArgs
	err   error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.calls = append(f.calls, a)
	return redis.NewStringResult("1718000000000-0", f.err)
}

func TestStreamPublisher_HandleEvent(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	event, err := events.NewEvent(events.TypeCardReviewed, map[string]int{"rating": 3}, now)
	require.NoError(t, err)

	t.Run("adds entry with trimming", func(t *testing.T) {
		fake := &fakeStream{}
		p := NewStreamPublisher(fake, "scry:events", 1000, log)

		require.NoError(t, p.HandleEvent(context.Background(), event))
		require.Len(t, fake.calls, 1)

		args := fake.calls[0]
		assert.Equal(t, "scry:events", args.Stream)
		assert.Equal(t, "*", args.ID)
		assert.Equal(t, int64(1000), args.MaxLen)
		assert.True(t, args.Approx)

		values, ok := args.Values.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, event.ID.String(), values["id"])
		assert.Equal(t, events.TypeCardReviewed, values["type"])
		assert.Equal(t, now.UnixMilli(), values["created_at"])
		assert.JSONEq(t, `{"rating":3}`, values["payload"].(string))
	})

	t.Run("unbounded stream", func(t *testing.T) {
		fake := &fakeStream{}
		p := NewStreamPublisher(fake, "scry:events", 0, log)

		require.NoError(t, p.HandleEvent(context.Background(), event))
		assert.Zero(t, fake.calls[0].MaxLen)
		assert.False(t, fake.calls[0].Approx)
	})

	t.Run("broker error is wrapped", func(t *testing.T) {
		brokerErr := errors.New("connection refused")
		p := NewStreamPublisher(&fakeStream{err: brokerErr}, "scry:events", 0, log)

		err := p.HandleEvent(context.Background(), event)
		assert.ErrorIs(t, err, brokerErr)
		assert.Contains(t, err.Error(), "scry:events")
	})
}

func TestNewClientUnreachable(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1", Stream: "s"})
	assert.Error(t, err)
}
