package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phrazzld/scry-decks/internal/config"
	"github.com/phrazzld/scry-decks/internal/events"
)

// streamAdder is the subset of *redis.Client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// NewClient connects to the Redis server described by cfg and verifies the
// connection with PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// StreamPublisher appends every event it handles to a Redis stream with
// XADD. Each entry carries the fields id, type, created_at and payload.
type StreamPublisher struct {
	client streamAdder
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewStreamPublisher creates a publisher writing to stream. When maxLen is
// positive the stream is trimmed approximately to that length.
func NewStreamPublisher(client streamAdder, stream string, maxLen int64, logger *slog.Logger) *StreamPublisher {
	if client == nil {
		// ALLOW-PANIC: a nil client is a wiring bug
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger.With(slog.String("component", "redis_stream_publisher")),
	}
}

var _ events.EventHandler = (*StreamPublisher)(nil)

// HandleEvent implements events.EventHandler.
func (p *StreamPublisher) HandleEvent(ctx context.Context, event *events.Event) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		ID:     "*",
		Values: map[string]interface{}{
			"id":         event.ID.String(),
			"type":       event.Type,
			"created_at": event.CreatedAt.UnixMilli(),
			"payload":    string(event.Payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	entryID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event %s to stream %s: %w", event.ID, p.stream, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("entry_id", entryID))
	return nil
}
