// Package eventbus delivers outbox messages to Redis streams.
package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"depot/internal/infrastructure/storage/postgres"
)

// DefaultStream is the stream every domain event is appended to.
const DefaultStream = "depot:events"

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("eventbus: ping: %w", err)
	}
	return client, nil
}

var _ postgres.OutboxHandler = (*StreamPublisher)(nil)

// StreamPublisher appends outbox messages to a Redis stream. The stream is
// trimmed approximately to MaxLen entries; zero keeps everything.
type StreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStreamPublisher creates a publisher. An empty stream name means DefaultStream.
func NewStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Handle implements postgres.OutboxHandler.
func (p *StreamPublisher) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":             msg.ID.String(),
			"aggregate_type": msg.AggregateType,
			"aggregate_id":   msg.AggregateID.String(),
			"event_type":     msg.EventType,
			"payload":        string(msg.Payload),
			"created_at":     msg.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("eventbus: xadd %s: %w", p.stream, err)
	}
	return nil
}
