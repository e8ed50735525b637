package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// PublishUserRegistered adds a user_registered event to the users stream.
	// Returns the message ID assigned by Redis.
	PublishUserRegistered(ctx context.Context, userID uuid.UUID, username string, emailID uuid.UUID) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewPublisher creates a new Publisher backed by Redis Streams. The stream is
// approximately capped at maxLen entries; zero disables trimming.
func NewPublisher(client *redis.Client, maxLen int64) *RedisPublisher {
	return &RedisPublisher{client: client, maxLen: maxLen}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event UserEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	slog.Debug("event published",
		"stream", stream,
		"type", event.Type,
		"message_id", messageID,
		"user_id", event.UserID,
		"duration", time.Since(startTime),
	)
	return messageID, nil
}

func (p *RedisPublisher) PublishUserRegistered(ctx context.Context, userID uuid.UUID, username string, emailID uuid.UUID) (string, error) {
	return p.Publish(ctx, StreamUsers, NewUserRegisteredEvent(userID, username, emailID))
}

// NopPublisher drops every event. It is used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, uuid.UUID, string, uuid.UUID) (string, error) {
	return "", nil
}
