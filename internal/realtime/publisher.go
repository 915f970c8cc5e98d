// Package realtime fans chat events out through Redis pub/sub and signs the
// private/presence channel handshake that websocket gateways require.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const EventNewMessage = "new-message"

// Publisher delivers an event on a named channel. Delivery is at-most-once.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// Envelope is the JSON document written to the Redis channel.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	SentAt  time.Time       `json:"sent_at"`
}

type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher parses a redis:// URL and verifies the connection.
func NewRedisPublisher(ctx context.Context, url, prefix string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisPublisher{client: client, prefix: prefix}, nil
}

func NewRedisPublisherFromClient(client *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(Envelope{Channel: channel, Event: event, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.client.Publish(ctx, p.prefix+channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// NopPublisher is used when no Redis URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(_ context.Context, channel, event string, _ interface{}) error {
	slog.Debug("realtime disabled, event not published", "channel", channel, "event", event)
	return nil
}
