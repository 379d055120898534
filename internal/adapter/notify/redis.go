package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Event is the payload published on the Redis channel.
type Event struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	SentAt  int64  `json:"sentAt"`
}

// RedisNotifier publishes events for other site components to consume.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, subject, message string) error {
	payload, err := json.Marshal(Event{Subject: subject, Message: message, SentAt: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", n.channel, err)
	}
	return nil
}
