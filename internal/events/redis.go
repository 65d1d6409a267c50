package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(addr string) *RedisPublisher {
	return &RedisPublisher{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: StockChannel,
	}
}

func (p *RedisPublisher) StockChanged(ctx context.Context, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}

	evt := StockChangedEvent{
		EventID:    uuid.NewString(),
		ProductIDs: productIDs,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal stock-changed event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish stock-changed event: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
