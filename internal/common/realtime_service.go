package common

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RealtimePublisher is the port the workflow emits events through. The
// websocket (or any other) transport subscribes behind it; the services
// never see the transport.
type RealtimePublisher interface {
	Emit(ctx context.Context, event string, relatorID string, payload any) error
}

// RedisRealtimeService publishes realtime events over Redis pub/sub,
// one channel per relator.
type RedisRealtimeService struct {
	client *redis.Client
}

var _ RealtimePublisher = (*RedisRealtimeService)(nil)

func NewRedisRealtimeService(client *redis.Client) *RedisRealtimeService {
	return &RedisRealtimeService{client: client}
}

// Emit publishes the event scoped to the owning relator.
func (s *RedisRealtimeService) Emit(ctx context.Context, event string, relatorID string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	channel := "reservas:relator:" + relatorID
	if err := s.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}
	return nil
}
