package dialogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jarvis/backend/go/internal/models"

	"github.com/go-redis/redis/v8"
)

const stateKeyPrefix = "jarvis:dialogue:"

// RedisStateStore keeps dialogue state in Redis keys that expire on their own,
// so several server instances can share it.
type RedisStateStore struct {
	rdb *redis.Client
}

// NewRedisStateStore creates a RedisStateStore.
func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb}
}

func (s *RedisStateStore) Get(ctx context.Context, conversationID string) (models.DialogueState, error) {
	v, err := s.rdb.Get(ctx, stateKeyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return models.StateNone, nil
	}
	if err != nil {
		return models.StateNone, fmt.Errorf("load dialogue state: %w", err)
	}
	return models.DialogueState(v), nil
}

func (s *RedisStateStore) Set(ctx context.Context, conversationID string, state models.DialogueState, ttl time.Duration) error {
	if state == models.StateNone {
		return s.Clear(ctx, conversationID)
	}
	if err := s.rdb.Set(ctx, stateKeyPrefix+conversationID, string(state), ttl).Err(); err != nil {
		return fmt.Errorf("save dialogue state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.rdb.Del(ctx, stateKeyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("clear dialogue state: %w", err)
	}
	return nil
}
