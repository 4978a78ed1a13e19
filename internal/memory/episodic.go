package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/baserah/baserah/internal/models"
	"github.com/go-redis/redis/v8"
)

// RedisHistoryStore implements HistoryStore as a capped Redis list
type RedisHistoryStore struct {
	client   *redis.Client
	key      string
	capacity int64
	ttl      time.Duration
}

// NewRedisHistoryStore connects to Redis and returns a list-backed history store
func NewRedisHistoryStore(config *Config) (*RedisHistoryStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisURL,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := config.RedisKey
	if key == "" {
		key = DefaultConfig().RedisKey
	}

	return &RedisHistoryStore{
		client:   client,
		key:      key,
		capacity: int64(config.Capacity),
		ttl:      config.Retention,
	}, nil
}

// Append pushes a turn and trims the list to capacity
func (s *RedisHistoryStore) Append(ctx context.Context, turn models.ConversationTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, data)
	if s.capacity > 0 {
		pipe.LTrim(ctx, s.key, -s.capacity, -1)
	}

	// Set TTL if configured
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store turn: %w", err)
	}
	return nil
}

// Recent returns up to n of the latest turns, oldest first
func (s *RedisHistoryStore) Recent(ctx context.Context, n int) ([]models.ConversationTurn, error) {
	start := int64(0)
	if n > 0 {
		start = -int64(n)
	}

	raw, err := s.client.LRange(ctx, s.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Count returns the list length
func (s *RedisHistoryStore) Count(ctx context.Context) (int64, error) {
	return s.client.LLen(ctx, s.key).Result()
}

// Clear deletes the history list
func (s *RedisHistoryStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close closes the Redis connection
func (s *RedisHistoryStore) Close() error {
	return s.client.Close()
}
