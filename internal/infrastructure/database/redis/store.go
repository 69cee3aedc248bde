package redis

import (
	"context"
	"errors"
	"fmt"

	"medreminder/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

type reminderStore struct {
	client *redis.Client
	prefix string
}

// NewReminderStore creates a ReminderStore backed by Redis string values.
// Keys are namespaced with prefix.
func NewReminderStore(client *redis.Client, prefix string) repository.ReminderStore {
	return &reminderStore{client: client, prefix: prefix}
}

func (s *reminderStore) key(key string) string {
	return s.prefix + key
}

// Get returns the value stored under key.
func (s *reminderStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key without expiration.
func (s *reminderStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}
