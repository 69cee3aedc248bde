package memory

import (
	"context"
	"sync"

	"medreminder/internal/domain/repository"
)

type reminderStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewReminderStore creates a process-local ReminderStore. Contents are lost on exit.
func NewReminderStore() repository.ReminderStore {
	return &reminderStore{data: make(map[string][]byte)}
}

func (s *reminderStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *reminderStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
