package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medreminder/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reminderStore struct {
	db *gorm.DB
}

// NewReminderStore creates a ReminderStore backed by the kv_store table.
func NewReminderStore(db *gorm.DB) repository.ReminderStore {
	return &reminderStore{db: db}
}

// Get returns the value stored under key.
func (s *reminderStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry KVEntry
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set upserts value under key.
func (s *reminderStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}
