package repository

import (
	"context"
)

// ReminderStore is an opaque key-value persistence collaborator.
// The reminder collection is kept serialized under a single key.
type ReminderStore interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}
