package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewReminderStore(client, "medreminder:")
	ctx := context.Background()

	_, found, err := store.Get(ctx, "medicationReminders")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "medicationReminders", []byte(`[{"id":"a"}]`)))
	value, found, err := store.Get(ctx, "medicationReminders")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"a"}]`, string(value))

	raw, err := mr.Get("medreminder:medicationReminders")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, raw)
	assert.Equal(t, 0, int(mr.TTL("medreminder:medicationReminders")))
}

func TestReminderStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := NewReminderStore(client, "")
	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "k", []byte("v")))
}
