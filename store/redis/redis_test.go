package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stockledger/store/redis"
)

// Requires a reachable server; set REDIS_ADDR to run.
func newTestSlot(t *testing.T) *redis.Slot {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	slot, err := redis.New(ctx, redis.Config{Addr: addr, Key: "stockledger_test_" + uuid.NewString()})
	require.NoError(t, err)
	t.Cleanup(func() {
		slot.Reset(context.Background())
		slot.Close()
	})
	return slot
}

func TestSlot_RoundTrip(t *testing.T) {
	slot := newTestSlot(t)
	ctx := context.Background()

	_, ok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, slot.Write(ctx, []byte(`{"items":{}}`)))
	data, ok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"items":{}}`, string(data))
}
