package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Score  float64 `json:"score"`
	}

	err := store.Set(ctx, "k1", payload{Symbol: "AAPL", Score: 0.42}, time.Minute)
	require.NoError(t, err)

	var got payload
	hit, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 0.42, got.Score)
}

func TestMemoryStore_MissOnUnknownKey(t *testing.T) {
	store := NewMemoryStore()

	var got string
	hit, err := store.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStore_ExpiryOnRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "value", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	hit, err := store.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, store.Len(), "expired entry should be removed on read")
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	var got int
	hit, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "live", 1, time.Minute))
	require.NoError(t, store.Set(ctx, "dead1", 1, 5*time.Millisecond))
	require.NoError(t, store.Set(ctx, "dead2", 1, 5*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	evicted := store.Sweep()
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, store.Len())
}

func TestKey_Deterministic(t *testing.T) {
	a := Key("ts", map[string]string{"symbol": "AAPL", "start": "2024-01-01", "end": "2024-02-01"})
	b := Key("ts", map[string]string{"end": "2024-02-01", "start": "2024-01-01", "symbol": "AAPL"})
	assert.Equal(t, a, b, "parameter order must not change the key")
}

func TestKey_DiffersByParams(t *testing.T) {
	a := Key("ts", map[string]string{"symbol": "AAPL"})
	b := Key("ts", map[string]string{"symbol": "MSFT"})
	c := Key("news", map[string]string{"symbol": "AAPL"})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestResultKey(t *testing.T) {
	assert.Equal(t, "analysis:AAPL:5", ResultKey("AAPL", 5, ""))
	assert.Equal(t, "analysis:AAPL:5:2024-03-01", ResultKey("AAPL", 5, "2024-03-01"))
}
