package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreCommitAndRollback(t *testing.T) {
	store := newRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()
	key := TicketKey("trip-1", "boat-1", "adult")

	require.NoError(t, store.Seed(ctx, key, 3))

	require.NoError(t, ledger.Reserve(ctx, key, 2))
	remaining, err := ledger.Remaining(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, 1, remaining)

	err = ledger.Reserve(ctx, key, 2)
	require.True(t, errors.Is(err, ErrCapacityExceeded), "got %v", err)
	remaining, err = ledger.Remaining(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, 1, remaining, "failed commit must not decrement")

	require.NoError(t, ledger.Release(ctx, key, 2))
	remaining, err = ledger.Remaining(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, 3, remaining)
}

func TestRedisStoreUnlimited(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()
	key := MerchandiseKey("hoodie", "M")

	// Missing key behaves as uncapped.
	remaining, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, Unlimited, remaining)

	ok, err := store.Commit(ctx, key, 100)
	require.NoError(t, err)
	require.True(t, ok)

	// Explicit sentinel behaves the same and is never decremented.
	require.NoError(t, store.Seed(ctx, key, Unlimited))
	ok, err = store.Commit(ctx, key, 100)
	require.NoError(t, err)
	require.True(t, ok)
	remaining, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, Unlimited, remaining)
	require.NoError(t, store.Rollback(ctx, key, 100))
	remaining, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, Unlimited, remaining)
}

func TestRedisStoreContendedLastUnit(t *testing.T) {
	store := newRedisStore(t)
	ledger := NewLedger(store)
	ctx := context.Background()
	key := TicketKey("trip-5", "boat-1", "adult")
	require.NoError(t, store.Seed(ctx, key, 1))

	first := ledger.Reserve(ctx, key, 1)
	second := ledger.Reserve(ctx, key, 1)
	require.NoError(t, first)
	require.True(t, errors.Is(second, ErrCapacityExceeded), "got %v", second)
}
