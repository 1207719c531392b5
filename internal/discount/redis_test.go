package discount

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-tour/internal/money"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	maxUses := int32(5)
	seeded := Code{
		Code:     "SAVE10",
		Kind:     KindPercentage,
		Percent:  money.MustRate("0.10"),
		IsActive: true,
		MaxUses:  &maxUses,
	}
	if err := store.Seed(ctx, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	found, err := store.Lookup(ctx, "save10")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.Percent != money.MustRate("0.10") {
		t.Errorf("Percent = %v, want 0.10", found.Percent)
	}
	if found.MaxUses == nil || *found.MaxUses != 5 {
		t.Errorf("MaxUses = %v, want 5", found.MaxUses)
	}
	if found.UsedCount != 0 {
		t.Errorf("UsedCount = %d, want 0", found.UsedCount)
	}
}

func TestRedisStoreIncrementUsage(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	if err := store.Seed(ctx, Code{Code: "FLAT", Kind: KindFixedAmount, AmountCents: 500, IsActive: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncrementUsage(ctx, "flat"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	found, err := store.Lookup(ctx, "FLAT")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.UsedCount != 3 {
		t.Errorf("UsedCount = %d, want 3", found.UsedCount)
	}
}

func TestRedisStoreUnknownCode(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	if _, err := store.Lookup(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup err = %v, want ErrNotFound", err)
	}
	if err := store.IncrementUsage(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("increment err = %v, want ErrNotFound", err)
	}
}
