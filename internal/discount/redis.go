package discount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	redisCodePrefix = "discount:"
	redisUsesPrefix = "discount:uses:"
)

// incrementScript bumps the usage counter only while the code definition
// exists, so redemptions of deleted codes fail instead of resurrecting a
// counter.
const incrementScript = `if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("INCR", KEYS[2])`

// RedisStore persists discount codes as JSON blobs with the usage counter
// in a separate key, so concurrent redemptions across processes stay
// atomic.
type RedisStore struct {
	R *redis.Client
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{R: client}
}

func codeKey(code string) string {
	return redisCodePrefix + strings.ToUpper(strings.TrimSpace(code))
}

func usesKey(code string) string {
	return redisUsesPrefix + strings.ToUpper(strings.TrimSpace(code))
}

// Seed writes or replaces a code definition. The usage counter is reset to
// the code's UsedCount.
func (s *RedisStore) Seed(ctx context.Context, code Code) error {
	if s.R == nil {
		return errors.New("discount: redis client not configured")
	}
	blob, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("discount: encode code %q: %w", code.Code, err)
	}
	pipe := s.R.TxPipeline()
	pipe.Set(ctx, codeKey(code.Code), blob, 0)
	pipe.Set(ctx, usesKey(code.Code), int64(code.UsedCount), 0)
	_, err = pipe.Exec(ctx)
	return err
}

// Lookup implements Store.
func (s *RedisStore) Lookup(ctx context.Context, code string) (Code, error) {
	if s.R == nil {
		return Code{}, errors.New("discount: redis client not configured")
	}
	blob, err := s.R.Get(ctx, codeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Code{}, ErrNotFound
		}
		return Code{}, err
	}
	var found Code
	if err := json.Unmarshal(blob, &found); err != nil {
		return Code{}, fmt.Errorf("discount: decode code %q: %w", code, err)
	}
	uses, err := s.R.Get(ctx, usesKey(code)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Code{}, err
	}
	found.UsedCount = int32(uses)
	return found, nil
}

// IncrementUsage implements Store.
func (s *RedisStore) IncrementUsage(ctx context.Context, code string) error {
	if s.R == nil {
		return errors.New("discount: redis client not configured")
	}
	result, err := s.R.Eval(ctx, incrementScript, []string{codeKey(code), usesKey(code)}).Int64()
	if err != nil {
		return err
	}
	if result < 0 {
		return ErrNotFound
	}
	return nil
}
