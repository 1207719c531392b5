package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "inv:"

// reserveScript atomically checks and decrements a capacity counter.
// Missing keys and the -1 sentinel are both uncapped.
const reserveScript = `local v = redis.call("GET", KEYS[1])
if not v then
  return 1
end
local n = tonumber(v)
if n == -1 then
  return 1
end
if n >= tonumber(ARGV[1]) then
  redis.call("DECRBY", KEYS[1], ARGV[1])
  return 1
end
return 0`

const releaseScript = `local v = redis.call("GET", KEYS[1])
if not v then
  return 0
end
if tonumber(v) == -1 then
  return 0
end
return redis.call("INCRBY", KEYS[1], ARGV[1])`

// RedisStore is a Store backed by per-key Redis counters so concurrent
// bookings across processes cannot oversell.
type RedisStore struct {
	R      *redis.Client
	Prefix string
}

// NewRedisStore wraps a Redis client with the default key prefix.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{R: client, Prefix: redisKeyPrefix}
}

func (s *RedisStore) redisKey(key Key) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return prefix + key.String()
}

// Seed sets the remaining capacity for a key.
func (s *RedisStore) Seed(ctx context.Context, key Key, remaining int64) error {
	if s.R == nil {
		return errors.New("inventory: redis client not configured")
	}
	return s.R.Set(ctx, s.redisKey(key), remaining, 0).Err()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (int64, error) {
	if s.R == nil {
		return 0, errors.New("inventory: redis client not configured")
	}
	value, err := s.R.Get(ctx, s.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Unlimited, nil
		}
		return 0, err
	}
	remaining, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("inventory: malformed counter for %s: %w", key, err)
	}
	return remaining, nil
}

// Commit implements Store via a Lua compare-and-decrement.
func (s *RedisStore) Commit(ctx context.Context, key Key, delta int64) (bool, error) {
	if s.R == nil {
		return false, errors.New("inventory: redis client not configured")
	}
	result, err := s.R.Eval(ctx, reserveScript, []string{s.redisKey(key)}, delta).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

// Rollback implements Store.
func (s *RedisStore) Rollback(ctx context.Context, key Key, delta int64) error {
	if s.R == nil {
		return errors.New("inventory: redis client not configured")
	}
	return s.R.Eval(ctx, releaseScript, []string{s.redisKey(key)}, delta).Err()
}
