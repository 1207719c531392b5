// Package ratelimit wraps ulule/limiter with the store selection rules the
// service uses: Redis-backed limits when a client is configured, in-process
// limits otherwise.
package ratelimit

import (
	"fmt"
	"net/http"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// New builds a limiter allowing perMinute requests per client IP. A nil
// Redis client selects the in-memory store.
func New(rdb *redis.Client, perMinute int) (*limiter.Limiter, error) {
	if perMinute <= 0 {
		return nil, fmt.Errorf("ratelimit: rate must be positive, got %d", perMinute)
	}
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-M", perMinute))
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate: %w", err)
	}
	var store limiter.Store
	if rdb != nil {
		store, err = limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix: "ratelimit",
		})
		if err != nil {
			return nil, fmt.Errorf("ratelimit: redis store: %w", err)
		}
	} else {
		store = limitermem.NewStore()
	}
	return limiter.New(store, rate, limiter.WithTrustForwardHeader(false)), nil
}

// Middleware adapts the limiter to chi's middleware chain.
func Middleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	mw := mhttp.NewMiddleware(l)
	return func(next http.Handler) http.Handler {
		return mw.Handler(next)
	}
}
