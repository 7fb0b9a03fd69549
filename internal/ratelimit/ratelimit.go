// Package ratelimit guards the audit endpoints against runaway callers. A
// single audit fans out into several upstream fetches, so the limit here is
// what actually protects the upstream data API.
package ratelimit

import (
	"fmt"
	"net/http"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// New builds a client-IP limiter from a formatted rate such as "120-M".
// With a Redis client the window is shared across replicas; without one it
// falls back to an in-process store.
func New(rdb *redis.Client, rate, prefix string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", rate, err)
	}

	var store limiter.Store
	if rdb != nil {
		store, err = redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("ratelimit: redis store: %w", err)
		}
	} else {
		store = memorystore.NewStore()
	}
	return limiter.New(store, parsed), nil
}

// Middleware wraps handlers with the limiter, answering 429 with the usual
// X-RateLimit headers once the window is spent.
func Middleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	mw := stdlib.NewMiddleware(l)
	return mw.Handler
}
