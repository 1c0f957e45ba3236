package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the shared client behind the redis rate-limiter backend
// and the health check.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis. Timeouts are short: the throttle check sits
// on the submission path and must stay fast, so a struggling redis should
// error out rather than stall submitters.
func NewRedis(addr string) *Redis {
	return NewRedisWithTimeout(addr, time.Second)
}

// NewRedisWithTimeout connects with the given read/write timeout.
func NewRedisWithTimeout(addr string, timeout time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
