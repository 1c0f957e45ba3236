package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a limiter sharing its state through redis, for deployments
// with more than one API process. SET NX with a TTL makes the admission
// decision atomic on the redis side.
type Redis struct {
	client   *redis.Client
	interval time.Duration
	prefix   string
}

// NewRedis creates a redis-backed limiter.
func NewRedis(client *redis.Client, interval time.Duration) *Redis {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Redis{client: client, interval: interval, prefix: "absensi:rate:"}
}

// Allow implements Limiter. Redis errors fail open so an unreachable
// redis cannot block all submissions.
func (r *Redis) Allow(ctx context.Context, key string) bool {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, r.interval).Result()
	if err != nil {
		log.Printf("rate limiter redis error, admitting %s: %v", key, err)
		return true
	}
	return ok
}
