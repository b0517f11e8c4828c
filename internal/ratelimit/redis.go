package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrementScript bumps the counter and sets the expiry only on the first hit,
// so the window is fixed from its first request.
var incrementScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {hits, ttl}
`)

const redisKeyPrefix = "ratelimit:"

// RedisCounter shares windows between server instances.
type RedisCounter struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client, now: time.Now}
}

func (c *RedisCounter) WithClock(now func() time.Time) *RedisCounter {
	c.now = now
	return c
}

func (c *RedisCounter) Increment(ctx context.Context, key string, length time.Duration) (Count, error) {
	result, err := incrementScript.Run(ctx, c.client, []string{redisKeyPrefix + key}, length.Milliseconds()).Result()
	if err != nil {
		return Count{}, fmt.Errorf("redis increment: %w", err)
	}
	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return Count{}, fmt.Errorf("redis increment: unexpected reply %v", result)
	}
	hits, ok := values[0].(int64)
	if !ok {
		return Count{}, fmt.Errorf("redis increment: unexpected hits %v", values[0])
	}
	ttl, ok := values[1].(int64)
	if !ok {
		return Count{}, fmt.Errorf("redis increment: unexpected ttl %v", values[1])
	}
	return Count{Hits: hits, ResetAt: c.now().Add(time.Duration(ttl) * time.Millisecond)}, nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
