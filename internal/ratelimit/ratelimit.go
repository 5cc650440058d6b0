// Package ratelimit implements fixed-window request limits.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments key and returns the new count for the current window.
// The window starts at the first increment.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
}

func New(counter Counter, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window, prefix: prefix}
}

// Allow reports whether another event for key fits in the window. A limit of
// zero or less disables limiting.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	count, err := l.counter.Incr(ctx, "rate:"+l.prefix+":"+key, l.window)
	if err != nil {
		return false, fmt.Errorf("checking rate limit: %w", err)
	}

	return count <= int64(l.limit), nil
}

type txPipeliner interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisCounter runs INCR and EXPIRE NX in one MULTI/EXEC so a key never
// outlives a failed expiry. EXPIRE NX needs Redis 7.
type RedisCounter struct {
	client txPipeliner
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing %s: %w", key, err)
	}

	return incr.Val(), nil
}

// MemoryCounter keeps windows in process. Used when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
}

type window struct {
	count   int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now, windows: make(map[string]*window)}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, d time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	w, ok := c.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &window{expires: now.Add(d)}
		c.windows[key] = w
	}

	w.count++

	return w.count, nil
}
