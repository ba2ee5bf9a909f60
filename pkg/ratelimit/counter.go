// Package ratelimit caps how often a client may request expensive renders.
//
// Budgets are fixed windows: the first hit on a key starts a window of the
// rule's period, and every further hit within it increments the same
// counter. Counters live in memory for a single process or in Redis when
// several replicas share one budget.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter increments fixed-window counters.
type Counter interface {
	// Increment adds one to key and returns the new count along with the
	// time left until the window resets. A new window of length window
	// starts when the key is absent.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

var cleanInterval = time.Second

type memRef struct {
	val int64
	exp time.Time
}

// MemCounter keeps counters in process memory.
type MemCounter struct {
	mu   sync.Mutex
	vals map[string]*memRef
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemCounter starts a counter whose expired windows are swept in the
// background until Close.
func NewMemCounter() *MemCounter {
	c := &MemCounter{
		vals: make(map[string]*memRef),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go c.cleaner()
	return c
}

func (c *MemCounter) cleaner() {
	t := time.NewTicker(cleanInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

func (c *MemCounter) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, v := range c.vals {
		if !now.Before(v.exp) {
			delete(c.vals, k)
		}
	}
}

func (c *MemCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	ref, ok := c.vals[key]
	if !ok || !now.Before(ref.exp) {
		ref = &memRef{exp: now.Add(window)}
		c.vals[key] = ref
	}
	ref.val++
	return ref.val, ref.exp.Sub(now), nil
}

func (c *MemCounter) Reset(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vals, key)
	return nil
}

// Close stops the background sweeper.
func (c *MemCounter) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// RedisCounter keeps counters in Redis so replicas share budgets.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisCounter stores counters under prefix in client.
func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = r.prefix + key
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// The expiry was lost (e.g. a crash between INCR and EXPIRE).
		r.client.Expire(ctx, key, window)
		ttl = window
	}
	return count, ttl, nil
}

func (r *RedisCounter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the Redis client.
func (r *RedisCounter) Close() error {
	return r.client.Close()
}

var (
	_ Counter = (*MemCounter)(nil)
	_ Counter = (*RedisCounter)(nil)
)
