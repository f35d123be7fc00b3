package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores serialized idea payloads. Misses and expired entries are
// reported as ok == false; callers fall back to the database.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// item 包装缓存数据和过期时间
type item struct {
	data      []byte
	expiresAt time.Time
}

// Local is an in-process LRU cache with per-entry expiry.
type Local struct {
	lru *lru.Cache[string, item]
	now func() time.Time
}

func NewLocal(size int) (*Local, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Local{lru: l, now: time.Now}, nil
}

func (c *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.lru.Add(key, item{data: value, expiresAt: c.now().Add(ttl)})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Local) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return val.data, true
}

func (c *Local) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.lru.Remove(key)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Set(context.Context, string, []byte, time.Duration) {}

func (Nop) Delete(context.Context, ...string) {}

// IdeaKey is the cache key for an idea detail payload.
func IdeaKey(id string) string {
	return "idea:detail:" + id
}
