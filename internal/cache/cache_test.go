package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocal(10)
	require.NoError(t, err)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(ctx, IdeaKey("1"), []byte("payload"), time.Minute)
	val, ok := c.Get(ctx, IdeaKey("1"))
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), val)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, IdeaKey("1"))
	assert.False(t, ok)
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocal(10)
	require.NoError(t, err)

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Delete(ctx, "a", "b", "missing")

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestLocalEviction(t *testing.T) {
	ctx := context.Background()
	c, err := NewLocal(1)
	require.NoError(t, err)

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b")
	assert.True(t, ok)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedis(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get(ctx, IdeaKey("1"))
	assert.False(t, ok)

	c.Set(ctx, IdeaKey("1"), []byte(`{"id":"1"}`), time.Minute)
	val, ok := c.Get(ctx, IdeaKey("1"))
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"1"}`, string(val))
	assert.True(t, mr.Exists("idea:detail:1"))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, IdeaKey("1"))
	assert.False(t, ok)

	c.Set(ctx, IdeaKey("2"), []byte("x"), time.Minute)
	c.Delete(ctx, IdeaKey("2"))
	assert.False(t, mr.Exists("idea:detail:2"))
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url")
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	c := NewRedisFromClient(client)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}
