package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisCache(context.Background(), WithRedisAddr(mr.Addr()), WithRedisPrefix("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "a", map[string]int{"x": 1}, time.Minute))
	assert.True(t, mr.Exists("test:a"))

	var got map[string]int
	require.NoError(t, rc.Get(ctx, "a", &got))
	assert.Equal(t, 1, got["x"])

	mr.FastForward(2 * time.Minute)
	err := rc.Get(ctx, "a", &got)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	require.NoError(t, rc.Set(ctx, "macro:1", "x", 0))
	require.NoError(t, rc.Set(ctx, "macro:2", "y", 0))
	require.NoError(t, rc.Set(ctx, "other", "z", 0))

	require.NoError(t, rc.DeleteByPattern(ctx, BuildPattern("macro:")))
	assert.False(t, mr.Exists("test:macro:1"))
	assert.False(t, mr.Exists("test:macro:2"))
	assert.True(t, mr.Exists("test:other"))
}

func TestRedisCachePing(t *testing.T) {
	rc, mr := newTestRedis(t)
	require.NoError(t, rc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	_, err := NewRedisCache(context.Background(), WithRedisAddr("127.0.0.1:1"), func(c *RedisConfig) {
		c.DialTimeout = 200 * time.Millisecond
	})
	assert.Error(t, err)
}
