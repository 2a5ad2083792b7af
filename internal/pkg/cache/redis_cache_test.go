package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

type mediaEntry struct {
	ID       uint64 `json:"id"`
	FileName string `json:"file_name"`
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	in := []mediaEntry{{ID: 1, FileName: "live-set.mp3"}, {ID: 2, FileName: "press-photo.jpg"}}
	require.NoError(t, c.Set(ctx, "dj:media:1", in, time.Minute))

	var out []mediaEntry
	require.NoError(t, c.Get(ctx, "dj:media:1", &out))
	assert.Equal(t, in, out)
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var out []mediaEntry
	err := c.Get(context.Background(), "dj:media:404", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_DelAndExists(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dj:media:2", []mediaEntry{{ID: 3}}, time.Minute))

	exists, err := c.Exists(ctx, "dj:media:2")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Del(ctx, "dj:media:2"))

	exists, err = c.Exists(ctx, "dj:media:2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dj:media:3", []mediaEntry{{ID: 4}}, time.Minute))

	ttl, err := c.TTL(ctx, "dj:media:3")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	// miniredis 手动推进时间
	mr.FastForward(2 * time.Minute)

	var out []mediaEntry
	err = c.Get(ctx, "dj:media:3", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
