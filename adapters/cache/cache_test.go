package cache

import (
	"context"
	"os"
	"sync"
	"testing"

	"causalgate/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSetEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "a", []byte("1"))
	v, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	c.Evict(ctx, "a")
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheEvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	c.Set(ctx, "a", []byte("3"))
	c.Set(ctx, "c", []byte("4"))

	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)
	v, _ := c.Get(ctx, "b")
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	in := []byte("abc")
	c.Set(ctx, "k", in)
	in[0] = 'x'

	out, _ := c.Get(ctx, "k")
	out[1] = 'y'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCacheConcurrentUse(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(64)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := core.Fingerprint("k", string(rune('a'+i))).Short()
			c.Set(ctx, key, []byte{byte(i)})
			c.Get(ctx, key)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, c.Len())
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close()

	key := "test:" + core.NewID().String()
	c.Set(ctx, key, []byte("value"))
	v, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), v)

	c.Evict(ctx, key)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not a url", nil)
	assert.Error(t, err)
}
