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

func setupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestIndexPageKey(t *testing.T) {
	assert.Equal(t, "index:page:1:anon", IndexPageKey(1, 0))
	assert.Equal(t, "index:page:12:anon", IndexPageKey(12, 0))
	// each viewer caches their own rendering of the same page
	assert.Equal(t, "index:page:1:user:7", IndexPageKey(1, 7))
	assert.NotEqual(t, IndexPageKey(1, 7), IndexPageKey(1, 8))
}

func TestPageRoundTrip(t *testing.T) {
	mr := setupCache(t)
	ctx := context.Background()

	_, ok := GetPage(ctx, IndexPageKey(1, 0))
	assert.False(t, ok)

	SetPage(ctx, IndexPageKey(1, 0), []byte("<html>page one</html>"))

	body, ok := GetPage(ctx, IndexPageKey(1, 0))
	require.True(t, ok)
	assert.Equal(t, []byte("<html>page one</html>"), body)

	// the entry carries the index TTL
	ttl := mr.TTL(IndexPageKey(1, 0))
	assert.Equal(t, IndexTTL, ttl)

	mr.FastForward(IndexTTL + time.Second)
	_, ok = GetPage(ctx, IndexPageKey(1, 0))
	assert.False(t, ok)
}

func TestClearIndex(t *testing.T) {
	mr := setupCache(t)
	ctx := context.Background()

	SetPage(ctx, IndexPageKey(1, 0), []byte("one"))
	SetPage(ctx, IndexPageKey(2, 0), []byte("two"))
	require.NoError(t, mr.Set("unrelated", "keep"))

	ClearIndex(ctx)

	_, ok := GetPage(ctx, IndexPageKey(1, 0))
	assert.False(t, ok)
	_, ok = GetPage(ctx, IndexPageKey(2, 0))
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestCacheDisabledFailsOpen(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	// with no redis every operation quietly does nothing
	SetPage(ctx, IndexPageKey(1, 0), []byte("one"))
	_, ok := GetPage(ctx, IndexPageKey(1, 0))
	assert.False(t, ok)
	ClearIndex(ctx)
}
