package cache

import (
	"context"
	"fmt"
	"time"

	"quill/internal/middleware"
)

// IndexTTL is how long a rendered home-feed page stays cached. Staleness
// inside this window is accepted behavior, not a bug.
const IndexTTL = 20 * time.Second

// IndexPageKey returns the cache key for one rendered page of the home
// feed. The rendered page embeds viewer-specific navigation, so the key
// carries the viewer identity; viewerID 0 means anonymous.
func IndexPageKey(page int, viewerID uint) string {
	if viewerID == 0 {
		return fmt.Sprintf("index:page:%d:anon", page)
	}
	return fmt.Sprintf("index:page:%d:user:%d", page, viewerID)
}

// GetPage returns the cached rendered page body for key, if present.
// A nil client or a miss both report not-found.
func GetPage(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	body, err := client.Get(ctx, key).Bytes()
	if err != nil {
		middleware.PageCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	middleware.PageCacheHits.WithLabelValues("hit").Inc()
	return body, true
}

// SetPage stores a rendered page body under key with the index TTL.
// Best-effort: cache failures never fail the request.
func SetPage(ctx context.Context, key string, body []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, key, body, IndexTTL)
}

// ClearIndex drops every cached page of the home feed. Exposed so that an
// external trigger (and tests) can force the next render to be fresh.
func ClearIndex(ctx context.Context) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, "index:page:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}
