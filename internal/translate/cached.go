package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/fluencycoach/internal/cache"
)

// Cached memoizes another Translator in Redis. Cache failures fall through to the backend.
type Cached struct {
	next  Translator
	cache *cache.Cache
	ttl   time.Duration
}

func NewCached(next Translator, c *cache.Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Translate(ctx context.Context, text, target string) (string, error) {
	key := cacheKey(text, target)

	var hit string
	err := c.cache.Get(ctx, key, &hit)
	switch {
	case err == nil:
		return hit, nil
	case !errors.Is(err, cache.ErrMiss):
		slog.Warn("translation cache read failed", "error", err)
	}

	out, err := c.next.Translate(ctx, text, target)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
		slog.Warn("translation cache write failed", "error", err)
	}
	return out, nil
}

func cacheKey(text, target string) string {
	sum := sha256.Sum256([]byte(target + "|" + text))
	return "translate:" + hex.EncodeToString(sum[:])
}
