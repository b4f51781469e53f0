package services

import (
	"context"
	"time"

	"docchat/logger"
	"docchat/remote"

	"github.com/patrickmn/go-cache"
)

// PreviewLoader fetches a preview resource.
type PreviewLoader interface {
	FetchPreview(ctx context.Context, locator string) (remote.PreviewImage, error)
}

// CachedPreviewLoader remembers successful preview loads by locator.
// Failures are never cached, so every Open gets a fresh attempt.
type CachedPreviewLoader struct {
	loader PreviewLoader
	cache  *cache.Cache
}

func NewCachedPreviewLoader(loader PreviewLoader, ttl time.Duration) *CachedPreviewLoader {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &CachedPreviewLoader{
		loader: loader,
		cache:  cache.New(ttl, 10*time.Minute),
	}
}

func (c *CachedPreviewLoader) FetchPreview(ctx context.Context, locator string) (remote.PreviewImage, error) {
	if x, found := c.cache.Get(locator); found {
		logger.Log.Debugw("preview cache hit", "locator", locator)
		return x.(remote.PreviewImage), nil
	}

	img, err := c.loader.FetchPreview(ctx, locator)
	if err != nil {
		return remote.PreviewImage{}, err
	}

	c.cache.Set(locator, img, cache.DefaultExpiration)
	return img, nil
}
