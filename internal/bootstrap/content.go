package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/config"
	"github.com/folio-studio/folio-web/internal/content"
)

// OpenContent builds the content API client. When rdb is non-nil query
// results are cached there and the cache is returned for health reporting.
func OpenContent(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (*content.Client, *content.ResultCache, error) {
	opts := content.ClientOptions{
		Endpoint:    cfg.Content.Endpoint,
		AccessToken: cfg.Content.AccessToken,
		Timeout:     cfg.Content.Timeout,
		RateLimit:   cfg.Content.RateLimit,
		RateBurst:   cfg.Content.RateBurst,
		PageSize:    cfg.Content.PageSize,
		Logger:      logger,
	}

	var cache *content.ResultCache
	if rdb != nil {
		cache = content.NewResultCache(rdb, cfg.Cache.TTL)
		opts.Cache = cache
	}

	client, err := content.NewClient(opts)
	if err != nil {
		return nil, nil, err
	}
	return client, cache, nil
}
