package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/bookline/internal/activities"
	appconfig "github.com/wolfman30/bookline/internal/config"
	"github.com/wolfman30/bookline/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildActivityRepository wraps the activity store in a Redis cache when a
// client is available; otherwise the store is used directly.
func BuildActivityRepository(store *activities.Store, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) activities.Repository {
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.ActivityCacheTTL
	}
	return activities.NewCachedRepository(store, redisClient, ttl, logger)
}
