package activities

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/bookline/pkg/logging"
)

// Repository is the read interface the booking and reminder flows consume.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	FindAll(ctx context.Context) ([]Activity, error)
}

// CachedRepository is a redis read-through cache in front of the catalog
// store. The catalog is read-mostly reference data; TTL-bounded staleness is
// acceptable. Cache errors degrade to the underlying store.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps a repository with a redis cache. A nil client
// returns the inner repository unchanged.
func NewCachedRepository(inner Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) Repository {
	if client == nil {
		return inner
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

// FindByID returns the cached activity, falling back to the store on miss.
func (c *CachedRepository) FindByID(ctx context.Context, id uuid.UUID) (*Activity, error) {
	key := "activity:" + id.String()
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var a Activity
		if err := json.Unmarshal(raw, &a); err == nil {
			return &a, nil
		}
		c.logger.Warn("activities cache: corrupt entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("activities cache: get failed", "key", key, "error", err)
	}

	a, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, a)
	return a, nil
}

// FindAll returns the cached catalog, falling back to the store on miss.
func (c *CachedRepository) FindAll(ctx context.Context) ([]Activity, error) {
	const key = "activities:all"
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var all []Activity
		if err := json.Unmarshal(raw, &all); err == nil {
			return all, nil
		}
		c.logger.Warn("activities cache: corrupt entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("activities cache: get failed", "key", key, "error", err)
	}

	all, err := c.inner.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, all)
	return all, nil
}

func (c *CachedRepository) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("activities cache: set failed", "key", key, "error", err)
	}
}
