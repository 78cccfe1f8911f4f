// Package registry serves product type attribute sets through a Redis
// read-through cache. Registry lookups sit on the hot path of every
// assignment batch, so they get cached with a short TTL.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/petal/pkg/models"
	"github.com/Ramsey-B/petal/pkg/redis"
	"github.com/Ramsey-B/petal/pkg/tracing"
)

// Source loads registry entries from the database
type Source interface {
	Registry(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error)
}

// Cache is a read-through cache over a registry source. A nil Redis client
// turns it into a passthrough.
type Cache struct {
	source Source
	client *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

// NewCache creates a new registry cache
func NewCache(source Source, client *redis.Client, ttl time.Duration, logger ectologger.Logger) *Cache {
	return &Cache{
		source: source,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(tenantID, productTypeID string, scope models.AttributeScope) string {
	return fmt.Sprintf("petal:registry:%s:%s:%s", tenantID, productTypeID, scope)
}

// Entries returns the attributes of one scope of a product type, from cache
// when fresh. Cache failures fall back to the database.
func (c *Cache) Entries(ctx context.Context, tenantID, productTypeID string, scope models.AttributeScope) ([]models.RegistryEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "registry.Cache.Entries")
	defer span.End()

	if c.client == nil {
		return c.source.Registry(ctx, tenantID, productTypeID, scope)
	}

	key := cacheKey(tenantID, productTypeID, scope)
	data, err := c.client.Get(ctx, key)
	if err == nil {
		var entries []models.RegistryEntry
		if err := json.Unmarshal([]byte(data), &entries); err == nil {
			return entries, nil
		}
		c.logger.WithContext(ctx).WithError(err).Warn("failed to decode cached registry, reloading")
	} else if !redis.IsNil(err) {
		c.logger.WithContext(ctx).WithError(err).Warn("registry cache read failed")
	}

	entries, err := c.source.Registry(ctx, tenantID, productTypeID, scope)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(entries); err == nil {
		if err := c.client.Set(ctx, key, string(encoded), c.ttl); err != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("registry cache write failed")
		}
	}

	return entries, nil
}

// Invalidate drops both scope entries of a product type, called after
// attach/detach and attribute changes.
func (c *Cache) Invalidate(ctx context.Context, tenantID, productTypeID string) {
	if c.client == nil {
		return
	}

	keys := []string{
		cacheKey(tenantID, productTypeID, models.AttributeScopeProduct),
		cacheKey(tenantID, productTypeID, models.AttributeScopeVariant),
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("registry cache invalidation failed")
	}
}
