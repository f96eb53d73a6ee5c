// internal/adapters/redis_adapter/location_cache.go
package redis_a

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// locationKeyPrefix namespaces location entries in Redis so the database can
// be shared with the task queue.
const locationKeyPrefix = "loc:inst:"

// locationsQuery matches every location record in storage. The full set is
// small reference data, so populate loads it in one request.
const locationsQuery = "cql.allRecords=1"

// LocationCache resolves location IDs to their owning institution. Lookups
// go through an in-process map first, then Redis, and fall back to loading
// the full location set from inventory storage. Entries are immutable once
// known, so there is no per-entry invalidation, only Refresh.
type LocationCache struct {
	client  *redis.Client
	storage ports.StorageClient
	ttl     time.Duration
	logger  *slog.Logger

	local sync.Map // locationID -> institutionID
}

// Statically assert that *LocationCache implements the LocationResolver interface.
var _ ports.LocationResolver = (*LocationCache)(nil)

// NewLocationCache creates a new Redis-backed location resolver.
func NewLocationCache(client *redis.Client, storage ports.StorageClient, ttl time.Duration, logger *slog.Logger) *LocationCache {
	return &LocationCache{
		client:  client,
		storage: storage,
		ttl:     ttl,
		logger:  logger.With(slog.String("component", "location_cache")),
	}
}

// Institution implements ports.LocationResolver.
func (c *LocationCache) Institution(ctx context.Context, locationID string) (string, error) {
	if locationID == "" {
		return "", fmt.Errorf("empty location id: %w", ports.ErrUnknownLocation)
	}

	if inst, ok := c.local.Load(locationID); ok {
		return inst.(string), nil
	}

	inst, err := c.client.Get(ctx, locationKeyPrefix+locationID).Result()
	if err == nil {
		c.local.Store(locationID, inst)
		return inst, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Redis being down must not take resolution with it; fall through
		// to a storage load.
		c.logger.WarnContext(ctx, "redis lookup failed, loading from storage",
			slog.String("location_id", locationID),
			slog.String("error", err.Error()))
	}

	if err := c.populate(ctx); err != nil {
		return "", err
	}

	if inst, ok := c.local.Load(locationID); ok {
		return inst.(string), nil
	}
	return "", fmt.Errorf("location %s: %w", locationID, ports.ErrUnknownLocation)
}

// Refresh implements ports.LocationResolver. It discards the in-process map
// and reloads the full location set.
func (c *LocationCache) Refresh(ctx context.Context) error {
	c.local.Range(func(key, _ any) bool {
		c.local.Delete(key)
		return true
	})
	return c.populate(ctx)
}

// populate loads every location from storage and writes the mapping to both
// tiers. Redis write failures are logged and tolerated.
func (c *LocationCache) populate(ctx context.Context) error {
	records, err := c.storage.FetchByQuery(ctx, domain.KindLocation, locationsQuery)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}

	pipe := c.client.Pipeline()
	loaded := 0
	for _, record := range records {
		id, _ := record["id"].(string)
		inst, _ := record["institutionId"].(string)
		if id == "" || inst == "" {
			continue
		}
		c.local.Store(id, inst)
		pipe.Set(ctx, locationKeyPrefix+id, inst, c.ttl)
		loaded++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to write locations to redis",
			slog.String("error", err.Error()))
	}

	c.logger.DebugContext(ctx, "location cache populated", slog.Int("locations", loaded))
	return nil
}
