// Package cache provides the in-memory cache of compiled coordinate operations.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/ports/output"
)

var _ output.OperationCache = (*OperationCache)(nil)

type entry = *operation.CoordinateTransformation

// OperationCache implements output.OperationCache on a TTL and capacity
// bounded ttlcache.
type OperationCache struct {
	cache  *ttlcache.Cache[string, entry]
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// Config holds cache configuration.
type Config struct {
	Capacity uint64        // Maximum number of operations, 0 for unbounded
	TTL      time.Duration // Idle lifetime of an operation, 0 for no expiry
}

// NewOperationCache creates a cache. Call Start to evict expired entries
// in the background.
func NewOperationCache(cfg Config, logger *slog.Logger) *OperationCache {
	opts := []ttlcache.Option[string, entry]{
		ttlcache.WithTTL[string, entry](cfg.TTL),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, entry](cfg.Capacity))
	}

	c := &OperationCache{
		cache:  ttlcache.New(opts...),
		logger: logger,
	}
	c.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, i *ttlcache.Item[string, entry]) {
		c.logger.Debug("operation evicted", "key", i.Key(), "reason", evictionReason(reason))
	})
	return c
}

// Start runs the expiry loop until Stop is called.
func (c *OperationCache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	go c.cache.Start()
}

// Stop ends the expiry loop. It is a no-op when the loop is not running.
func (c *OperationCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.cache.Stop()
}

// Get returns the cached operation for key and refreshes its TTL.
func (c *OperationCache) Get(key string) (*operation.CoordinateTransformation, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores an operation under key with the default TTL.
func (c *OperationCache) Set(key string, ct *operation.CoordinateTransformation) {
	c.cache.Set(key, ct, ttlcache.DefaultTTL)
}

// Purge drops every cached operation.
func (c *OperationCache) Purge() {
	c.cache.DeleteAll()
}

// Len returns the number of cached operations.
func (c *OperationCache) Len() int {
	return c.cache.Len()
}

func evictionReason(r ttlcache.EvictionReason) string {
	switch r {
	case ttlcache.EvictionReasonExpired:
		return "expired"
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	default:
		return "deleted"
	}
}
