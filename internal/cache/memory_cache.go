// Package cache provides the in-memory plan cache. Entries map sanitized
// questions to the raw plan candidates the reasoning component produced, so
// repeated questions skip the planner call entirely.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// PlanCache is a thread-safe in-memory cache with per-entry TTL.
type PlanCache struct {
	store map[string]cacheItem
	mutex sync.RWMutex
	ttl   time.Duration
}

type cacheItem struct {
	value      any
	expiration int64
}

// NewPlanCache creates a plan cache with the given TTL and starts its
// background cleanup.
func NewPlanCache(defaultTTL time.Duration) *PlanCache {
	c := &PlanCache{
		store: make(map[string]cacheItem),
		ttl:   defaultTTL,
	}
	go c.cleanupLoop(10 * time.Minute)
	return c
}

// Get retrieves a cached plan candidate. Missing and expired entries both
// report not-found.
func (c *PlanCache) Get(ctx context.Context, key string) (any, error) {
	if err := errbuilder.WrapIfContextDone(ctx, nil); err != nil {
		return nil, err
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, found := c.store[key]
	if !found {
		return nil, errbuilder.NotFoundErr(errbuilder.GenericErr("plan not cached", nil))
	}
	if time.Now().UnixNano() > item.expiration {
		// Expired entries are removed by the cleanup loop; here we only
		// report the miss.
		return nil, errbuilder.NotFoundErr(errbuilder.GenericErr("cached plan expired", nil))
	}

	return item.value, nil
}

// Set stores a plan candidate under the sanitized question.
func (c *PlanCache) Set(ctx context.Context, key string, value any) error {
	if err := errbuilder.WrapIfContextDone(ctx, nil); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.store[key] = cacheItem{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *PlanCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.store)
}

// cleanupLoop periodically removes expired items.
func (c *PlanCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now().UnixNano()
		for key, item := range c.store {
			if now > item.expiration {
				delete(c.store, key)
			}
		}
		c.mutex.Unlock()
	}
}
