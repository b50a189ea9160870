// Package cache keeps resolved events in memory so repeated analyses of the
// same event skip the event lookup.
package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"

	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/metrics"
)

// Config holds ristretto sizing
type Config struct {
	NumCounters int64 // keys tracked for admission, about 10x max items
	MaxCost     int64 // max items, every entry costs 1
	BufferItems int64
}

// DefaultConfig sizes the cache for a few thousand events
func DefaultConfig() Config {
	return Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	}
}

// EventCache stores resolved events keyed by slug
type EventCache struct {
	cache *ristretto.Cache
	log   *logrus.Logger
}

// NewEventCache creates a new ristretto-backed event cache
func NewEventCache(cfg Config, log *logrus.Logger) (*EventCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &EventCache{cache: c, log: log}, nil
}

// Get returns a copy of the cached event for slug
func (c *EventCache) Get(slug string) (*market.Event, bool) {
	v, found := c.cache.Get(slug)
	metrics.RecordCacheLookup(found)
	if !found {
		c.log.WithField("slug", slug).Debug("Event cache miss")
		return nil, false
	}
	event := v.(market.Event)
	return &event, true
}

// Set stores event for ttl. Admission is asynchronous; call Wait to make the
// entry visible immediately.
func (c *EventCache) Set(event *market.Event, ttl time.Duration) bool {
	return c.cache.SetWithTTL(event.Slug, *event, 1, ttl)
}

// Wait blocks until pending sets are applied
func (c *EventCache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines
func (c *EventCache) Close() {
	c.cache.Close()
}

// CachingResolver serves events from the cache and falls back to next.
// Errors are never cached.
type CachingResolver struct {
	next  market.EventResolver
	cache *EventCache
	ttl   time.Duration
}

// NewCachingResolver wraps next with cache
func NewCachingResolver(next market.EventResolver, cache *EventCache, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

// Resolve implements market.EventResolver
func (r *CachingResolver) Resolve(ctx context.Context, identifier string) (*market.Event, error) {
	slug, err := market.ExtractSlug(identifier)
	if err != nil {
		return nil, err
	}
	if event, ok := r.cache.Get(slug); ok {
		return event, nil
	}

	event, err := r.next.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if r.ttl > 0 {
		r.cache.Set(event, r.ttl)
	}
	return event, nil
}
