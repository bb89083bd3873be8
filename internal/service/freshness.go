package service

import (
	"context"
	"log"
	"sync"
	"time"

	"venuescout/internal/model"
)

// FreshnessValidator is the external collaborator that checks whether a
// venue is still operating.
type FreshnessValidator interface {
	Validate(ctx context.Context, venue model.Venue) (*model.FreshnessResult, error)
}

type freshnessEntry struct {
	result    *model.FreshnessResult
	expiresAt time.Time
}

// FreshnessCache caches validator results per venue identity with a TTL.
// Concurrent writers on the same key resolve last-write-wins. The cache
// is unbounded; entries expire but are never evicted.
type FreshnessCache struct {
	mu        sync.RWMutex
	entries   map[string]freshnessEntry
	validator FreshnessValidator
	ttl       time.Duration
	now       func() time.Time
}

// NewFreshnessCache creates a freshness cache over the given validator.
func NewFreshnessCache(validator FreshnessValidator, ttl time.Duration) *FreshnessCache {
	return &FreshnessCache{
		entries:   make(map[string]freshnessEntry),
		validator: validator,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Check returns the cached freshness result for a venue, calling the
// validator when the entry is missing or expired.
func (c *FreshnessCache) Check(ctx context.Context, venue model.Venue) (*model.FreshnessResult, error) {
	key := venue.Key()

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()
	if found && c.now().Before(entry.expiresAt) {
		return entry.result, nil
	}

	result, err := c.validator.Validate(ctx, venue)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = freshnessEntry{result: result, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return result, nil
}

// CheckBatch validates a batch of venues, isolating per-venue failures:
// one venue's error never aborts the rest. Failed venues are simply absent
// from the returned map.
func (c *FreshnessCache) CheckBatch(ctx context.Context, venues []model.Venue) map[string]*model.FreshnessResult {
	results := make(map[string]*model.FreshnessResult, len(venues))
	for _, venue := range venues {
		result, err := c.Check(ctx, venue)
		if err != nil {
			log.Printf("Freshness validation failed for %s: %v", venue.Name, err)
			continue
		}
		results[venue.Key()] = result
	}
	return results
}

// Len reports the number of cached entries, expired ones included.
func (c *FreshnessCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
