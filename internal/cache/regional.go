// Package cache provides the in-process regional party-split cache.
package cache

import (
	"context"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/RaynaArora/neo-hackathon/internal/metrics"
	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// Loader fetches a split for a state on a cache miss.
type Loader func(ctx context.Context, state string) (*models.RegionalPartySplit, error)

// RegionalCache holds party splits keyed by state abbreviation. Entries never
// expire and live for the lifetime of the process.
type RegionalCache struct {
	cache     *gocache.Cache
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Entries  int     `json:"entries"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// NewRegionalCache creates an empty cache.
func NewRegionalCache() *RegionalCache {
	return &RegionalCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func key(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

// Get returns the cached split for state, if any.
func (rc *RegionalCache) Get(state string) (*models.RegionalPartySplit, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if v, found := rc.cache.Get(key(state)); found {
		if split, ok := v.(*models.RegionalPartySplit); ok {
			rc.hitCount++
			rc.updateMetrics()
			return split, true
		}
	}
	rc.missCount++
	rc.updateMetrics()
	return nil, false
}

// Set stores the split for state.
func (rc *RegionalCache) Set(state string, split *models.RegionalPartySplit) {
	rc.cache.Set(key(state), split, gocache.NoExpiration)
}

// GetOrLoad returns the cached split or calls load and caches a successful
// result. Errors are not cached so a later race may retry the lookup.
func (rc *RegionalCache) GetOrLoad(ctx context.Context, state string, load Loader) (*models.RegionalPartySplit, error) {
	if split, ok := rc.Get(state); ok {
		return split, nil
	}
	split, err := load(ctx, key(state))
	if err != nil {
		return nil, err
	}
	rc.Set(state, split)
	return split, nil
}

// Stats returns current usage counters.
func (rc *RegionalCache) Stats() Stats {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return Stats{
		Entries:  rc.cache.ItemCount(),
		Hits:     rc.hitCount,
		Misses:   rc.missCount,
		HitRatio: rc.hitRatio(),
	}
}

func (rc *RegionalCache) hitRatio() float64 {
	total := rc.hitCount + rc.missCount
	if total == 0 {
		return 0
	}
	return float64(rc.hitCount) / float64(total)
}

func (rc *RegionalCache) updateMetrics() {
	metrics.UpdateRegionalCacheHitRatio(rc.hitRatio())
}
