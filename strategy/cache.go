package strategy

import (
	"sync"
	"time"

	"github.com/psybe/pitwall/racestate"
)

// planCacheEntry is a cached pre-race plan, keyed by the driver and the
// weather/aggression bucket it was generated for.
type planCacheEntry struct {
	plan       []racestate.StrategyStint
	generatedAt time.Time
}

func (e *planCacheEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.generatedAt) > ttl
}

// PlanCache memoizes PlanFor's pre-race plan generation so that the
// enumeration (four candidate stint sequences per driver, §4.5) is not
// redone for drivers that share a track, wet/dry split, aggression bucket
// and tyre-management bucket. PrecomputePlans calls PlanPreRace directly and
// does not read or fill it. It is mutex-guarded so PlanFor may be called
// from several goroutines.
type PlanCache struct {
	mu      sync.RWMutex
	config  *Config
	entries map[string]*planCacheEntry

	hits   int64
	misses int64
}

// NewPlanCache builds a cache bounded by config.MaxCacheSize, evicting the
// oldest entry once full (a simple FIFO policy; the workload is a single
// burst of plan computations per driver, so LRU recency tracking would add
// complexity without changing behavior).
func NewPlanCache(config *Config) *PlanCache {
	if config == nil {
		config = DefaultConfig()
	}
	return &PlanCache{config: config, entries: make(map[string]*planCacheEntry)}
}

// Get returns a cached plan for key, if present and not expired.
func (c *PlanCache) Get(key string) ([]racestate.StrategyStint, bool) {
	if !c.config.EnableCaching {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.isExpired(c.config.CacheTTL) {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.plan, true
}

// Put stores a plan under key, evicting the oldest entry if the cache is
// at capacity.
func (c *PlanCache) Put(key string, plan []racestate.StrategyStint) {
	if !c.config.EnableCaching {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.config.MaxCacheSize {
		var oldestKey string
		var oldestAt time.Time
		found := false
		for k, e := range c.entries {
			if !found || e.generatedAt.Before(oldestAt) {
				oldestKey, oldestAt, found = k, e.generatedAt, true
			}
		}
		if found {
			delete(c.entries, oldestKey)
		}
	}
	c.entries[key] = &planCacheEntry{plan: plan, generatedAt: time.Now()}
}

// Stats reports hit/miss counters for diagnostics.
func (c *PlanCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
