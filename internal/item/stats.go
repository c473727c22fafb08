package item

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/catalog-browser/internal/metrics"
)

// StatsCache holds one computed Stats value together with the file
// modification time it was computed from. The value is reused until the
// file's mtime moves past the recorded one.
//
// Concurrent misses may each recompute and overwrite the entry; the result is
// a pure function of the file content at a given mtime, so last writer wins.
type StatsCache struct {
	repo Repository

	mu       sync.RWMutex
	cached   *Stats
	cachedAt time.Time
}

func NewStatsCache(repo Repository) *StatsCache {
	return &StatsCache{repo: repo}
}

func (c *StatsCache) Get(ctx context.Context) (Stats, error) {
	mtime, err := c.repo.ModTime(ctx)
	if err != nil {
		return Stats{}, err
	}

	c.mu.RLock()
	cached, cachedAt := c.cached, c.cachedAt
	c.mu.RUnlock()
	if cached != nil && !mtime.After(cachedAt) {
		metrics.RecordCacheHit("stats", true)
		return *cached, nil
	}
	metrics.RecordCacheHit("stats", false)

	items, err := c.repo.LoadAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	s := ComputeStats(items)

	c.mu.Lock()
	c.cached, c.cachedAt = &s, mtime
	c.mu.Unlock()
	return s, nil
}

// ComputeStats counts the items and averages their prices. Items without a
// price count as zero. An empty collection averages to NaN.
func ComputeStats(items []Item) Stats {
	total := len(items)
	if total == 0 {
		return Stats{Total: 0, AveragePrice: math.NaN()}
	}
	sum := decimal.Zero
	for _, it := range items {
		if it.Price != nil {
			sum = sum.Add(decimal.NewFromFloat(*it.Price))
		}
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(total))).Float64()
	return Stats{Total: total, AveragePrice: avg}
}
