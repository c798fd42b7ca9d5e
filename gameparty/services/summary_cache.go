package services

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

const summaryCacheSize = 4096

// Peeker is the read side of the coordinator.
type Peeker interface {
	Peek(ctx context.Context, campaignID string) (pool.Summary, error)
}

type cachedSummary struct {
	summary   pool.Summary
	timestamp time.Time
}

// SummaryCache absorbs the peek traffic the public counter UI generates.
// Claims can land between refreshes, so entries expire quickly; a slightly
// stale counter is fine, the counter never gates eligibility.
type SummaryCache struct {
	peeker Peeker
	cache  *lru.Cache
	expiry time.Duration
}

func NewSummaryCache(peeker Peeker, expiry time.Duration) *SummaryCache {
	cache, _ := lru.New(summaryCacheSize)
	return &SummaryCache{
		peeker: peeker,
		cache:  cache,
		expiry: expiry,
	}
}

func (c *SummaryCache) Peek(ctx context.Context, campaignID string) (pool.Summary, error) {
	if v, ok := c.cache.Get(campaignID); ok {
		entry := v.(cachedSummary)
		if time.Since(entry.timestamp) < c.expiry {
			return entry.summary, nil
		}
		c.cache.Remove(campaignID)
	}

	summary, err := c.peeker.Peek(ctx, campaignID)
	if err != nil {
		return pool.Summary{}, err
	}
	c.cache.Add(campaignID, cachedSummary{summary: summary, timestamp: time.Now()})
	return summary, nil
}

// Invalidate drops a campaign's cached counter, used after ReplaceCodes so
// the new total shows up immediately.
func (c *SummaryCache) Invalidate(campaignID string) {
	c.cache.Remove(campaignID)
}
