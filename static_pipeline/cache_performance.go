package static_pipeline

import (
	"time"
)

// counters is a point-in-time copy of CacheStats.
type counters struct {
	requests  int64
	hits      int64
	misses    int64
	evictions int64
	since     time.Time
}

func (c *ArtifactCache) record(update func(stats *CacheStats)) {
	if c.stats == nil {
		return
	}
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	update(c.stats)
}

func (c *ArtifactCache) recordCacheHit() {
	c.record(func(stats *CacheStats) {
		stats.TotalRequests++
		stats.CacheHits++
	})
}

func (c *ArtifactCache) recordCacheMiss() {
	c.record(func(stats *CacheStats) {
		stats.TotalRequests++
		stats.CacheMisses++
	})
}

// recordEviction runs inside the LRU's eviction callback and must not touch entries.
func (c *ArtifactCache) recordEviction() {
	c.record(func(stats *CacheStats) {
		stats.Evictions++
	})
}

func (c *ArtifactCache) snapshot() counters {
	if c.stats == nil {
		return counters{since: time.Now()}
	}
	c.stats.mutex.RLock()
	defer c.stats.mutex.RUnlock()
	return counters{
		requests:  c.stats.TotalRequests,
		hits:      c.stats.CacheHits,
		misses:    c.stats.CacheMisses,
		evictions: c.stats.Evictions,
		since:     c.stats.LastResetTime,
	}
}

func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// GetPerformanceStats reports request, hit, miss and eviction counters since
// the last reset.
func (c *ArtifactCache) GetPerformanceStats() map[string]interface{} {
	snap := c.snapshot()
	uptime := time.Since(snap.since)

	reqPerSec := 0.0
	if uptime.Seconds() > 0 {
		reqPerSec = float64(snap.requests) / uptime.Seconds()
	}

	return map[string]interface{}{
		"total_requests":      snap.requests,
		"cache_hits":          snap.hits,
		"cache_misses":        snap.misses,
		"evictions":           snap.evictions,
		"hit_rate_percent":    percent(snap.hits, snap.requests),
		"miss_rate_percent":   percent(snap.misses, snap.requests),
		"uptime_seconds":      uptime.Seconds(),
		"uptime_human":        uptime.Round(time.Second).String(),
		"requests_per_second": reqPerSec,
		"last_reset":          snap.since.Format(time.RFC3339),
	}
}

// ResetPerformanceStats zeroes every counter.
func (c *ArtifactCache) ResetPerformanceStats() {
	c.record(func(stats *CacheStats) {
		stats.TotalRequests = 0
		stats.CacheHits = 0
		stats.CacheMisses = 0
		stats.Evictions = 0
		stats.LastResetTime = time.Now()
	})
}
