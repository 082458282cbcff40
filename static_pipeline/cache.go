package static_pipeline

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
)

const DefaultCacheSize = 256

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	Evictions     int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// ArtifactCache memoizes rendered files keyed by alias and source digest,
// so a changed file on disk never serves a stale artifact.
type ArtifactCache struct {
	entries  *lru.Cache[string, []byte]
	capacity int
	stats    *CacheStats
}

// NewArtifactCache creates an LRU cache holding at most size artifacts.
// A non-positive size falls back to DefaultCacheSize.
func NewArtifactCache(size int) (*ArtifactCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache := &ArtifactCache{
		capacity: size,
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}
	entries, err := lru.NewWithEvict[string, []byte](size, func(string, []byte) {
		cache.recordEviction()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact cache: %w", err)
	}
	cache.entries = entries
	return cache, nil
}

// ArtifactKey builds the cache key for alias given the bytes read at request time.
func ArtifactKey(alias string, source []byte) string {
	return fmt.Sprintf("%s@%016x", alias, xxh3.Hash(source))
}

// Get retrieves a rendered artifact
func (c *ArtifactCache) Get(key string) ([]byte, bool) {
	artifact, ok := c.entries.Get(key)
	if !ok {
		c.recordCacheMiss()
		return nil, false
	}
	c.recordCacheHit()
	return artifact, true
}

// Set stores a rendered artifact
func (c *ArtifactCache) Set(key string, artifact []byte) {
	c.entries.Add(key, artifact)
}

func (c *ArtifactCache) Len() int {
	return c.entries.Len()
}

// Purge drops every artifact. Purged entries count as evictions.
func (c *ArtifactCache) Purge() {
	c.entries.Purge()
}

// GetCacheStats returns occupancy statistics
func (c *ArtifactCache) GetCacheStats() map[string]interface{} {
	var totalSize int64
	for _, key := range c.entries.Keys() {
		if artifact, ok := c.entries.Peek(key); ok {
			totalSize += int64(len(artifact))
		}
	}

	return map[string]interface{}{
		"entries":       c.entries.Len(),
		"capacity":      c.capacity,
		"total_size":    totalSize,
		"total_size_mb": float64(totalSize) / (1024 * 1024),
	}
}
