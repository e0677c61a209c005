package score

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultCacheCapacity  = 1000
	DefaultCacheFreshness = time.Hour
)

// Key addresses a cached result. ResumeID is empty when no resume was used.
type Key struct {
	JobHash  string
	ResumeID string
}

type cacheEntry struct {
	result       *Result
	cachedAt     time.Time
	lastAccessed atomic.Int64 // unix nanos; bumped under the read lock
}

// CacheStats is a point-in-time snapshot of the cache counters.
type CacheStats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	Capacity int
}

// HitRate is hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a bounded LRU memo of scoring results with a freshness window.
// Reads share an RWMutex read lock; Set, Invalidate* and Clear take it
// exclusively. No I/O happens while the lock is held.
type Cache struct {
	mu        sync.RWMutex
	entries   map[Key]*cacheEntry
	capacity  int
	freshness time.Duration
	now       func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheOption configures a Cache at construction.
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache builds a cache. Non-positive arguments fall back to the defaults.
func NewCache(capacity int, freshness time.Duration, opts ...CacheOption) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if freshness <= 0 {
		freshness = DefaultCacheFreshness
	}
	c := &Cache{
		entries:   make(map[Key]*cacheEntry, capacity),
		capacity:  capacity,
		freshness: freshness,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result when present and fresh. A hit refreshes LRU
// recency but not the entry's age. Expired entries are removed.
func (c *Cache) Get(key Key) (*Result, bool) {
	r, ok, _ := c.lookup(key, nil)
	return r, ok
}

// lookup is Get with an extra acceptance check. A fresh entry that accept
// rejects counts as a miss and leaves recency alone; changed reports it.
func (c *Cache) lookup(key Key, accept func(*Result) bool) (r *Result, ok, changed bool) {
	now := c.now()

	c.mu.RLock()
	e, found := c.entries[key]
	fresh := found && now.Sub(e.cachedAt) < c.freshness
	if fresh && (accept == nil || accept(e.result)) {
		e.lastAccessed.Store(now.UnixNano())
		r = e.result
		c.mu.RUnlock()
		c.hits.Add(1)
		return r, true, false
	}
	c.mu.RUnlock()

	if found && !fresh {
		c.mu.Lock()
		// Another writer may have replaced the entry meanwhile.
		if cur, still := c.entries[key]; still && now.Sub(cur.cachedAt) >= c.freshness {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	c.misses.Add(1)
	return nil, false, fresh
}

// Set stores r under key, evicting the least recently accessed entry when
// the cache is full.
func (c *Cache) Set(key Key, r *Result) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	e := &cacheEntry{result: r, cachedAt: now}
	e.lastAccessed.Store(now.UnixNano())
	c.entries[key] = e
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestKey Key
		oldest    int64
		found     bool
	)
	for k, e := range c.entries {
		at := e.lastAccessed.Load()
		if !found || at < oldest {
			oldestKey, oldest, found = k, at, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// InvalidateByResume drops every entry scored against resumeID.
func (c *Cache) InvalidateByResume(resumeID string) int {
	return c.invalidate(func(k Key) bool { return k.ResumeID == resumeID })
}

// InvalidateByJob drops every entry for the given job hash.
func (c *Cache) InvalidateByJob(jobHash string) int {
	return c.invalidate(func(k Key) bool { return k.JobHash == jobHash })
}

func (c *Cache) invalidate(match func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Clear removes all entries and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*cacheEntry, c.capacity)
	c.hits.Store(0)
	c.misses.Store(0)
	c.mu.Unlock()
}

// Len reports the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats snapshots the counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.Len(),
		Capacity: c.capacity,
	}
}
