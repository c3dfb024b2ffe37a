package openagenda

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// Cache stores access tokens keyed by public key.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one cached value and its expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its expiry. A zero expiry never
// expires.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// MemoryCache is a bounded in-process cache.
type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]*CacheEntry
	maxSize int
	now     func() time.Time
}

// NewMemoryCache creates a cache holding at most maxSize entries. When full,
// the entry expiring soonest is evicted.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1
	}

	return &MemoryCache{
		items:   make(map[string]*CacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the entry under key.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheKeyNotFound
	}

	if entry.Expired(c.now()) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()

		return nil, ErrCacheEntryExpired
	}

	return entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evict()
	}

	c.items[key] = entry

	return nil
}

// evict removes expired entries, or the one expiring soonest when none is.
// Callers hold the write lock.
func (c *MemoryCache) evict() {
	now := c.now()
	removed := false

	for key, entry := range c.items {
		if entry.Expired(now) {
			delete(c.items, key)

			removed = true
		}
	}

	if removed {
		return
	}

	var (
		oldestKey string
		oldest    time.Time
	)

	for key, entry := range c.items {
		if oldestKey == "" || entry.ExpiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.ExpiresAt
		}
	}

	delete(c.items, oldestKey)
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]*CacheEntry)
	c.mu.Unlock()

	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *MemoryCache) Has(_ context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[key]

	return ok && !entry.Expired(c.now())
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	for key, entry := range c.items {
		if entry.Expired(now) {
			delete(c.items, key)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// CacheStats counts token cache lookups.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns hits over lookups, 0 when nothing was looked up.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager wraps a Cache with the get-or-default and set-with-TTL
// operations the token flow needs.
type CacheManager struct {
	cache   Cache
	metrics *Metrics

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager wraps cache. A nil cache disables caching; metrics may be nil.
func NewCacheManager(cache Cache, metrics *Metrics) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	return &CacheManager{cache: cache, metrics: metrics}
}

// Get returns the data cached under key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.cache.Get(ctx, key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.stats.Misses++
		m.metrics.CacheLookup(false)

		return nil, err
	}

	m.stats.Hits++
	m.metrics.CacheLookup(true)

	return entry.Data, nil
}

// GetString returns the text cached under key, or fallback.
func (m *CacheManager) GetString(ctx context.Context, key, fallback string) string {
	data, err := m.Get(ctx, key)
	if err != nil || len(data) == 0 {
		return fallback
	}

	return string(data)
}

// Set caches data under key for ttl. A non-positive ttl never expires.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := &CacheEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.stats.Sets++
	m.mu.Unlock()

	return nil
}

// Delete forgets key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

// GetStats returns a snapshot of the counters.
func (m *CacheManager) GetStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats
}
