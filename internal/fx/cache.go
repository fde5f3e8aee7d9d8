package fx

import (
	"sync"
	"time"
)

// rateEntry is a cached live rate.
type rateEntry struct {
	fetchedAt time.Time
	expiry    time.Time
	rate      float64
}

// rateCache holds recently fetched live rates keyed by currency pair.
type rateCache struct {
	entries map[string]rateEntry
	now     func() time.Time
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// newRateCache creates a cache with the specified TTL and starts its sweeper.
func newRateCache(ttl time.Duration, now func() time.Time) *rateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if now == nil {
		now = time.Now
	}

	c := &rateCache{
		entries: make(map[string]rateEntry),
		ttl:     ttl,
		now:     now,
		stopCh:  make(chan struct{}),
	}

	go c.cleanup()

	return c
}

func pairKey(from, to string) string {
	return from + "_" + to
}

// get returns a rate if one is cached for the pair and hasn't expired.
func (c *rateCache) get(from, to string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pairKey(from, to)]
	if !ok || c.now().After(entry.expiry) {
		return 0, false
	}
	return entry.rate, true
}

// set stores a rate for the pair.
func (c *rateCache) set(from, to string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[pairKey(from, to)] = rateEntry{
		rate:      rate,
		fetchedAt: now,
		expiry:    now.Add(c.ttl),
	}
}

// cleanup periodically drops expired entries.
func (c *rateCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *rateCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// clear removes all entries.
func (c *rateCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]rateEntry)
}

// size returns the number of entries, expired or not.
func (c *rateCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the sweeper. It is safe to call more than once.
func (c *rateCache) Close() {
	c.once.Do(func() { close(c.stopCh) })
}
