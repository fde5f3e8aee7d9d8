package llm

import (
	"sync"
	"time"
)

// Cooldown tracks the window during which no completion calls are made
// after the provider reported a rate limit.
type Cooldown struct {
	until    time.Time
	now      func() time.Time
	duration time.Duration
	mu       sync.Mutex
}

// NewCooldown creates a cooldown that lasts d unless the provider asks for longer.
func NewCooldown(d time.Duration) *Cooldown {
	return &Cooldown{duration: d, now: time.Now}
}

// Active reports whether calls are currently suppressed.
func (c *Cooldown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.until)
}

// Remaining returns how long the cooldown still lasts.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d := c.until.Sub(c.now()); d > 0 {
		return d
	}
	return 0
}

// Trip starts or extends the cooldown. A positive retryAfter larger than the
// configured duration wins.
func (c *Cooldown) Trip(retryAfter time.Duration) {
	d := max(c.duration, retryAfter)
	if d <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if until := c.now().Add(d); until.After(c.until) {
		c.until = until
	}
}

// Reset clears any active cooldown.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = time.Time{}
}
