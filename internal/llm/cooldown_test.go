package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(time.Minute)
	c.now = func() time.Time { return now }

	assert.False(t, c.Active())

	c.Trip(0)
	assert.True(t, c.Active())
	assert.Equal(t, time.Minute, c.Remaining())

	t.Run("longer retry-after wins", func(t *testing.T) {
		c.Trip(5 * time.Minute)
		assert.Equal(t, 5*time.Minute, c.Remaining())
	})

	t.Run("shorter trip does not shorten", func(t *testing.T) {
		c.Trip(time.Second)
		assert.Equal(t, 5*time.Minute, c.Remaining())
	})

	t.Run("expires", func(t *testing.T) {
		now = now.Add(6 * time.Minute)
		assert.False(t, c.Active())
		assert.Zero(t, c.Remaining())
	})

	t.Run("reset", func(t *testing.T) {
		c.Trip(0)
		assert.True(t, c.Active())
		c.Reset()
		assert.False(t, c.Active())
	})
}

func TestCooldown_ZeroDurationNeverTrips(t *testing.T) {
	c := NewCooldown(0)
	c.Trip(0)
	assert.False(t, c.Active())
}
