package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to capacity then refill", func(t *testing.T) {
		clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rl := newRateLimiter(6) // one token every 10s
		rl.now = func() time.Time { return clock }
		rl.last = clock

		for i := 0; i < 6; i++ {
			require.Zero(t, rl.reserve())
		}
		assert.Equal(t, 10*time.Second, rl.reserve())

		clock = clock.Add(5 * time.Second)
		assert.Equal(t, 5*time.Second, rl.reserve())

		clock = clock.Add(5 * time.Second)
		assert.Zero(t, rl.reserve())
	})

	t.Run("refill is capped", func(t *testing.T) {
		clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rl := newRateLimiter(2)
		rl.now = func() time.Time { return clock }
		rl.last = clock

		clock = clock.Add(time.Hour)
		require.Zero(t, rl.reserve())
		require.Zero(t, rl.reserve())
		assert.Positive(t, rl.reserve())
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
