package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	t.Run("blocks past the limit", func(t *testing.T) {
		rl := NewFixedWindowLimiter(2, time.Minute)

		for i := 0; i < 2; i++ {
			allowed, _ := rl.Allow("10.0.0.1")
			assert.True(t, allowed)
		}

		allowed, retryAfter := rl.Allow("10.0.0.1")
		assert.False(t, allowed)
		assert.LessOrEqual(t, retryAfter, time.Minute)

		// Other clients are unaffected.
		allowed, _ = rl.Allow("10.0.0.2")
		assert.True(t, allowed)
	})

	t.Run("counters reset after the window", func(t *testing.T) {
		rl := NewFixedWindowLimiter(1, 20*time.Millisecond)

		allowed, _ := rl.Allow("10.0.0.1")
		assert.True(t, allowed)
		allowed, _ = rl.Allow("10.0.0.1")
		assert.False(t, allowed)

		time.Sleep(30 * time.Millisecond)

		allowed, _ = rl.Allow("10.0.0.1")
		assert.True(t, allowed)
	})
}
