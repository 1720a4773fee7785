package pokeapi

import (
	"context"
	"math"
	"time"
)

// backoff returns the delay before retry number attempt (1-based)
func (c RetryConfig) backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return c.BaseDelay
	}

	// baseDelay * (multiplier ^ (attempt - 1))
	multiplier := math.Pow(c.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(c.BaseDelay) * multiplier)

	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}

	return delay
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
