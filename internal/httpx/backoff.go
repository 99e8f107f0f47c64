package httpx

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with optional jitter.
type Backoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64

	// rnd returns a value in [0, 1). Tests replace it for determinism.
	rnd func() float64
}

// NewBackoff returns a Backoff initialized with the supplied parameters.
func NewBackoff(base, max time.Duration, jitter float64) *Backoff {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if max <= 0 {
		max = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{
		BaseDelay: base,
		MaxDelay:  max,
		Jitter:    math.Max(0, math.Min(jitter, 1)),
		rnd:       rand.Float64,
	}
}

// ForAttempt returns the delay before retry number attempt (0-indexed).
func (b *Backoff) ForAttempt(attempt int) time.Duration {
	delay := b.BaseDelay
	if attempt > 0 {
		// Cap the shift so large attempts cannot overflow.
		shift := min(attempt, 30)
		delay = time.Duration(float64(b.BaseDelay) * float64(uint64(1)<<uint(shift)))
		if delay <= 0 || delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return b.addJitter(delay)
}

func (b *Backoff) addJitter(delay time.Duration) time.Duration {
	if b.Jitter == 0 || delay <= 0 {
		return delay
	}
	factor := 1 + (b.rnd()*2-1)*b.Jitter
	if factor < 0 {
		factor = 0
	}
	return time.Duration(float64(delay) * factor)
}
