package exchange

import (
	"context"
	"sync"
	"time"
)

// tokenBucket is a simple token-bucket rate limiter guarding the REST API
type tokenBucket struct {
	rate       float64 // tokens per second
	burst      int
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &tokenBucket{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: time.Now(),
	}
}

func (tb *tokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastUpdate).Seconds()

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}

	tb.lastUpdate = now
}

// wait blocks until a token is available or the context is canceled
func (tb *tokenBucket) wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()

		if tb.tokens >= 1.0 {
			tb.tokens -= 1.0
			tb.mu.Unlock()
			return nil
		}

		deficit := 1.0 - tb.tokens
		tb.mu.Unlock()

		delay := time.Duration(deficit / tb.rate * float64(time.Second))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
