package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/liamashdown/holderscope/internal/metrics"
)

// Limiter implements a token bucket rate limiter for one upstream source
type Limiter struct {
	source     string
	rate       float64 // tokens per second
	tokens     float64
	maxTokens  float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// New creates a new rate limiter for source with the specified rate (requests per second)
func New(source string, rps float64) *Limiter {
	if rps <= 0 {
		rps = 1.0
	}
	burst := rps
	if burst < 1.0 {
		burst = 1.0
	}
	return &Limiter{
		source:     source,
		rate:       rps,
		tokens:     burst,
		maxTokens:  burst,
		lastUpdate: time.Now(),
	}
}

// Every creates a limiter that admits one request per interval with no burst.
// A non-positive interval yields a limiter that never blocks.
func Every(source string, interval time.Duration) *Limiter {
	if interval <= 0 {
		return nil
	}
	l := New(source, float64(time.Second)/float64(interval))
	l.maxTokens = 1.0
	l.tokens = 1.0
	return l
}

// Source returns the name of the upstream source this limiter paces
func (l *Limiter) Source() string {
	if l == nil {
		return ""
	}
	return l.source
}

// Wait blocks until a token is available or context is cancelled.
// A nil limiter never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}

	start := time.Now()
	defer func() {
		metrics.RecordRateLimitWait(l.source, time.Since(start))
	}()

	for {
		wait, ok := l.reserve()
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// reserve takes a token if one is available, otherwise reports how long
// until the next token accrues
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()

	l.tokens += elapsed * l.rate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastUpdate = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return 0, true
	}

	missing := 1.0 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second)), false
}
