// Package llm provides chat-completion backends used to generate instruction pairs
package llm

import (
	"context"
	"time"

	perr "codecorpus/internal/platform/errors"

	"golang.org/x/time/rate"
)

// Sampling controls generation for every call of a backend
type Sampling struct {
	Temperature float32
	MaxTokens   int
}

// DefaultSampling matches the generator defaults
var DefaultSampling = Sampling{Temperature: 0.7, MaxTokens: 2000}

// Pacing bounds the request rate and per call latency; no retries are made
type Pacing struct {
	RPS     float64
	Timeout time.Duration
}

func (p Pacing) limiter() *rate.Limiter {
	if p.RPS <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(p.RPS), 1)
}

// wait blocks on the limiter and derives the per call context
func wait(ctx context.Context, l *rate.Limiter, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if err := l.Wait(ctx); err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "llm: rate limiter")
	}
	if timeout <= 0 {
		c, cancel := context.WithCancel(ctx)
		return c, cancel, nil
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	return c, cancel, nil
}
