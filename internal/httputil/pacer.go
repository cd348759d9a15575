// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces successive calls at least Interval apart. The first call
// proceeds immediately. It is a proactive measure against throttling, not a
// retry mechanism.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer returns a Pacer with the given minimum spacing. An interval of
// zero or less disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Interval returns the configured minimum spacing.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
