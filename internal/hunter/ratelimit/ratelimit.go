// Package ratelimit paces outbound provider requests process-wide.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter grants one turn per interval to all callers combined. Share a
// single instance between every hunt that spends the same provider quota.
//
// The interval is measured from the moment the previous turn was actually
// granted, not from when it was scheduled, so a caller that wakes late or
// works between turns never shortens the next gap.
type Limiter struct {
	interval time.Duration
	lim      *rate.Limiter

	// turn serializes Wait; holding it owns last.
	turn chan struct{}
	last time.Time

	// onGrant, when set, is called with each grant time while the turn is
	// still held.
	onGrant func(time.Time)
}

// New returns a limiter that spaces turns at least interval apart. An
// interval of zero or less never blocks.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{
		interval: interval,
		lim:      rate.NewLimiter(rate.Every(interval), 1),
		turn:     make(chan struct{}, 1),
	}
}

// Wait blocks until the caller's turn. If ctx ends first Wait returns the
// context error and no turn is consumed.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 {
		return l.lim.Wait(ctx)
	}

	select {
	case l.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.turn }()
	if err := ctx.Err(); err != nil {
		return err
	}

	r := l.lim.Reserve()
	delay := r.Delay()
	if !l.last.IsZero() {
		if rest := l.interval - time.Since(l.last); rest > delay {
			delay = rest
		}
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}

	l.last = time.Now()
	if l.onGrant != nil {
		l.onGrant(l.last)
	}
	return nil
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}
