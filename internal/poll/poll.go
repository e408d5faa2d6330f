// Copyright © 2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package poll paces the readers that watch firmware memory for change.
// There's no interrupt for new data so readers sleep between polls and
// between retries of structures that failed validation.
package poll

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
)

const DefaultInterval = 100 * time.Millisecond

// Policy is the wait between polls. It's safe for one goroutine; give
// each reader its own Policy.
type Policy struct {
	Backoff backoff.Backoff

	// Sleep is time based unless replaced, e.g. in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Fixed waits d between every poll.
func Fixed(d time.Duration) *Policy {
	if d <= 0 {
		d = DefaultInterval
	}
	return &Policy{
		Backoff: backoff.Backoff{
			Min:    d,
			Max:    d,
			Factor: 1,
		},
	}
}

// Exponential doubles the wait from min to max until Reset.
func Exponential(min, max time.Duration) *Policy {
	return &Policy{
		Backoff: backoff.Backoff{
			Min:    min,
			Max:    max,
			Factor: 2,
		},
	}
}

// Wait for the next interval or until the context is done.
func (p *Policy) Wait(ctx context.Context) error {
	d := p.Backoff.Duration()
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Reset the policy after progress.
func (p *Policy) Reset() { p.Backoff.Reset() }

// Sleep for d unless the context is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Counter is a Sleep replacement that doesn't wait; it counts calls and
// stops after Limit, if non-zero, with context.Canceled.
type Counter struct {
	N, Limit  int
	Durations []time.Duration
}

func (c *Counter) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.N++
	c.Durations = append(c.Durations, d)
	if c.Limit > 0 && c.N >= c.Limit {
		return context.Canceled
	}
	return nil
}

// Policy returns a fixed interval policy that sleeps with the counter.
func (c *Counter) Policy(d time.Duration) *Policy {
	p := Fixed(d)
	p.Sleep = c.Sleep
	return p
}
