package download

import (
	"context"
	"fmt"
	"time"
)

// Policy is the retry schedule for transient fetch failures: attempt 1 runs
// immediately, each later attempt waits the current delay first, and the
// delay doubles after every failure up to Cap. The delay is never reset
// within one Run.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Cap          time.Duration
}

// PolicyFromConfig builds the schedule from the three download settings.
func PolicyFromConfig(maxAttempts int, initial, cap time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{MaxAttempts: maxAttempts, InitialDelay: initial, Cap: cap}
}

// DelayBeforeAttempt returns the wait applied before the given 1-based
// attempt: zero for attempt 1, min(Cap, InitialDelay*2^(n-2)) afterwards.
func (p Policy) DelayBeforeAttempt(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := p.InitialDelay
	for i := 2; i < attempt; i++ {
		d *= 2
		if d >= p.Cap {
			return p.Cap
		}
	}
	if d > p.Cap {
		return p.Cap
	}
	return d
}

// AttemptFunc performs one fetch attempt. A non-nil error counts as a failed
// attempt; the loop stops on the first nil.
type AttemptFunc func(ctx context.Context, attempt int) error

// Run executes fn under the policy and returns how many attempts were made.
// sleep is injectable for tests; nil means a context-aware timer sleep.
func (p Policy) Run(ctx context.Context, sleep func(context.Context, time.Duration) error, fn AttemptFunc) (int, error) {
	if sleep == nil {
		sleep = sleepCtx
	}
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if d := p.DelayBeforeAttempt(attempt); d > 0 {
			if err := sleep(ctx, d); err != nil {
				return attempt - 1, err
			}
		}
		if err := fn(ctx, attempt); err != nil {
			lastErr = err
			continue
		}
		return attempt, nil
	}
	return p.MaxAttempts, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
