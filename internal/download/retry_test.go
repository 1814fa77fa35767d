package download

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return nil
	}
}

func TestRunExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 4, InitialDelay: time.Second, Cap: 300 * time.Second}
	calls := 0
	attempts, err := p.Run(context.Background(), noSleep(nil), func(context.Context, int) error {
		calls++
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if calls != 4 || attempts != 4 {
		t.Fatalf("expected exactly 4 attempts, got calls=%d attempts=%d", calls, attempts)
	}
}

func TestRunSucceedsAfterKFailures(t *testing.T) {
	p := Policy{MaxAttempts: 5, InitialDelay: time.Second, Cap: 300 * time.Second}
	calls := 0
	attempts, err := p.Run(context.Background(), noSleep(nil), func(_ context.Context, n int) error {
		calls++
		if n <= 2 {
			return fmt.Errorf("transient %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("expected success on attempt 3, got attempts=%d calls=%d", attempts, calls)
	}
}

func TestDelayDoublingWithCap(t *testing.T) {
	p := Policy{MaxAttempts: 12, InitialDelay: 5 * time.Second, Cap: 300 * time.Second}
	// delay after attempt i is min(cap, initial*2^(i-1)); that wait precedes
	// attempt i+1.
	for i := 1; i < p.MaxAttempts; i++ {
		want := 5 * time.Second << (i - 1)
		if want > p.Cap {
			want = p.Cap
		}
		if got := p.DelayBeforeAttempt(i + 1); got != want {
			t.Fatalf("delay before attempt %d: got %v want %v", i+1, got, want)
		}
	}
	if got := p.DelayBeforeAttempt(1); got != 0 {
		t.Fatalf("attempt 1 must run immediately, got %v", got)
	}
}

func TestRunObservedDelaySequence(t *testing.T) {
	p := Policy{MaxAttempts: 6, InitialDelay: 10 * time.Second, Cap: 40 * time.Second}
	var delays []time.Duration
	_, err := p.Run(context.Background(), noSleep(&delays), func(context.Context, int) error {
		return errors.New("always")
	})
	if err == nil {
		t.Fatalf("expected failure")
	}
	want := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second, 40 * time.Second, 40 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays: got %v want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay %d: got %v want %v", i, delays[i], want[i])
		}
	}
}

func TestRunStopsOnCanceledSleep(t *testing.T) {
	p := Policy{MaxAttempts: 3, InitialDelay: time.Second, Cap: 300 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, nil, func(context.Context, int) error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
