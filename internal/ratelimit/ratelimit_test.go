package ratelimit

import (
	"context"
	"testing"
)

func TestLimiter_BurstThenThrottle(t *testing.T) {
	// 600/min = 10/s with a burst of 60.
	l := New(600)

	allowed := 0
	for i := 0; i < 100; i++ {
		if l.Allow() {
			allowed++
		}
	}
	if allowed < 55 || allowed > 61 {
		t.Errorf("allowed = %d, want roughly the burst of 60", allowed)
	}
}

func TestLimiter_MinimumBurst(t *testing.T) {
	l := New(1) // burst must round up to at least 1

	if !l.Allow() {
		t.Error("first request must pass")
	}
	if l.Allow() {
		t.Error("second immediate request must be throttled")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := New(1)
	l.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected error from cancelled wait")
	}
}
