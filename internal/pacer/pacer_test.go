package pacer

import (
	"context"
	"testing"
	"time"
)

func TestWait_EnforcesMinimumInterval(t *testing.T) {
	const interval = 50 * time.Millisecond

	p := New(interval)
	ctx := context.Background()

	var starts []time.Time
	for i := 0; i < 4; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		starts = append(starts, time.Now())
	}

	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		// Allow a small scheduling tolerance below the nominal interval.
		if gap < interval-5*time.Millisecond {
			t.Errorf("requests %d and %d only %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestWait_ZeroIntervalDoesNotBlock(t *testing.T) {
	p := New(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unpaced waits took %v", elapsed)
	}
}

func TestBackoff(t *testing.T) {
	base := 2 * time.Second
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}

	for attempt, expected := range want {
		if got := Backoff(base, attempt); got != expected {
			t.Errorf("Backoff(%v, %d) = %v, want %v", base, attempt, got, expected)
		}
	}
}

func TestSleep_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, 10*time.Second)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly on cancellation")
	}
}

func TestRetryAfter(t *testing.T) {
	fallback := 4 * time.Second

	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", fallback},
		{"7", 7 * time.Second},
		{"0", 0},
		{"-3", fallback},
		{"Wed, 21 Oct 2015 07:28:00 GMT", fallback},
	}

	for _, tt := range tests {
		if got := RetryAfter(tt.header, fallback); got != tt.want {
			t.Errorf("RetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
