package scheduler

import (
	"context"
	"testing"
)

func TestStart_InvalidSchedule(t *testing.T) {
	s := New("not a schedule", func(context.Context) error { return nil }, nil)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	s := New("* * * * *", func(context.Context) error { return nil }, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// A second Start is a no-op, not an error.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	s.Stop()
	s.Stop()
}

func TestRunSync_SuppressesOverlap(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	runs := 0

	s := New("* * * * *", func(context.Context) error {
		runs++
		close(started)
		<-block
		return nil
	}, nil)

	go s.runSync(context.Background())
	<-started

	// Second tick while the first is still in flight must be skipped.
	s.runSync(context.Background())
	close(block)

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}
