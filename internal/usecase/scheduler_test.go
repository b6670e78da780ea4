package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSchedulerNext(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, "23:00", "UTC", zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	before := time.Date(2025, 3, 1, 22, 59, 0, 0, time.UTC)
	if got := s.Next(before); !got.Equal(time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("same-day trigger expected, got %v", got)
	}
	exactly := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	if got := s.Next(exactly); !got.Equal(time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("next-day trigger expected, got %v", got)
	}
}

func TestSchedulerNextFollowsTimezone(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(nil, "09:30", "Asia/Tokyo", zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	// 00:00 UTC is 09:00 in Tokyo, so the trigger is 30 minutes later.
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := s.Next(from); !got.Equal(time.Date(2025, 3, 1, 0, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected 00:30 UTC, got %v", got.UTC())
	}
}

func TestSchedulerStartReturnsOnCancel(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(CycleRunnerFunc(func(context.Context) error { return nil }), "03:00", "UTC", zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}

func TestNewSchedulerRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewScheduler(nil, "25:99", "UTC", zap.NewNop()); err == nil {
		t.Fatal("expected invalid time error")
	}
	if _, err := NewScheduler(nil, "23:00", "Mars/Olympus", zap.NewNop()); err == nil {
		t.Fatal("expected invalid timezone error")
	}
}

func TestSchedulerTriggerSwallowsRejection(t *testing.T) {
	t.Parallel()

	calls := 0
	runner := CycleRunnerFunc(func(context.Context) error {
		calls++
		return ErrCycleInProgress
	})
	s, err := NewScheduler(runner, "00:00", "UTC", zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Trigger(context.Background())
	if calls != 1 {
		t.Fatalf("expected one run attempt, got %d", calls)
	}
}
