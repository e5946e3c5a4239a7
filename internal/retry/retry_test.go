package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func always(error) bool { return true }
func never(error) bool  { return false }

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, time.Millisecond, always, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, time.Millisecond, always, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoGivesUpAfterBound(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), 2, time.Millisecond, always, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (1 try + 2 retries)", calls)
	}
}

func TestDoPermanentFailsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, time.Millisecond, never, func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, 2, time.Minute, always, func() error {
		return errors.New("flaky")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
