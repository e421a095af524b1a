package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoBatchCollectsAllOutcomes(t *testing.T) {
	ops := make([]Operation[int], 5)
	for i := range ops {
		i := i
		ops[i] = func(ctx context.Context, attempt int) (int, error) {
			if i == 2 {
				return 0, &StatusError{Code: 400, Err: errors.New("always fatal")}
			}
			return i * 10, nil
		}
	}

	result, err := DoBatch(context.Background(), fastPolicy(2), ops, BatchOptions{})
	if err != nil {
		t.Fatalf("DoBatch returned error without StopOnFirstError: %v", err)
	}

	if result.SuccessCount+result.FailureCount != 5 {
		t.Errorf("success+failure = %d, want 5", result.SuccessCount+result.FailureCount)
	}
	if result.SuccessCount != 4 {
		t.Errorf("SuccessCount = %d, want 4", result.SuccessCount)
	}
	if len(result.Failures) != 1 || result.Failures[0].Index != 2 {
		t.Errorf("Failures = %+v, want single failure at index 2", result.Failures)
	}
}

func TestDoBatchStopOnFirstError(t *testing.T) {
	var started atomic.Int32
	ops := make([]Operation[int], 6)
	for i := range ops {
		i := i
		ops[i] = func(ctx context.Context, attempt int) (int, error) {
			started.Add(1)
			if i == 0 {
				return 0, &StatusError{Code: 422, Err: errors.New("validation failed")}
			}
			return i, nil
		}
	}

	result, err := DoBatch(context.Background(), fastPolicy(2), ops,
		BatchOptions{Concurrency: 2, StopOnFirstError: true})

	if err == nil {
		t.Fatal("expected batch error")
	}
	// Only the first group of 2 runs; the rest are skipped.
	if got := started.Load(); got != 2 {
		t.Errorf("started = %d, want 2", got)
	}
	if result.SuccessCount+result.FailureCount != 6 {
		t.Errorf("success+failure = %d, want 6 (skipped ops still accounted for)",
			result.SuccessCount+result.FailureCount)
	}

	skipped := 0
	for _, f := range result.Failures {
		if errors.Is(f.Err, ErrSkipped) {
			skipped++
		}
	}
	if skipped != 4 {
		t.Errorf("skipped = %d, want 4", skipped)
	}
}

func TestDoBatchBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	ops := make([]Operation[int], 12)
	for i := range ops {
		ops[i] = func(ctx context.Context, attempt int) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return 0, nil
		}
	}

	_, err := DoBatch(context.Background(), fastPolicy(1), ops, BatchOptions{Concurrency: 3})
	if err != nil {
		t.Fatalf("DoBatch failed: %v", err)
	}

	if peak.Load() > 3 {
		t.Errorf("peak in-flight = %d, want <= 3", peak.Load())
	}
}

func TestDoBatchRetriesIndependently(t *testing.T) {
	var flaky atomic.Int32
	ops := []Operation[string]{
		func(ctx context.Context, attempt int) (string, error) {
			if flaky.Add(1) < 3 {
				return "", errors.New("timeout")
			}
			return "recovered", nil
		},
		func(ctx context.Context, attempt int) (string, error) {
			return "steady", nil
		},
	}

	result, err := DoBatch(context.Background(), fastPolicy(3), ops, BatchOptions{})
	if err != nil {
		t.Fatalf("DoBatch failed: %v", err)
	}
	if result.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", result.SuccessCount)
	}
}
