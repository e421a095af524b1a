package retry

import (
	"context"
	"errors"
	"sync"
)

// DefaultBatchConcurrency caps simultaneous in-flight operations when no
// explicit limit is configured.
const DefaultBatchConcurrency = 5

// ErrSkipped marks operations that were never attempted because an earlier
// group failed with StopOnFirstError set.
var ErrSkipped = errors.New("skipped: batch stopped on earlier failure")

// BatchOptions controls batch execution.
type BatchOptions struct {
	Concurrency      int
	StopOnFirstError bool
}

// BatchFailure records one failed operation with its position in the input.
type BatchFailure struct {
	Index int
	Err   error
}

// BatchResult partitions the outcome of a batch run. Every input operation
// is accounted for exactly once: SuccessCount+FailureCount equals the input
// length.
type BatchResult[T any] struct {
	Successes    []T
	Failures     []BatchFailure
	SuccessCount int
	FailureCount int
}

// DoBatch runs independent operations in fixed-size concurrent groups, each
// retried under the policy. Per-operation failures are collected rather than
// aborting the batch; with StopOnFirstError set, the first unrecoverable
// failure finishes the in-flight group, skips the remaining groups, and is
// returned as the batch error.
func DoBatch[T any](ctx context.Context, policy Policy, ops []Operation[T], opts BatchOptions) (BatchResult[T], error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	results := make([]T, len(ops))
	errs := make([]error, len(ops))
	next := 0

	for next < len(ops) {
		end := min(next+limit, len(ops))

		var wg sync.WaitGroup
		for i := next; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = Do(ctx, policy, ops[i])
			}(i)
		}
		wg.Wait()

		if opts.StopOnFirstError {
			if first := firstError(errs[next:end], next); first != nil {
				for i := end; i < len(ops); i++ {
					errs[i] = ErrSkipped
				}
				return collect(results, errs, len(ops)), first.Err
			}
		}

		next = end
	}

	return collect(results, errs, len(ops)), nil
}

func firstError(errs []error, offset int) *BatchFailure {
	for i, err := range errs {
		if err != nil {
			return &BatchFailure{Index: offset + i, Err: err}
		}
	}
	return nil
}

func collect[T any](results []T, errs []error, n int) BatchResult[T] {
	out := BatchResult[T]{}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			out.Failures = append(out.Failures, BatchFailure{Index: i, Err: errs[i]})
			continue
		}
		out.Successes = append(out.Successes, results[i])
	}
	out.SuccessCount = len(out.Successes)
	out.FailureCount = len(out.Failures)
	return out
}
