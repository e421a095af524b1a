package retry

import (
	"context"
	"fmt"
	"time"
)

// Operation is a retryable unit of work. The attempt number (starting at 1)
// is passed in for instrumentation.
type Operation[T any] func(ctx context.Context, attempt int) (T, error)

// ExhaustedError is the terminal failure after all attempts are used
// without success.
type ExhaustedError struct {
	Attempts   int
	LastStatus int
	Err        error
}

func (e *ExhaustedError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("retries exhausted after %d attempts (last status %d): %v",
			e.Attempts, e.LastStatus, e.Err)
	}
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do executes op under the policy, re-running it with backoff while the
// failure is classified as transient. Transient failures are absorbed
// silently; only the final outcome surfaces. Fatal failures propagate
// immediately without further attempts.
//
// A successful call whose result carries a retryable status code is also
// re-run while attempts remain; once they are spent, the last result is
// returned as-is.
func Do[T any](ctx context.Context, policy Policy, op Operation[T]) (T, error) {
	var zero T

	policy = policy.withDefaults()
	total := policy.MaxRetries + 1
	lastStatus := 0

	for attempt := 1; attempt <= total; attempt++ {
		result, err := op(ctx, attempt)

		if err == nil {
			code, coded := statusOfResult(result)
			if !coded || !policy.RetryableStatusCode(code) || attempt == total {
				return result, nil
			}
			lastStatus = code
			if werr := wait(ctx, policy.Delay(attempt)); werr != nil {
				return zero, werr
			}
			continue
		}

		if code, ok := StatusOf(err); ok {
			lastStatus = code
		}

		if !policy.RetryableError(err) {
			return zero, err
		}

		if attempt == total {
			return zero, &ExhaustedError{Attempts: attempt, LastStatus: lastStatus, Err: err}
		}

		if werr := wait(ctx, policy.Delay(attempt)); werr != nil {
			return zero, werr
		}
	}

	// Unreachable: the loop always returns.
	return zero, &ExhaustedError{Attempts: total, LastStatus: lastStatus}
}

func statusOfResult(result any) (int, bool) {
	if sc, ok := result.(StatusCoder); ok {
		return sc.StatusCode(), true
	}
	return 0, false
}

// wait sleeps for the delay without blocking the runtime, honoring
// cancellation.
func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

type attemptKey struct{}

// AttemptFromContext returns the current attempt number injected by Wrap,
// or 1 when the operation is running outside a retry sequence.
func AttemptFromContext(ctx context.Context) int {
	if n, ok := ctx.Value(attemptKey{}).(int); ok {
		return n
	}
	return 1
}

// Wrap adapts a single-shot operation into a retry-governed one without
// changing its signature. The attempt index is made available to the
// operation through its context for logging.
func Wrap[T any](policy Policy, op func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, policy, func(ctx context.Context, attempt int) (T, error) {
			return op(context.WithValue(ctx, attemptKey{}, attempt))
		})
	}
}
