package retry

import "time"

// Policy presets for common operation classes. These differ only in attempt
// counts, delay bounds, and retryable-condition sets.
var (
	// StoragePolicy covers database reads and writes: fast, tight retries.
	StoragePolicy = Policy{
		MaxRetries:      3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{408, 429, 500, 502, 503, 504},
		RetryableErrors: defaultRetryableErrors,
	}

	// ExternalPolicy covers outbound third-party API calls.
	ExternalPolicy = Policy{
		MaxRetries:      4,
		InitialDelay:    1 * time.Second,
		MaxDelay:        30 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{408, 429, 500, 502, 503, 504},
		RetryableErrors: defaultRetryableErrors,
	}

	// EmailPolicy is looser: mail relays throttle aggressively but recover.
	EmailPolicy = Policy{
		MaxRetries:      5,
		InitialDelay:    2 * time.Second,
		MaxDelay:        60 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{421, 429, 450, 451, 452, 500, 502, 503, 504},
		RetryableErrors: defaultRetryableErrors,
	}

	// UploadPolicy covers file uploads, where large payloads make long retry
	// tails expensive.
	UploadPolicy = Policy{
		MaxRetries:      3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        15 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{408, 429, 500, 502, 503, 504},
		RetryableErrors: defaultRetryableErrors,
	}

	// PaymentPolicy retries sparingly: a repeated charge is worse than a
	// failed one, so only unambiguous transport-level failures are retried.
	PaymentPolicy = Policy{
		MaxRetries:      2,
		InitialDelay:    1 * time.Second,
		MaxDelay:        10 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{408, 429, 503},
		RetryableErrors: []string{"connection reset", "connection refused", "no such host"},
	}

	// SearchPolicy covers search queries, which are cheap to re-issue but
	// not worth waiting long for.
	SearchPolicy = Policy{
		MaxRetries:      2,
		InitialDelay:    300 * time.Millisecond,
		MaxDelay:        3 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
		RetryableStatus: []int{408, 429, 500, 502, 503, 504},
		RetryableErrors: defaultRetryableErrors,
	}
)
