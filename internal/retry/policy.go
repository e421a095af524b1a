// Package retry provides a generic retry executor with exponential backoff,
// jitter, and retryability classification for transient failures.
package retry

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Policy defines retry behavior for one class of operations.
// A Policy is a value and is never mutated after construction.
type Policy struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	Jitter          bool
	RetryableStatus []int
	RetryableErrors []string
}

// DefaultPolicy provides sensible defaults for most operations.
var DefaultPolicy = Policy{
	MaxRetries:      3,
	InitialDelay:    1 * time.Second,
	MaxDelay:        30 * time.Second,
	Multiplier:      2.0,
	Jitter:          true,
	RetryableStatus: []int{408, 429, 500, 502, 503, 504},
	RetryableErrors: defaultRetryableErrors,
}

// Default error categories, including the generic transport markers. A
// policy that sets its own RetryableErrors replaces this list entirely, so
// narrow presets stay narrow.
var defaultRetryableErrors = []string{
	"connection reset",
	"timeout",
	"no such host",
	"connection refused",
	"network",
	"connection",
	"socket",
}

// withDefaults fills zero fields so a partially specified policy behaves.
func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultPolicy.MaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = DefaultPolicy.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	if p.Multiplier <= 0 {
		p.Multiplier = DefaultPolicy.Multiplier
	}
	if p.RetryableStatus == nil {
		p.RetryableStatus = DefaultPolicy.RetryableStatus
	}
	if p.RetryableErrors == nil {
		p.RetryableErrors = DefaultPolicy.RetryableErrors
	}
	return p
}

// RetryableStatusCode reports whether a status code is configured as transient.
func (p Policy) RetryableStatusCode(code int) bool {
	return slices.Contains(p.RetryableStatus, code)
}

// RetryableError classifies an error as transient or fatal. An error that
// exposes a status code is judged by the status-code set; otherwise the
// message is matched against the policy's category substrings.
func (p Policy) RetryableError(err error) bool {
	if err == nil {
		return false
	}

	if code, ok := StatusOf(err); ok {
		return p.RetryableStatusCode(code)
	}

	msg := strings.ToLower(err.Error())
	for _, cat := range p.RetryableErrors {
		if strings.Contains(msg, cat) {
			return true
		}
	}
	return false
}

// StatusCoder is implemented by results and errors that carry an HTTP-like
// status code.
type StatusCoder interface {
	StatusCode() int
}

// StatusError is an error annotated with a status code, e.g. from an
// upstream HTTP response.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "status " + strconv.Itoa(e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode implements StatusCoder.
func (e *StatusError) StatusCode() int { return e.Code }

// StatusOf extracts a status code from an error, if it carries one.
func StatusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}
