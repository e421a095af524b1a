package sla

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity ranks how urgently a breached threshold needs attention.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Violation kinds, one per threshold limit.
const (
	ViolationSuccessRate = "success_rate"
	ViolationAvgDuration = "avg_duration"
	ViolationP95Duration = "p95_duration"
	ViolationP99Duration = "p99_duration"
)

// Threshold declares per-endpoint service-level limits. Zero-valued limits
// are not evaluated. Read-only at evaluation time.
type Threshold struct {
	Endpoint       string
	MinSuccessRate float64
	MaxAvgDuration time.Duration
	MaxP95Duration time.Duration
	MaxP99Duration time.Duration
	Window         time.Duration
	Severity       Severity
}

// Violation is one breached limit. Durations are reported in milliseconds.
type Violation struct {
	Kind     string  `json:"kind"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Message  string  `json:"message"`
}

// ComplianceResult is the stateless outcome of one SLA check. It is
// recomputed fresh on every evaluation; there is no persisted "currently
// violating" flag.
type ComplianceResult struct {
	Endpoint   string      `json:"endpoint"`
	Compliant  bool        `json:"compliant"`
	Severity   Severity    `json:"severity"`
	Violations []Violation `json:"violations,omitempty"`
	Metrics    Metrics     `json:"metrics"`
}

// Alert is handed to alert sinks for each non-compliant endpoint found by a
// sweep. Delivery is the sink's responsibility.
type Alert struct {
	ID         string      `json:"id"`
	Endpoint   string      `json:"endpoint"`
	Severity   Severity    `json:"severity"`
	Violations []Violation `json:"violations"`
	Metrics    Metrics     `json:"metrics"`
	FiredAt    time.Time   `json:"fired_at"`
}

// CheckSLA evaluates an endpoint's windowed metrics against a threshold.
// An endpoint with no traffic in the window is compliant: no violations are
// raised against silence.
func (e *Engine) CheckSLA(endpoint string, t Threshold) ComplianceResult {
	window := t.Window
	if window <= 0 {
		window = DefaultWindow
	}

	m := e.GetMetrics(endpoint, window)
	result := ComplianceResult{
		Endpoint:  m.Endpoint,
		Compliant: true,
		Severity:  t.Severity,
		Metrics:   m,
	}

	if m.Requests == 0 {
		return result
	}

	if t.MinSuccessRate > 0 && m.SuccessRate < t.MinSuccessRate {
		result.Violations = append(result.Violations, Violation{
			Kind:     ViolationSuccessRate,
			Expected: t.MinSuccessRate,
			Actual:   m.SuccessRate,
			Message: fmt.Sprintf("success rate %.2f%% below minimum %.2f%%",
				m.SuccessRate, t.MinSuccessRate),
		})
	}
	if t.MaxAvgDuration > 0 && m.AvgDuration > t.MaxAvgDuration {
		result.Violations = append(result.Violations, durationViolation(
			ViolationAvgDuration, "average", t.MaxAvgDuration, m.AvgDuration))
	}
	if t.MaxP95Duration > 0 && m.P95 > t.MaxP95Duration {
		result.Violations = append(result.Violations, durationViolation(
			ViolationP95Duration, "p95", t.MaxP95Duration, m.P95))
	}
	if t.MaxP99Duration > 0 && m.P99 > t.MaxP99Duration {
		result.Violations = append(result.Violations, durationViolation(
			ViolationP99Duration, "p99", t.MaxP99Duration, m.P99))
	}

	result.Compliant = len(result.Violations) == 0
	return result
}

func durationViolation(kind, label string, expected, actual time.Duration) Violation {
	return Violation{
		Kind:     kind,
		Expected: toMillis(expected),
		Actual:   toMillis(actual),
		Message: fmt.Sprintf("%s duration %s exceeds maximum %s",
			label, actual.Round(time.Millisecond), expected),
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Sweep evaluates every threshold independently and invokes the alert
// callback once per non-compliant endpoint. All results, compliant or not,
// are returned for the caller's records.
func (e *Engine) Sweep(thresholds []Threshold, alert func(Alert)) []ComplianceResult {
	results := make([]ComplianceResult, 0, len(thresholds))
	for _, t := range thresholds {
		result := e.CheckSLA(t.Endpoint, t)
		results = append(results, result)

		if result.Compliant || alert == nil {
			continue
		}
		alert(Alert{
			ID:         uuid.NewString(),
			Endpoint:   result.Endpoint,
			Severity:   result.Severity,
			Violations: result.Violations,
			Metrics:    result.Metrics,
			FiredAt:    e.now(),
		})
	}
	return results
}
