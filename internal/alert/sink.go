// Package alert fans compliance alerts out to configured delivery sinks.
package alert

import (
	"context"
	"log/slog"

	"github.com/vietddude/pulse/internal/sla"
)

// Sink delivers one alert to a destination. Implementations must be safe
// for concurrent use.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, a sla.Alert) error
}

// LogSink writes alerts to the structured log. It is always present, so a
// deployment without Redis or Postgres still surfaces violations.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(_ context.Context, a sla.Alert) error {
	for _, v := range a.Violations {
		slog.Warn("SLA violation",
			"alert_id", a.ID,
			"endpoint", a.Endpoint,
			"severity", a.Severity,
			"kind", v.Kind,
			"expected", v.Expected,
			"actual", v.Actual,
			"requests", a.Metrics.Requests,
		)
	}
	return nil
}
