package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/pulse/internal/metrics"
	"github.com/vietddude/pulse/internal/retry"
	"github.com/vietddude/pulse/internal/sla"
)

// Dispatcher fans one alert out to every sink, retrying transient delivery
// failures. A sink that keeps failing is logged and skipped; it never blocks
// the other sinks.
type Dispatcher struct {
	sinks   []Sink
	policy  retry.Policy
	timeout time.Duration
}

// NewDispatcher creates a dispatcher delivering through the given retry
// policy.
func NewDispatcher(sinks []Sink, policy retry.Policy) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		policy:  policy,
		timeout: 30 * time.Second,
	}
}

// Dispatch delivers the alert to all sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, a sla.Alert) {
	for _, sink := range d.sinks {
		d.deliver(ctx, sink, a)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, a sla.Alert) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := retry.Do(ctx, d.policy, func(ctx context.Context, attempt int) (struct{}, error) {
		if attempt > 1 {
			slog.Debug("Retrying alert delivery", "sink", sink.Name(), "alert_id", a.ID, "attempt", attempt)
		}
		return struct{}{}, sink.Deliver(ctx, a)
	})

	if err != nil {
		metrics.AlertDeliveriesTotal.WithLabelValues(sink.Name(), "error").Inc()
		slog.Error("Alert delivery failed", "sink", sink.Name(), "alert_id", a.ID, "error", err)
		return
	}
	metrics.AlertDeliveriesTotal.WithLabelValues(sink.Name(), "ok").Inc()
}
