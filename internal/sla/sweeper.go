package sla

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/pulse/internal/metrics"
)

// Sweeper runs periodic compliance sweeps and forwards alerts.
type Sweeper struct {
	engine     *Engine
	thresholds []Threshold
	interval   time.Duration
	notify     func(Alert)
}

// NewSweeper creates a sweeper. A non-positive interval falls back to one
// minute.
func NewSweeper(engine *Engine, thresholds []Threshold, interval time.Duration, notify func(Alert)) *Sweeper {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &Sweeper{
		engine:     engine,
		thresholds: thresholds,
		interval:   interval,
		notify:     notify,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if len(s.thresholds) == 0 {
		slog.Info("SLA sweeper disabled: no thresholds configured")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	results := s.engine.Sweep(s.thresholds, s.notify)
	metrics.SweepsTotal.Inc()

	violating := 0
	for _, r := range results {
		if r.Compliant {
			continue
		}
		violating++
		for _, v := range r.Violations {
			metrics.SLAViolationsTotal.WithLabelValues(r.Endpoint, v.Kind, string(r.Severity)).Inc()
		}
	}

	if violating > 0 {
		slog.Warn("SLA sweep found violations", "checked", len(results), "violating", violating)
	} else {
		slog.Debug("SLA sweep clean", "checked", len(results))
	}
}
