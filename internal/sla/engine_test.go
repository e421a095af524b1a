package sla

import (
	"testing"
	"time"
)

// fakeClock lets tests control record timestamps.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine() (*Engine, *fakeClock) {
	e := NewEngine()
	clock := newFakeClock()
	e.now = clock.now
	return e, clock
}

func TestGetMetricsZeroActivity(t *testing.T) {
	e, _ := newTestEngine()

	m := e.GetMetrics("/idle/endpoint", 15*time.Minute)
	if m.Requests != 0 {
		t.Errorf("Requests = %d, want 0", m.Requests)
	}
	if m.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100 (no evidence of failure)", m.SuccessRate)
	}
}

func TestGetMetricsPercentiles(t *testing.T) {
	e, _ := newTestEngine()

	durations := []time.Duration{100, 100, 100, 100, 100, 100, 100, 100, 100, 1000}
	for _, d := range durations {
		e.Record("/patients", d*time.Millisecond, 200, true)
	}

	m := e.GetMetrics("/patients", 15*time.Minute)
	if m.Requests != 10 {
		t.Fatalf("Requests = %d, want 10", m.Requests)
	}
	// Nearest rank, n=10: p50 -> index ceil(0.50*10)-1 = 4, p99 -> index 9.
	if m.P50 != 100*time.Millisecond {
		t.Errorf("P50 = %v, want 100ms", m.P50)
	}
	if m.P99 != 1000*time.Millisecond {
		t.Errorf("P99 = %v, want 1000ms", m.P99)
	}
	if m.MinDuration != 100*time.Millisecond || m.MaxDuration != 1000*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 100ms/1000ms", m.MinDuration, m.MaxDuration)
	}
	if want := 190 * time.Millisecond; m.AvgDuration != want {
		t.Errorf("AvgDuration = %v, want %v", m.AvgDuration, want)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	sorted := []time.Duration{10, 20, 30, 40, 50}

	tests := []struct {
		p        float64
		expected time.Duration
	}{
		{50, 30},  // ceil(2.5)-1 = 2
		{95, 50},  // ceil(4.75)-1 = 4
		{99, 50},  // ceil(4.95)-1 = 4
		{100, 50}, // ceil(5)-1 = 4
		{1, 10},   // ceil(0.05)-1 = 0 after clamp
	}

	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.expected {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.expected)
		}
	}

	if got := percentile(nil, 95); got != 0 {
		t.Errorf("percentile(empty) = %v, want 0", got)
	}
}

func TestGetMetricsSuccessRateAndStatusCodes(t *testing.T) {
	e, _ := newTestEngine()

	for i := 0; i < 90; i++ {
		e.Record("/billing/1", 50*time.Millisecond, 200, true)
	}
	for i := 0; i < 10; i++ {
		e.Record("/billing/2", 80*time.Millisecond, 502, false)
	}

	m := e.GetMetrics("/billing/999", 15*time.Minute)
	if m.Requests != 100 {
		t.Fatalf("Requests = %d, want 100 (ids share a bucket)", m.Requests)
	}
	if m.SuccessRate != 90 {
		t.Errorf("SuccessRate = %v, want 90", m.SuccessRate)
	}
	if m.StatusCodes[200] != 90 || m.StatusCodes[502] != 10 {
		t.Errorf("StatusCodes = %v, want 90x200 and 10x502", m.StatusCodes)
	}
}

func TestWindowFiltering(t *testing.T) {
	e, clock := newTestEngine()

	e.Record("/reports", 100*time.Millisecond, 200, true)
	clock.advance(10 * time.Minute)
	e.Record("/reports", 200*time.Millisecond, 200, true)
	clock.advance(2 * time.Minute)

	// 5m window sees only the second record.
	m := e.GetMetrics("/reports", 5*time.Minute)
	if m.Requests != 1 {
		t.Errorf("5m Requests = %d, want 1", m.Requests)
	}
	if m.AvgDuration != 200*time.Millisecond {
		t.Errorf("5m AvgDuration = %v, want 200ms", m.AvgDuration)
	}

	m = e.GetMetrics("/reports", 15*time.Minute)
	if m.Requests != 2 {
		t.Errorf("15m Requests = %d, want 2", m.Requests)
	}
}

func TestWindowIncludesLowerBound(t *testing.T) {
	e, clock := newTestEngine()

	e.Record("/reports", 100*time.Millisecond, 200, true)
	clock.advance(5 * time.Minute)

	// A record exactly window-old sits on the inclusive lower bound.
	m := e.GetMetrics("/reports", 5*time.Minute)
	if m.Requests != 1 {
		t.Errorf("Requests = %d, want 1 (record at the window boundary is included)", m.Requests)
	}

	clock.advance(time.Nanosecond)
	m = e.GetMetrics("/reports", 5*time.Minute)
	if m.Requests != 0 {
		t.Errorf("Requests = %d, want 0 (record now older than the window)", m.Requests)
	}
}

func TestPruningDiscardsBeyondRetention(t *testing.T) {
	e, clock := newTestEngine()

	e.Record("/archive", 100*time.Millisecond, 200, true)
	clock.advance(25 * time.Hour)
	// The next write to the bucket prunes the stale record.
	e.Record("/archive", 75*time.Millisecond, 200, true)

	// Even a 24h query can never see the pruned record again.
	m := e.GetMetrics("/archive", 24*time.Hour)
	if m.Requests != 1 {
		t.Errorf("Requests = %d, want 1 (25h-old record pruned)", m.Requests)
	}
	if m.AvgDuration != 75*time.Millisecond {
		t.Errorf("AvgDuration = %v, want 75ms", m.AvgDuration)
	}
}

func TestGetAllMetricsSortedByVolume(t *testing.T) {
	e, _ := newTestEngine()

	for i := 0; i < 3; i++ {
		e.Record("/low", 10*time.Millisecond, 200, true)
	}
	for i := 0; i < 7; i++ {
		e.Record("/high", 10*time.Millisecond, 200, true)
	}
	// No traffic endpoints are excluded entirely.

	all := e.GetAllMetrics(15 * time.Minute)
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].Endpoint != "/high" || all[0].Requests != 7 {
		t.Errorf("first = %s/%d, want /high/7", all[0].Endpoint, all[0].Requests)
	}
	if all[1].Endpoint != "/low" {
		t.Errorf("second = %s, want /low", all[1].Endpoint)
	}
}

func TestConcurrentRecordAndQuery(t *testing.T) {
	e, _ := newTestEngine()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			e.Record("/payments/12", time.Duration(i)*time.Microsecond, 200, true)
		}
	}()

	for i := 0; i < 200; i++ {
		_ = e.GetMetrics("/payments/12", 15*time.Minute)
		_ = e.GetAllMetrics(15 * time.Minute)
	}
	<-done

	m := e.GetMetrics("/payments/34", 15*time.Minute)
	if m.Requests != 500 {
		t.Errorf("Requests = %d, want 500", m.Requests)
	}
}
