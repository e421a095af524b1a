// Package sla tracks per-endpoint request outcomes in rolling windows and
// evaluates them against service-level thresholds.
package sla

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Retention is the maximum window any query can cover. Records older than
// this are pruned on write and unrecoverable afterwards.
const Retention = 24 * time.Hour

// DefaultWindow is used when a query or threshold names no window.
const DefaultWindow = 15 * time.Minute

// ParseWindow resolves a named evaluation window. An empty name yields the
// default window.
func ParseWindow(name string) (time.Duration, error) {
	switch name {
	case "":
		return DefaultWindow, nil
	case "1m":
		return 1 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "1h":
		return 1 * time.Hour, nil
	case "24h":
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(name)
	if err != nil {
		return 0, fmt.Errorf("unknown window %q", name)
	}
	return d, nil
}

// Record is one completed request observation.
type Record struct {
	Timestamp  time.Time
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// Metrics is a windowed snapshot for one endpoint.
type Metrics struct {
	Endpoint    string        `json:"endpoint"`
	Window      time.Duration `json:"window"`
	Requests    int           `json:"requests"`
	SuccessRate float64       `json:"success_rate"`
	AvgDuration time.Duration `json:"avg_duration"`
	P50         time.Duration `json:"p50"`
	P95         time.Duration `json:"p95"`
	P99         time.Duration `json:"p99"`
	MinDuration time.Duration `json:"min_duration"`
	MaxDuration time.Duration `json:"max_duration"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

// bucket accumulates observations for one normalized endpoint. The record
// list stays ordered by timestamp and is pruned to the retention horizon on
// each write; totals are lifetime counters and are never decremented.
type bucket struct {
	records []Record

	count         int64
	successCount  int64
	failureCount  int64
	totalDuration time.Duration
	minDuration   time.Duration
	maxDuration   time.Duration
	statusCodes   map[int]int64
}

// Engine is the windowed metrics store. One long-lived instance is
// constructed at startup and shared by all request-handling code; all state
// is in-memory and process-lifetime-scoped.
type Engine struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	// now is swappable for tests.
	now func() time.Time
}

// NewEngine creates an empty metrics engine.
func NewEngine() *Engine {
	return &Engine{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Record appends one completed request to the endpoint's bucket, updating
// totals and pruning records past the retention horizon on the same write.
func (e *Engine) Record(endpoint string, duration time.Duration, statusCode int, success bool) {
	key := NormalizeEndpoint(endpoint)
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.buckets[key]
	if !ok {
		b = &bucket{statusCodes: make(map[int]int64)}
		e.buckets[key] = b
	}

	b.records = append(b.records, Record{
		Timestamp:  now,
		Duration:   duration,
		StatusCode: statusCode,
		Success:    success,
	})

	b.count++
	if success {
		b.successCount++
	} else {
		b.failureCount++
	}
	b.totalDuration += duration
	if b.count == 1 || duration < b.minDuration {
		b.minDuration = duration
	}
	if duration > b.maxDuration {
		b.maxDuration = duration
	}
	b.statusCodes[statusCode]++

	b.prune(now.Add(-Retention))
}

// prune drops records at or before the cutoff. Appends are in timestamp
// order, so only a prefix is ever dropped.
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.records) && !b.records[i].Timestamp.After(cutoff) {
		i++
	}
	if i == 0 {
		return
	}
	kept := len(b.records) - i
	if kept > 0 && cap(b.records) > 2*kept {
		fresh := make([]Record, kept)
		copy(fresh, b.records[i:])
		b.records = fresh
		return
	}
	b.records = b.records[i:]
}

// GetMetrics returns the windowed snapshot for an endpoint. A window with no
// records yields zero activity and a 100% success rate: absence of evidence
// is not treated as failure, so idle endpoints never alarm.
func (e *Engine) GetMetrics(endpoint string, window time.Duration) Metrics {
	if window <= 0 {
		window = DefaultWindow
	}
	if window > Retention {
		window = Retention
	}
	key := NormalizeEndpoint(endpoint)
	cutoff := e.now().Add(-window)

	e.mu.RLock()
	b := e.buckets[key]
	var windowed []Record
	if b != nil {
		// The window is inclusive at its lower bound.
		for i := len(b.records) - 1; i >= 0; i-- {
			if b.records[i].Timestamp.Before(cutoff) {
				break
			}
			windowed = append(windowed, b.records[i])
		}
	}
	e.mu.RUnlock()

	return computeMetrics(key, window, windowed)
}

// GetAllMetrics returns the windowed snapshot for every endpoint with
// traffic in the window, sorted by request volume descending.
func (e *Engine) GetAllMetrics(window time.Duration) []Metrics {
	e.mu.RLock()
	keys := make([]string, 0, len(e.buckets))
	for key := range e.buckets {
		keys = append(keys, key)
	}
	e.mu.RUnlock()

	out := make([]Metrics, 0, len(keys))
	for _, key := range keys {
		m := e.GetMetrics(key, window)
		if m.Requests > 0 {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Requests != out[j].Requests {
			return out[i].Requests > out[j].Requests
		}
		return out[i].Endpoint < out[j].Endpoint
	})
	return out
}

// Endpoints returns the bucket keys currently tracked.
func (e *Engine) Endpoints() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]string, 0, len(e.buckets))
	for key := range e.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func computeMetrics(endpoint string, window time.Duration, records []Record) Metrics {
	m := Metrics{
		Endpoint:    endpoint,
		Window:      window,
		Requests:    len(records),
		SuccessRate: 100,
		StatusCodes: make(map[int]int64),
	}
	if len(records) == 0 {
		return m
	}

	durations := make([]time.Duration, len(records))
	successes := 0
	var total time.Duration
	m.MinDuration = records[0].Duration
	for i, r := range records {
		durations[i] = r.Duration
		total += r.Duration
		if r.Success {
			successes++
		}
		if r.Duration < m.MinDuration {
			m.MinDuration = r.Duration
		}
		if r.Duration > m.MaxDuration {
			m.MaxDuration = r.Duration
		}
		m.StatusCodes[r.StatusCode]++
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	m.SuccessRate = float64(successes) / float64(len(records)) * 100
	m.AvgDuration = total / time.Duration(len(records))
	m.P50 = percentile(durations, 50)
	m.P95 = percentile(durations, 95)
	m.P99 = percentile(durations, 99)
	return m
}

// percentile uses the nearest-rank method on an ascending-sorted slice:
// index ceil(p/100*n)-1, clamped at 0.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
