package retry

import (
	"testing"
	"time"
)

func TestDelayWithoutJitter(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.expected {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestDelayNonDecreasing(t *testing.T) {
	p := Policy{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.7,
		Jitter:       false,
	}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		d := p.Delay(attempt)
		if d < prev {
			t.Fatalf("Delay(%d) = %v decreased from %v", attempt, d, prev)
		}
		if d > p.MaxDelay {
			t.Fatalf("Delay(%d) = %v exceeds max %v", attempt, d, p.MaxDelay)
		}
		prev = d
	}
}

func TestDelayJitterBounds(t *testing.T) {
	p := Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}

	// Jitter scales by a uniform factor in [0.5, 1.0).
	for i := 0; i < 1000; i++ {
		d := p.Delay(3) // base 4s
		if d < 2*time.Second || d > 4*time.Second {
			t.Fatalf("jittered Delay(3) = %v outside [2s, 4s]", d)
		}
	}
}
