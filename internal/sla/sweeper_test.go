package sla

import (
	"context"
	"testing"
	"time"
)

func TestSweeperFiresAlerts(t *testing.T) {
	e, _ := newTestEngine()
	for i := 0; i < 10; i++ {
		e.Record("/claims", 10*time.Millisecond, 500, false)
	}

	thresholds := []Threshold{
		{Endpoint: "/claims", MinSuccessRate: 99, Severity: SeverityCritical},
	}

	alerts := make(chan Alert, 1)
	s := NewSweeper(e, thresholds, 5*time.Millisecond, func(a Alert) {
		select {
		case alerts <- a:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Start(ctx)

	select {
	case a := <-alerts:
		if a.Endpoint != "/claims" {
			t.Errorf("endpoint = %q, want /claims", a.Endpoint)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never fired an alert")
	}
}

func TestSweeperNoThresholdsReturns(t *testing.T) {
	e, _ := newTestEngine()
	s := NewSweeper(e, nil, time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper with no thresholds should return immediately")
	}
}
