// Package server exposes the SLA query surface and health endpoints over
// HTTP, plus the request-recording middleware for the routing layer.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/pulse/internal/sla"
)

// depCheckTimeout bounds each dependency probe in /health/detailed.
const depCheckTimeout = 5 * time.Second

type depCheck struct {
	name  string
	check func(context.Context) error
}

// Server provides HTTP endpoints for SLA monitoring.
type Server struct {
	engine     *sla.Engine
	thresholds []sla.Threshold
	deps       []depCheck
	server     *http.Server
}

// NewServer creates a new ops server.
func NewServer(engine *sla.Engine, thresholds []sla.Threshold, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		engine:     engine,
		thresholds: thresholds,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.HandleFunc("/sla/metrics", s.handleMetrics)
	mux.HandleFunc("/sla/check", s.handleCheck)
	mux.HandleFunc("/sla/endpoints", s.handleEndpoints)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// AddDependency registers a named backing-store check reported by
// /health/detailed. Must be called before Start.
func (s *Server) AddDependency(name string, check func(context.Context) error) {
	s.deps = append(s.deps, depCheck{name: name, check: check})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.engine.Sweep(s.thresholds, nil)

	// Aggregate status (worst case wins)
	status := "healthy"
	for _, res := range results {
		if res.Compliant {
			continue
		}
		if res.Severity == sla.SeverityCritical {
			status = "critical"
			break
		}
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "critical" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	results := s.engine.Sweep(s.thresholds, nil)

	deps := make(map[string]string, len(s.deps))
	for _, d := range s.deps {
		ctx, cancel := context.WithTimeout(r.Context(), depCheckTimeout)
		if err := d.check(ctx); err != nil {
			deps[d.name] = err.Error()
		} else {
			deps[d.name] = "ok"
		}
		cancel()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"results":      results,
		"dependencies": deps,
	})
}

// handleMetrics serves windowed snapshots: all endpoints by default, one
// endpoint when ?endpoint= is given. ?window= accepts the named windows.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	window, err := sla.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if endpoint := r.URL.Query().Get("endpoint"); endpoint != "" {
		json.NewEncoder(w).Encode(s.engine.GetMetrics(endpoint, window))
		return
	}
	json.NewEncoder(w).Encode(s.engine.GetAllMetrics(window))
}

// handleEndpoints lists the normalized endpoint keys currently tracked.
func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Endpoints())
}

// handleCheck runs an on-demand compliance sweep without firing alerts.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	results := s.engine.Sweep(s.thresholds, nil)

	violating := 0
	for _, res := range results {
		if !res.Compliant {
			violating++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"checked":   len(results),
		"violating": violating,
		"results":   results,
	})
}
