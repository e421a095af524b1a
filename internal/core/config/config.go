package config

import (
	"fmt"
	"time"

	redisclient "github.com/vietddude/pulse/internal/infra/redis"
	"github.com/vietddude/pulse/internal/infra/storage/postgres"
	"github.com/vietddude/pulse/internal/sla"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
	SLA      SLAConfig          `yaml:"sla"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SLAConfig holds compliance sweep settings. Durations and windows are
// strings ("15m", "800ms") because yaml.v2 does not decode time.Duration
// text; Resolve converts them.
type SLAConfig struct {
	SweepInterval string            `yaml:"sweep_interval"`
	Thresholds    []ThresholdConfig `yaml:"thresholds"`
}

// ThresholdConfig declares one endpoint's service-level limits.
type ThresholdConfig struct {
	Endpoint       string  `yaml:"endpoint"`
	MinSuccessRate float64 `yaml:"min_success_rate"`
	MaxAvgDuration string  `yaml:"max_avg_duration"`
	MaxP95Duration string  `yaml:"max_p95_duration"`
	MaxP99Duration string  `yaml:"max_p99_duration"`
	Window         string  `yaml:"window"`
	Severity       string  `yaml:"severity"`
}

// Resolve converts the raw SLA section into engine types.
func (c SLAConfig) Resolve() (time.Duration, []sla.Threshold, error) {
	interval := 1 * time.Minute
	if c.SweepInterval != "" {
		var err error
		interval, err = time.ParseDuration(c.SweepInterval)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid sweep_interval: %w", err)
		}
	}

	thresholds := make([]sla.Threshold, 0, len(c.Thresholds))
	for _, tc := range c.Thresholds {
		t, err := tc.Resolve()
		if err != nil {
			return 0, nil, fmt.Errorf("threshold %q: %w", tc.Endpoint, err)
		}
		thresholds = append(thresholds, t)
	}
	return interval, thresholds, nil
}

// Resolve converts one threshold entry into its engine type.
func (tc ThresholdConfig) Resolve() (sla.Threshold, error) {
	t := sla.Threshold{
		Endpoint:       tc.Endpoint,
		MinSuccessRate: tc.MinSuccessRate,
		Severity:       sla.Severity(tc.Severity),
	}
	if tc.Endpoint == "" {
		return t, fmt.Errorf("endpoint is required")
	}
	if t.Severity == "" {
		t.Severity = sla.SeverityWarning
	}

	var err error
	if t.MaxAvgDuration, err = parseOptionalDuration(tc.MaxAvgDuration); err != nil {
		return t, fmt.Errorf("invalid max_avg_duration: %w", err)
	}
	if t.MaxP95Duration, err = parseOptionalDuration(tc.MaxP95Duration); err != nil {
		return t, fmt.Errorf("invalid max_p95_duration: %w", err)
	}
	if t.MaxP99Duration, err = parseOptionalDuration(tc.MaxP99Duration); err != nil {
		return t, fmt.Errorf("invalid max_p99_duration: %w", err)
	}
	if t.Window, err = sla.ParseWindow(tc.Window); err != nil {
		return t, err
	}
	return t, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
