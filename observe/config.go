package observe

import (
	"fmt"
	"slices"

	"github.com/jonwraymond/h5core/observe/exporters"
)

// Exporter and level names accepted by Validate. The empty string selects
// the default of each subsystem.
var (
	ValidTracingExporters = []string{"otlp", "stdout", "none", ""}
	ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	ValidLogLevels        = append(levelNames[:len(levelNames):len(levelNames)], "")
)

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string        `json:"serviceName"`
	Version     string        `json:"version,omitempty"`
	Tracing     TracingConfig `json:"tracing"`
	Metrics     MetricsConfig `json:"metrics"`
	Logging     LoggingConfig `json:"logging"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `json:"enabled"`
	Exporter  string  `json:"exporter"`  // otlp|stdout|none
	SamplePct float64 `json:"samplePct"` // 0.0-1.0
	Endpoint  string  `json:"endpoint,omitempty"`
	Insecure  bool    `json:"insecure,omitempty"`
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Exporter string `json:"exporter"` // otlp|prometheus|stdout|none
	Endpoint string `json:"endpoint,omitempty"`
	Insecure bool   `json:"insecure,omitempty"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"` // debug|info|warn|error
}

// Validate validates the configuration. Settings of disabled subsystems
// are not checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if c.Tracing.Enabled {
		if !slices.Contains(ValidTracingExporters, c.Tracing.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1 {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}

	if c.Metrics.Enabled && !slices.Contains(ValidMetricsExporters, c.Metrics.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}

	if c.Logging.Enabled && !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

func exporterOptions(endpoint string, insecure bool, o observerOptions) []exporters.Option {
	opts := []exporters.Option{exporters.WithWriter(o.logWriter)}
	if endpoint != "" {
		opts = append(opts, exporters.WithEndpoint(endpoint, insecure))
	}
	return opts
}
