package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/tailscale/hujson"

	"github.com/jonwraymond/h5core/observe"
	"github.com/jonwraymond/h5core/resilience"
)

// Source kinds.
const (
	SourceMock    = "mock"
	SourceH5grove = "h5grove"
)

// ValidSourceKinds lists the accepted values of SourceConfig.Kind.
var ValidSourceKinds = []string{SourceMock, SourceH5grove}

// Config holds every setting of an h5view process.
type Config struct {
	Source  SourceConfig   `json:"source"`
	Cache   CacheConfig    `json:"cache"`
	Retry   RetryConfig    `json:"retry"`
	Observe observe.Config `json:"observe"`
}

// SourceConfig selects the data source.
type SourceConfig struct {
	Kind string `json:"kind"` // mock|h5grove
	URL  string `json:"url,omitempty"`
	File string `json:"file,omitempty"`

	// JSONOnly disables binary value transfers.
	JSONOnly bool `json:"jsonOnly,omitempty"`

	// SlowThreshold degrades the source health check when reading the root
	// takes longer. Zero disables it.
	SlowThreshold Duration `json:"slowThreshold,omitempty"`
}

// CacheConfig bounds the work a session runs against the source.
type CacheConfig struct {
	// MaxConcurrentFetches bounds parallel value fetches; zero is unbounded.
	MaxConcurrentFetches int `json:"maxConcurrentFetches"`
	// WalkConcurrency bounds parallel group fetches during a tree walk.
	WalkConcurrency int `json:"walkConcurrency"`
}

// RetryConfig configures the resilience stack wrapped around remote
// requests.
type RetryConfig struct {
	MaxAttempts  int      `json:"maxAttempts"`
	InitialDelay Duration `json:"initialDelay"`
	MaxDelay     Duration `json:"maxDelay"`
	Backoff      string   `json:"backoff"` // exponential|linear|constant
	Jitter       bool     `json:"jitter"`

	// Timeout bounds each request attempt.
	Timeout Duration `json:"timeout"`

	// MaxFailures opens the circuit breaker; zero disables the breaker.
	MaxFailures  int      `json:"maxFailures"`
	ResetTimeout Duration `json:"resetTimeout"`

	// Rate limits requests per second; zero disables the limiter.
	Rate    float64  `json:"rate"`
	Burst   int      `json:"burst"`
	MaxWait Duration `json:"maxWait"`
}

// Default returns the configuration used when no file is given: the
// built-in sample source, JSON logs at info level and no telemetry export.
func Default() Config {
	return Config{
		Source: SourceConfig{Kind: SourceMock},
		Cache: CacheConfig{
			MaxConcurrentFetches: 4,
			WalkConcurrency:      8,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: Duration(100 * time.Millisecond),
			MaxDelay:     Duration(5 * time.Second),
			Backoff:      resilience.BackoffExponential.String(),
			Jitter:       true,
			Timeout:      Duration(30 * time.Second),
			MaxFailures:  5,
			ResetTimeout: Duration(30 * time.Second),
		},
		Observe: observe.Config{
			ServiceName: "h5view",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load reads the JSONC file at path over Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes JSONC data over Default and validates the result. Unknown
// fields are rejected. ${VAR} references in the source url and file are
// expanded from the environment.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrParse, err)
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := cfg.Source.expand(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidSourceKinds, c.Source.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidSourceKind, c.Source.Kind)
	}
	if c.Source.Kind == SourceH5grove {
		if c.Source.URL == "" {
			return ErrMissingURL
		}
		if c.Source.File == "" {
			return ErrMissingFile
		}
	}

	if c.Cache.MaxConcurrentFetches < 0 {
		return fmt.Errorf("%w: cache.maxConcurrentFetches %d", ErrInvalidValue, c.Cache.MaxConcurrentFetches)
	}
	if c.Cache.WalkConcurrency < 0 {
		return fmt.Errorf("%w: cache.walkConcurrency %d", ErrInvalidValue, c.Cache.WalkConcurrency)
	}

	if err := c.Retry.validate(); err != nil {
		return err
	}
	return c.Observe.Validate()
}

func (r *RetryConfig) validate() error {
	if _, err := resilience.ParseBackoff(r.Backoff); err != nil {
		return fmt.Errorf("%w: retry.backoff: %w", ErrInvalidValue, err)
	}
	if r.MaxAttempts < 0 || r.MaxFailures < 0 || r.Burst < 0 {
		return fmt.Errorf("%w: retry counts must not be negative", ErrInvalidValue)
	}
	if r.Rate < 0 {
		return fmt.Errorf("%w: retry.rate %g", ErrInvalidValue, r.Rate)
	}
	for _, d := range []struct {
		name string
		d    Duration
	}{
		{"initialDelay", r.InitialDelay},
		{"maxDelay", r.MaxDelay},
		{"timeout", r.Timeout},
		{"resetTimeout", r.ResetTimeout},
		{"maxWait", r.MaxWait},
	} {
		if d.d < 0 {
			return fmt.Errorf("%w: retry.%s %s", ErrInvalidValue, d.name, d.d)
		}
	}
	return nil
}

// Executor builds the resilience stack described by r for the source called
// name. onStateChange, when set, observes circuit breaker transitions.
func (r RetryConfig) Executor(name string, onStateChange func(from, to resilience.State)) *resilience.Executor {
	var opts []resilience.ExecutorOption

	if r.MaxFailures > 0 {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:          name,
			MaxFailures:   r.MaxFailures,
			ResetTimeout:  r.ResetTimeout.Std(),
			OnStateChange: onStateChange,
		})))
	}

	if r.MaxAttempts > 1 {
		strategy, _ := resilience.ParseBackoff(r.Backoff)
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  r.MaxAttempts,
			InitialDelay: r.InitialDelay.Std(),
			MaxDelay:     r.MaxDelay.Std(),
			Strategy:     strategy,
			Jitter:       r.Jitter,
		})))
	}

	if r.Rate > 0 {
		opts = append(opts, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:    r.Rate,
			Burst:   r.Burst,
			MaxWait: r.MaxWait.Std(),
		})))
	}

	if r.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(r.Timeout.Std()))
	}

	return resilience.NewExecutor(opts...)
}
