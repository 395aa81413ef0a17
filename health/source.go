package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/h5core/entity"
	"github.com/jonwraymond/h5core/provider"
	"github.com/jonwraymond/h5core/resilience"
)

// SourceChecker probes a data source by resolving its root group.
type SourceChecker struct {
	name string
	src  provider.DataSource
	slow time.Duration
}

// NewSourceChecker creates a checker for src. Answers slower than slow are
// degraded; zero disables that threshold.
func NewSourceChecker(name string, src provider.DataSource, slow time.Duration) *SourceChecker {
	return &SourceChecker{name: name, src: src, slow: slow}
}

// Name returns the name of this checker.
func (c *SourceChecker) Name() string { return c.name }

// Check fetches "/" from the source, bypassing every cache.
func (c *SourceChecker) Check(ctx context.Context) Result {
	start := time.Now()
	e, err := c.src.FetchEntity(ctx, entity.RootPath)
	latency := time.Since(start)
	if err != nil {
		return Unhealthy(err, "root not readable")
	}

	details := map[string]any{"latency_ms": latency.Milliseconds()}
	if g, ok := e.(*entity.Group); ok {
		details["children"] = len(g.Children)
	}

	if c.slow > 0 && latency > c.slow {
		return Degraded("root read took %s", latency.Round(time.Millisecond)).WithDetails(details)
	}
	return Healthy("root readable").WithDetails(details)
}

// BreakerChecker reports the state of a circuit breaker guarding a source.
type BreakerChecker struct {
	name string
	cb   *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker for cb.
func NewBreakerChecker(name string, cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{name: name, cb: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string { return c.name }

// Check maps closed to healthy, half-open to degraded and open to
// unhealthy.
func (c *BreakerChecker) Check(context.Context) Result {
	stats := c.cb.Stats()
	details := map[string]any{
		"state":    stats.State.String(),
		"failures": stats.Failures,
		"rejected": stats.Rejected,
	}

	switch stats.State {
	case resilience.StateOpen:
		return Unhealthy(fmt.Errorf("%w: %v", ErrCheckFailed, stats.LastFailure), "circuit open").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit probing").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
