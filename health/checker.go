package health

import (
	"context"
	"fmt"
	"time"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works but slowly or partially.
	StatusDegraded
	// StatusUnhealthy indicates the component cannot be used.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Worst returns the more severe of a and b.
func Worst(a, b Status) Status {
	return max(a, b)
}

// Result contains the outcome of a health check.
type Result struct {
	Status  Status
	Message string
	// Details holds checker specific metadata, such as a latency or a
	// circuit state.
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

// Healthy creates a healthy result.
func Healthy(format string, args ...any) Result {
	return Result{Status: StatusHealthy, Message: fmt.Sprintf(format, args...), Timestamp: time.Now()}
}

// Degraded creates a degraded result.
func Degraded(format string, args ...any) Result {
	return Result{Status: StatusDegraded, Message: fmt.Sprintf(format, args...), Timestamp: time.Now()}
}

// Unhealthy creates an unhealthy result carrying err.
func Unhealthy(err error, format string, args ...any) Result {
	return Result{Status: StatusUnhealthy, Message: fmt.Sprintf(format, args...), Error: err, Timestamp: time.Now()}
}

// WithDetails sets the details of a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker is the interface for health checks.
//
// Contract:
// - Concurrency: Check may be called concurrently.
// - Context: Check should return promptly once ctx is done; the aggregator
// reports a timeout otherwise.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a named checker running fn.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string { return f.name }

// Check runs the function.
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
