package resilience

import (
	"context"
	"time"
)

// Executor composes resilience patterns around a call.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. Without options it runs calls directly.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retries to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter paces every attempt with rl.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithTimeout bounds each attempt to timeout.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	return e.circuitBreaker
}

// layer wraps one attempt of an operation.
type layer func(ctx context.Context, op func(context.Context) error) error

// layers lists the configured patterns, outermost first.
func (e *Executor) layers() []layer {
	var ls []layer
	if e.circuitBreaker != nil {
		ls = append(ls, e.circuitBreaker.Execute)
	}
	if e.retry != nil {
		ls = append(ls, e.retry.Execute)
	}
	if e.rateLimiter != nil {
		ls = append(ls, e.rateLimiter.Execute)
	}
	if e.timeout != nil {
		ls = append(ls, e.timeout.Execute)
	}
	return ls
}

// Execute runs op through the configured patterns, outermost first:
//
//  1. Circuit breaker: rejects the whole call while the source is down.
//  2. Retry: re-runs transient failures.
//  3. Rate limiter: takes a token per attempt.
//  4. Timeout: bounds each attempt.
//
// The breaker sees the outcome of the call after retries, so one call
// counts as at most one failure.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}
	ls := e.layers()
	for i := len(ls) - 1; i >= 0; i-- {
		wrap, inner := ls[i], op
		op = func(ctx context.Context) error { return wrap(ctx, inner) }
	}
	return op(ctx)
}

// Do runs op through e and returns its value. A nil e runs op directly.
func Do[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
