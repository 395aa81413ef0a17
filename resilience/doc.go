// Package resilience guards calls to remote data sources.
//
// A remote h5grove server may be slow, flaky or briefly down. The patterns
// here keep those failures from stalling the caches above them:
//
//   - Retry re-runs transient failures with exponential, linear or constant
//     backoff. Cancellation and permanent errors are never retried.
//   - CircuitBreaker stops calling a source after repeated transient
//     failures and probes it again after a cool-down.
//   - RateLimiter paces requests with a token bucket.
//   - Timeout bounds a single attempt.
//
// Executor composes them. Do adapts an Executor to calls returning a value:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 50})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	meta, err := resilience.Do(ctx, exec, func(ctx context.Context) (*Meta, error) {
//	    return client.meta(ctx, path)
//	})
//
// Sources mark errors that retrying cannot fix (a missing path, a malformed
// request) with Permanent.
package resilience
