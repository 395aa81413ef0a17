package observe

import (
	"context"
	"time"
)

// Middleware wraps backend fetches with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is passed to the wrapped fetch.
//   - Errors: errors from the wrapped fetch are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from its components. Nil components
// are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Observe runs fn inside a span, then records its metrics and a log line.
// A nil Middleware runs fn unobserved.
func Observe[V any](ctx context.Context, m *Middleware, meta FetchMeta, fn func(context.Context) (V, error)) (V, error) {
	if m == nil {
		return fn(ctx)
	}

	ctx, span := m.tracer.StartSpan(ctx, meta)
	start := time.Now()

	v, err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)

	// record even when the fetch context was cancelled
	rec := context.WithoutCancel(ctx)
	m.metrics.RecordFetch(rec, meta, duration, err)

	log := m.logger.WithFetch(meta)
	fields := []Field{{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000}}
	switch {
	case err == nil:
		log.Debug(rec, "fetch completed", fields...)
	case IsCancelled(err):
		log.Info(rec, "fetch cancelled", fields...)
	default:
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		log.Error(rec, "fetch failed", fields...)
	}

	return v, err
}
