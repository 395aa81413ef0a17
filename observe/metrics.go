package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricFetchTotal     = "h5.fetch.total"
	MetricFetchErrors    = "h5.fetch.errors"
	MetricFetchCancelled = "h5.fetch.cancelled"
	MetricFetchDuration  = "h5.fetch.duration_ms"
)

// Metrics records fetch metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records one fetch with its duration and outcome.
	RecordFetch(ctx context.Context, meta FetchMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	cancelledCount metric.Int64Counter
	durationHist   metric.Float64Histogram
}

// NewMetrics registers the fetch instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricFetchTotal,
		metric.WithDescription("Total number of backend fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricFetchErrors,
		metric.WithDescription("Backend fetches that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	cancelledCount, err := meter.Int64Counter(
		MetricFetchCancelled,
		metric.WithDescription("Backend fetches cancelled while in flight"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricFetchDuration,
		metric.WithDescription("Backend fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:     totalCount,
		errorCount:     errorCount,
		cancelledCount: cancelledCount,
		durationHist:   durationHist,
	}, nil
}

// RecordFetch records metrics for one fetch. Paths are left out of the
// attributes to keep cardinality bounded.
func (m *metricsImpl) RecordFetch(ctx context.Context, meta FetchMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("h5.store", meta.Store)}
	if meta.Source != "" {
		attrs = append(attrs, attribute.String("h5.source", meta.Source))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)

	switch {
	case err == nil:
	case IsCancelled(err):
		m.cancelledCount.Add(ctx, 1, opt)
	default:
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordFetch(ctx context.Context, meta FetchMeta, duration time.Duration, err error) {
}
