// Package health reports whether the pieces a viewer depends on are usable:
// the data source answers, its circuit breaker is closed, and cached values
// have not exhausted memory.
//
// A Checker reports a Result with a Status of Healthy, Degraded or
// Unhealthy. An Aggregator runs several checkers under a shared timeout and
// folds their results into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewSourceChecker("source", src, time.Second))
//	agg.Register(health.NewBreakerChecker("breaker", cb))
//	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{MaxAlloc: 2 << 30}))
//
//	report := agg.Report(ctx)
//	if report.Status != health.StatusHealthy {
//	    fmt.Println(report)
//	}
//
// RegisterHandlers exposes the same report over HTTP for long running
// processes.
package health
