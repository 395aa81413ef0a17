package provider

import (
	"context"

	"github.com/jonwraymond/h5core/cache"
)

type progressKey struct{}

// withProgress attaches a progress callback for the source to report to.
func withProgress(ctx context.Context, fn cache.ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress reports the completion ratio of the fetch running under
// ctx, in [0, 1]. Sources call it while streaming a value; it is a no-op
// outside a cache fetch.
func ReportProgress(ctx context.Context, ratio float64) {
	if fn, ok := ctx.Value(progressKey{}).(cache.ProgressFunc); ok {
		fn(min(max(ratio, 0), 1))
	}
}
