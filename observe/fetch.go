package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
)

// FetchMeta describes one backend fetch for telemetry purposes.
type FetchMeta struct {
	Store     string // cache issuing the fetch: entities, values or attrs (required)
	Path      string // entity path
	Selection string // value selection, empty for a whole dataset
	Source    string // backend name (optional)
}

// SpanName returns the span name for this fetch.
// Format: h5.fetch.<store>
func (m FetchMeta) SpanName() string {
	return "h5.fetch." + m.Store
}

func (m FetchMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("h5.store", m.Store),
		attribute.String("h5.path", m.Path),
	}
	if m.Selection != "" {
		attrs = append(attrs, attribute.String("h5.selection", m.Selection))
	}
	if m.Source != "" {
		attrs = append(attrs, attribute.String("h5.source", m.Source))
	}
	return attrs
}

// IsCancelled reports whether err ends a fetch that was cancelled rather
// than failed.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
