package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestFetchMeta_SpanName(t *testing.T) {
	if got := (FetchMeta{Store: "values"}).SpanName(); got != "h5.fetch.values" {
		t.Errorf("SpanName() = %q, want h5.fetch.values", got)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), FetchMeta{Store: "values", Path: "/d", Selection: "1,:"})
	tr.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "h5.fetch.values" {
		t.Errorf("span name = %q", s.Name())
	}
	if v, _ := spanAttr(s, "h5.path"); v.AsString() != "/d" {
		t.Errorf("h5.path = %q", v.AsString())
	}
	if v, _ := spanAttr(s, "h5.selection"); v.AsString() != "1,:" {
		t.Errorf("h5.selection = %q", v.AsString())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
}

func TestTracer_ErrorStatus(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), FetchMeta{Store: "entities", Path: "/x"})
	tr.EndSpan(span, errors.New("backend down"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "backend down" {
		t.Errorf("status = %+v, want Error(backend down)", s.Status())
	}
	if v, _ := spanAttr(s, "h5.error"); !v.AsBool() {
		t.Error("h5.error should be true")
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestTracer_CancelledIsNotAnError(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), FetchMeta{Store: "values", Path: "/x"})
	tr.EndSpan(span, context.Canceled)

	s := recorder.Ended()[0]
	if s.Status().Code == codes.Error {
		t.Error("cancelled fetch should not set error status")
	}
	if v, ok := spanAttr(s, "h5.cancelled"); !ok || !v.AsBool() {
		t.Error("h5.cancelled should be true")
	}
}

func TestTracer_NoopDoesNotPanic(t *testing.T) {
	tr := newNoopTracer()
	_, span := tr.StartSpan(context.Background(), FetchMeta{Store: "values"})
	tr.EndSpan(span, errors.New("x"))
}
