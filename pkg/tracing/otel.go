// Package tracing wires OpenTelemetry spans around scan/process/transmit
// operations. It is ambient instrumentation, not a discovery entity: the
// collector engine, processor pipeline, and transmitter each start one span
// per unit of work and record success/failure on it.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// EndSpan closes a span, recording err on it if non-nil.
type EndSpan func(err error)

// Tracer starts spans for the calling service's instrumentation name.
type Tracer struct {
	tracer oteltrace.Tracer
}

// NewTracer builds a Tracer from the given provider and instrumentation
// name. A nil provider falls back to the global provider, and a nil global
// provider yields a Tracer whose spans are no-ops.
func NewTracer(provider oteltrace.TracerProvider, instrumentation string) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	if strings.TrimSpace(instrumentation) == "" {
		instrumentation = "discovery-pipeline"
	}
	return &Tracer{tracer: provider.Tracer(instrumentation)}
}

// NewGlobalTracer returns a Tracer using the global provider with the given
// instrumentation name.
func NewGlobalTracer(instrumentation string) *Tracer {
	return NewTracer(nil, instrumentation)
}

// StartSpan starts a span named name with attrs, returning the span-carrying
// context and a function to close it.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, EndSpan) {
	if t == nil || t.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := t.tracer.Start(ctx, name, oteltrace.WithAttributes(convertAttrs(attrs)...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

func convertAttrs(attrs map[string]string) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	result := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		result = append(result, attribute.String(key, v))
	}
	return result
}
