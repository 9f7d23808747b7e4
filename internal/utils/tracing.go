package utils

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewTracerProvider returns the tracer provider for engine commands and its shutdown func.
// Finished spans are written to the logger at debug level. When tracing is disabled a
// no-op provider is returned.
func NewTracerProvider(enabled bool, logger zerolog.Logger) (trace.TracerProvider, func(context.Context) error) {
	if !enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}
	return newTracerProvider(sdktrace.WithBatcher(&logExporter{logger: logger}))
}

func newTracerProvider(opts ...sdktrace.TracerProviderOption) (trace.TracerProvider, func(context.Context) error) {
	opts = append(opts, sdktrace.WithResource(sdkresource.NewSchemaless(
		attribute.String("service.name", "mediaq"),
	)))
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp, tp.Shutdown
}

// logExporter is a span exporter that logs each span
type logExporter struct {
	logger zerolog.Logger
}

func (e *logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		event := e.logger.Debug().
			Str("span", span.Name()).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Dur("duration", span.EndTime().Sub(span.StartTime())).
			Str("status", span.Status().Code.String())
		for _, attr := range span.Attributes() {
			event = event.Str(string(attr.Key), attr.Value.Emit())
		}
		event.Msg("Span finished")
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error {
	return nil
}
