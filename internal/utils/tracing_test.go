package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestDisabledTracingIsNoop(t *testing.T) {
	tp, shutdown := NewTracerProvider(false, zerolog.Nop())
	_, ok := tp.(noop.TracerProvider)
	assert.True(t, ok)
	assert.NoError(t, shutdown(context.Background()))
}

func TestLogExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "json")

	tp, shutdown := newTracerProvider(sdktrace.WithSyncer(&logExporter{logger: logger}))
	_, span := tp.Tracer("test").Start(context.Background(), "engine.record_progress")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"span":"engine.record_progress"`)
	assert.Contains(t, buf.String(), "Span finished")
}
