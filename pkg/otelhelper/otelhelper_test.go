package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetError_FlowErrorAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "flow.invoke", attribute.String(FlowNameKey, "cover-art"))
	SetError(span, models.NewGenerationFailed(models.ReasonTimeout, "deadline exceeded", nil))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	var kind, reason string

	for _, event := range spans[0].Events() {
		if event.Name != "error_occurred" {
			continue
		}

		for _, attr := range event.Attributes {
			switch string(attr.Key) {
			case ErrorKindKey:
				kind = attr.Value.AsString()
			case ErrorReasonKey:
				reason = attr.Value.AsString()
			}
		}
	}

	assert.Equal(t, string(models.ErrorKindGenerationFailed), kind)
	assert.Equal(t, models.ReasonTimeout, reason)
}

func TestSetError_PlainError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "op")
	SetError(span, errors.New("boom"))
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "boom", recorder.Ended()[0].Status().Description)
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(context.Background(), NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
