package otelhelper

import (
	"github.com/museloop/genflow/pkg/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError records err on the span. Flow errors also carry their kind and reason.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if flowErr, ok := models.AsFlowError(err); ok {
		attrs = append(attrs, attribute.String(ErrorKindKey, string(flowErr.Kind)))

		if flowErr.Reason != "" {
			attrs = append(attrs, attribute.String(ErrorReasonKey, flowErr.Reason))
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}
