package track

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation name for deploytrack tracing.
const tracerName = "github.com/MyCarrier-DevOps/deploytrack/track"

// tracer returns the global OpenTelemetry tracer for this package.
// If no tracer provider is configured, this returns a no-op tracer.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan creates a span for a tracker operation, tagged with the
// execution id so spans from one execution can be correlated.
// The caller is responsible for ending the returned span.
//
//nolint:spancheck // caller ends the span; this is the API contract
func StartSpan(ctx context.Context, operationName, executionID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, operationName,
		trace.WithAttributes(
			attribute.String("deploytrack.execution_id", executionID),
		),
	)
}
