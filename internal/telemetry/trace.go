// Package telemetry wraps OpenTelemetry tracing for CLI commands and engine
// operations.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "forecast")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartEngineSpan creates a span for an expensive numerical operation such
// as a convolution forecast or a density product.
func StartEngineSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("engine")
	ctx, span := tracer.Start(ctx, "engine."+operation)

	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("component", "engine"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status. Coded
// errors also set an error_code attribute.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
	if code, ok := errors.CodeOf(err); ok {
		span.SetAttributes(attribute.String("error_code", string(code)))
	}
}
