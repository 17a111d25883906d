package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/riskibarqy/playhub-league/internal/usecase")

// traceOp opens a child span for one use-case operation when the caller is
// traced. finish records err, tagged with its error kind, and ends the span.
func traceOp(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, func(error) {}
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			kind := errorKind(err)
			if kind == "" {
				kind = "internal"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, kind)
			span.SetAttributes(attribute.String("error.kind", kind))
		}
		span.End()
	}
}
