package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/database"

// QueryTracer wraps substrate calls in client spans and reports slow ones.
// The zero value traces without slow-call logging.
type QueryTracer struct {
	// System is the db.system attribute, e.g. "redis" or "postgresql".
	System string
	// SlowThreshold enables warn logs for calls at or above it when > 0.
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

// Start begins a span named "<system>.<operation>". Call the returned
// function with the operation's error once it completes:
//
//	ctx, end := t.Start(ctx, "Get", "GET session:abc:tronix365_cart")
//	defer func() { end(err) }()
func (t QueryTracer) Start(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, t.System+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.System),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if t.SlowThreshold <= 0 || t.Logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= t.SlowThreshold {
			attrs := []any{
				slog.String("system", t.System),
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			t.Logger.WarnContext(ctx, "slow state store call", attrs...)
		}
	}
}
