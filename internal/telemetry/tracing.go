package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/crillab/gophergap/gap"
)

const tracerName = "github.com/crillab/gophergap"

// SetupTracing installs the global tracer provider.
// exporter is either "none" or "stdout"; with "stdout", spans are written to w as they end.
// The returned function flushes and releases the provider.
func SetupTracing(exporter string, w io.Writer) (shutdown func(context.Context) error, err error) {
	switch exporter {
	case "", "none":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("could not create stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exp),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "gophergap"))),
		)
		otel.SetTracerProvider(tp)
		return tp.Shutdown, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}
}

// StartSolve starts a span for the search of the given problem file.
func StartSolve(ctx context.Context, runID, file string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "solve", trace.WithAttributes(
		attribute.String("gophergap.run_id", runID),
		attribute.String("gophergap.file", file),
	))
}

// EndSolve annotates the span with the outcome of the search, then ends it.
func EndSolve(span trace.Span, stats gap.Stats, status gap.Status, solutions int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return
	}
	span.SetAttributes(
		attribute.String("gophergap.status", status.String()),
		attribute.Int("gophergap.expanded", stats.NbExpanded),
		attribute.Int("gophergap.generated", stats.NbGenerated),
		attribute.Int("gophergap.duplicates", stats.NbDuplicates),
		attribute.Int("gophergap.solutions", solutions),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}
