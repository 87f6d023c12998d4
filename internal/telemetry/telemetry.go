// Package telemetry wires the optional stdout span exporter. Tracing is off
// unless TRENDLINE_TRACE is set, in which case spans are pretty-printed to
// stderr so they stay out of CSV/JSON output on stdout.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/vigneshwaranr/highcharts-trendline/internal/config"
)

const tracerName = "github.com/vigneshwaranr/highcharts-trendline"

// Init installs the global tracer provider. The returned shutdown func
// flushes pending spans; it is safe to call even when tracing is disabled.
func Init(ctx context.Context) (func(context.Context) error, error) {
	if !config.TraceEnabled {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Tracer returns the module tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
