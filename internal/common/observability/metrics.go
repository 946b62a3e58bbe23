// Package observability provides the OpenTelemetry tracer and meter used by the ranking pipeline.
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	stageDuration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	tracerProvider := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tracerProvider)

	obs := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stageDuration, _ := meter.Float64Histogram(
		"triage.stage.duration",
		otelmetric.WithDescription("Duration of each ranking pipeline stage"),
		otelmetric.WithUnit("ms"),
	)

	obs.meterProvider = provider
	obs.meter = meter
	obs.stageDuration = stageDuration
	return obs
}

// StartSpan opens a span named after a pipeline stage. The returned func ends the span
// and records the stage duration.
func (o *Observability) StartSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func()) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("doctor-ranking")
	}
	start := time.Now()
	ctx, span := tracer.Start(ctx, stage, trace.WithAttributes(attrs...))
	return ctx, func() {
		span.End()
		if o.stageDuration != nil {
			o.stageDuration.Record(ctx, float64(time.Since(start).Milliseconds()), otelmetric.WithAttributes(
				attribute.String("stage", stage),
			))
		}
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
}
