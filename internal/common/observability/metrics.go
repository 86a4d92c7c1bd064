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
)

// Observability owns the OpenTelemetry meter provider and the two
// cross-worker instruments every job stream reports into. A zero value is a
// disabled instance: all record calls become no-ops, because metrics must
// never stop the workers.
type Observability struct {
	provider  *metric.MeterProvider
	processed otelmetric.Int64Counter
	duration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("prometheus exporter unavailable, metrics disabled: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	o := &Observability{provider: provider}

	o.processed, err = meter.Int64Counter(
		"worker.jobs.processed",
		otelmetric.WithDescription("Jobs handled, by task type"),
	)
	if err != nil {
		log.Printf("register jobs.processed counter: %v", err)
	}

	o.duration, err = meter.Float64Histogram(
		"worker.jobs.duration",
		otelmetric.WithDescription("Job handling time, by task type"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		log.Printf("register jobs.duration histogram: %v", err)
	}

	return o
}

// RecordJobProcessed counts one handled job for the given task type.
func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o.processed == nil {
		return
	}
	o.processed.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task.type", taskType),
	))
}

// RecordJobDuration records wall-clock handling time for the given task type.
func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration) {
	if o.duration == nil {
		return
	}
	o.duration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task.type", taskType),
	))
}

// Shutdown flushes pending metric state. Called once on manager exit.
func (o *Observability) Shutdown() {
	if o.provider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o.provider.Shutdown(ctx)
}
