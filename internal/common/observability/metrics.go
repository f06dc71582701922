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

// Observability carries the manager-level throughput and latency
// instruments. The per-job wrapper in the worker manager records here
// for every job regardless of outcome; handler-level outcome counters
// (completed, failed, per error code) live in internal/common/metrics.
type Observability struct {
	meterProvider *metric.MeterProvider
	jobsProcessed otelmetric.Int64Counter
	jobsPanicked  otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
}

// New wires the OTel meter through the Prometheus exporter so these
// instruments surface on the same /metrics endpoint as the promauto
// ones. A failed exporter logs and leaves a disarmed instance whose
// Record methods do nothing.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("observability disabled, prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	o := &Observability{meterProvider: provider}
	o.jobsProcessed, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Jobs a worker finished, successfully or not"),
	)
	o.jobsPanicked, _ = meter.Int64Counter(
		"jobs.panicked",
		otelmetric.WithDescription("Jobs whose handler panicked and was recovered"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Wall-clock job handling time"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// RecordJobProcessed counts one finished job for the task type.
func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o.jobsProcessed != nil {
		o.jobsProcessed.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

// RecordJobPanicked counts one recovered handler panic.
func (o *Observability) RecordJobPanicked(ctx context.Context, taskType string) {
	if o.jobsPanicked != nil {
		o.jobsPanicked.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, taskType string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
