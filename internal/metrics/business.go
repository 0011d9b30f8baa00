package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records operation counts and durations per domain.
// Domains in use are "vault", "storage", "keys" and "audit".
type BusinessMetrics interface {
	// RecordOperation counts one operation. status is "success", "error" or
	// an operation specific outcome such as "not_found".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the operation duration in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordEnvelope counts one sealed envelope by mode and AEAD.
	RecordEnvelope(ctx context.Context, mode, algorithm string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	envelopes  metric.Int64Counter
}

// NewBusinessMetrics creates the instruments under namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of vault, storage, key and audit operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	// Sealing with ML-KEM and a storage fan-out sit in the low milliseconds;
	// the upper buckets catch provider timeouts.
	durations, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of vault, storage, key and audit operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	envelopes, err := meter.Int64Counter(
		fmt.Sprintf("%s_envelopes_sealed_total", namespace),
		metric.WithDescription("Total number of envelopes sealed, by mode and AEAD"),
		metric.WithUnit("{envelope}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope counter: %w", err)
	}

	return &businessMetrics{operations: operations, durations: durations, envelopes: envelopes}, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordEnvelope(ctx context.Context, mode, algorithm string) {
	b.envelopes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("algorithm", algorithm),
	))
}

// NoOpBusinessMetrics is used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (n *NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (n *NoOpBusinessMetrics) RecordEnvelope(context.Context, string, string) {}
