package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// StateObserver supplies point-in-time readings for the vault gauges.
// Nil functions are skipped.
type StateObserver struct {
	ProvidersAvailable func() int
	Degraded           func() bool
	KeyVersion         func() uint
	AuditEvents        func() int
}

// RegisterStateGauges registers observable gauges that sample obs on every
// collection. Unregister the returned registration on shutdown.
func RegisterStateGauges(
	meterProvider metric.MeterProvider,
	namespace string,
	obs StateObserver,
) (metric.Registration, error) {
	meter := meterProvider.Meter(namespace)

	providers, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_storage_providers_available", namespace),
		metric.WithDescription("Storage providers that answered the last probe"),
		metric.WithUnit("{provider}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create providers gauge: %w", err)
	}

	degraded, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_storage_degraded", namespace),
		metric.WithDescription("1 when no storage provider is available"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create degraded gauge: %w", err)
	}

	keyVersion, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_root_key_version", namespace),
		metric.WithDescription("Version of the active root key"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key version gauge: %w", err)
	}

	auditEvents, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_audit_events", namespace),
		metric.WithDescription("Events held in the audit ring buffer"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit events gauge: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		if obs.ProvidersAvailable != nil {
			o.ObserveInt64(providers, int64(obs.ProvidersAvailable()))
		}
		if obs.Degraded != nil {
			var v int64
			if obs.Degraded() {
				v = 1
			}
			o.ObserveInt64(degraded, v)
		}
		if obs.KeyVersion != nil {
			o.ObserveInt64(keyVersion, int64(obs.KeyVersion()))
		}
		if obs.AuditEvents != nil {
			o.ObserveInt64(auditEvents, int64(obs.AuditEvents()))
		}
		return nil
	}, providers, degraded, keyVersion, auditEvents)
}
