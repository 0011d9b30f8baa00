package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

const metricsDomain = "vault"

// vaultWithMetrics decorates Vault with metrics instrumentation.
type vaultWithMetrics struct {
	next    Vault
	metrics metrics.BusinessMetrics
}

// NewVaultWithMetrics wraps a Vault with metrics recording.
func NewVaultWithMetrics(next Vault, m metrics.BusinessMetrics) Vault {
	return &vaultWithMetrics{
		next:    next,
		metrics: m,
	}
}

// Put records metrics for value writes.
func (v *vaultWithMetrics) Put(
	ctx context.Context,
	key string,
	value []byte,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	env, err := v.next.Put(ctx, key, value, s)
	v.observeSeal(ctx, start, env, err)
	return env, err
}

// PutJSON records metrics for structured value writes.
func (v *vaultWithMetrics) PutJSON(
	ctx context.Context,
	key string,
	value any,
	s vaultDomain.Sensitivity,
) (*cryptoDomain.Envelope, error) {
	start := time.Now()
	env, err := v.next.PutJSON(ctx, key, value, s)
	v.observeSeal(ctx, start, env, err)
	return env, err
}

// Get records metrics for value reads. A missing value is reported as
// "not_found".
func (v *vaultWithMetrics) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := v.next.Get(ctx, key)
	v.observeRead(ctx, start, found, err)
	return value, found, err
}

// GetJSON records metrics for structured value reads.
func (v *vaultWithMetrics) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	start := time.Now()
	found, err := v.next.GetJSON(ctx, key, out)
	v.observeRead(ctx, start, found, err)
	return found, err
}

// Delete records metrics for value deletion.
func (v *vaultWithMetrics) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := v.next.Delete(ctx, key)
	v.observe(ctx, "delete", start, err)
	return err
}

// SecureDelete records metrics for value shredding.
func (v *vaultWithMetrics) SecureDelete(ctx context.Context, key string) error {
	start := time.Now()
	err := v.next.SecureDelete(ctx, key)
	v.observe(ctx, "secure_delete", start, err)
	return err
}

// List records metrics for key listing.
func (v *vaultWithMetrics) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := v.next.List(ctx)
	v.observe(ctx, "list", start, err)
	return keys, err
}

// Rotate records metrics for root key rotation.
func (v *vaultWithMetrics) Rotate(ctx context.Context) (*cryptoDomain.RootKey, error) {
	start := time.Now()
	key, err := v.next.Rotate(ctx)
	v.observe(ctx, "rotate", start, err)
	return key, err
}

func (v *vaultWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	v.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (v *vaultWithMetrics) observeSeal(ctx context.Context, start time.Time, env *cryptoDomain.Envelope, err error) {
	v.observe(ctx, "put", start, err)
	if err == nil && env != nil {
		v.metrics.RecordEnvelope(ctx, string(env.Mode), env.AlgorithmTag)
	}
}

func (v *vaultWithMetrics) observeRead(ctx context.Context, start time.Time, found bool, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !found:
		status = "not_found"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, "get", status)
	v.metrics.RecordDuration(ctx, metricsDomain, "get", time.Since(start), status)
}
