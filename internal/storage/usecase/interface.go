// Package usecase implements the failsafe manager that presents an ordered
// list of Stores as one logical store.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	storageDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/domain"
)

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) (*auditDomain.Event, error)
}

// ProviderStatus describes one configured Store as seen by the last probe.
type ProviderStatus struct {
	Name      string             `json:"name"`
	Kind      storageDomain.Kind `json:"kind"`
	Priority  int                `json:"priority"`
	Available bool               `json:"available"`
	ProbedAt  time.Time          `json:"probed_at"`
}

// FailsafeManager provides single-logical-store semantics over ordered Stores.
type FailsafeManager interface {
	// Initialize probes every Store with a bounded timeout and keeps the
	// available ones in priority order. With none available the manager is
	// degraded and every operation fails fast.
	Initialize(ctx context.Context) error

	// Write stores data on the first Store that accepts it and mirrors it to
	// the remaining Stores in the background.
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the value from the first Store that answers. found is false
	// when a reachable Store reports the key absent.
	Read(ctx context.Context, key string) (data []byte, found bool, err error)

	// Delete removes key from every Store; it succeeds when at least one confirms.
	Delete(ctx context.Context, key string) error

	// SecureDelete overwrites key with zeros, ones and random bytes on every
	// Store before removing it.
	SecureDelete(ctx context.Context, key string) error

	// List returns the deduplicated union of keys across Stores.
	List(ctx context.Context) ([]string, error)

	// Degraded reports whether no Store was available at the last probe.
	Degraded() bool

	// Providers returns the status of every configured Store in priority order.
	Providers() []ProviderStatus

	// Wait blocks until in-flight mirror writes finish.
	Wait()

	// Close waits for mirror writes and closes every Store that holds resources.
	Close() error
}
