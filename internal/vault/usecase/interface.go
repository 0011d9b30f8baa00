// Package usecase implements the encrypted vault: values are sealed into
// envelopes under the current root key and written through the failsafe
// manager.
package usecase

import (
	"context"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) (*auditDomain.Event, error)
}

// Vault stores encrypted values.
type Vault interface {
	// Put encrypts value with the mode selected by s and writes it under key.
	Put(
		ctx context.Context,
		key string,
		value []byte,
		s vaultDomain.Sensitivity,
	) (*cryptoDomain.Envelope, error)

	// PutJSON marshals v and stores it with Put.
	PutJSON(ctx context.Context, key string, v any, s vaultDomain.Sensitivity) (*cryptoDomain.Envelope, error)

	// Get reads and decrypts the value for key. found is false when no
	// reachable provider holds it.
	//
	// Security Note: callers should zero the returned value with
	// cryptoDomain.Zero once done.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// GetJSON reads the value for key and unmarshals it into out.
	GetJSON(ctx context.Context, key string, out any) (bool, error)

	// Delete removes key from every provider.
	Delete(ctx context.Context, key string) error

	// SecureDelete overwrites key on every provider before removing it.
	SecureDelete(ctx context.Context, key string) error

	// List returns every stored key in ascending order.
	List(ctx context.Context) ([]string, error)

	// Rotate replaces the root key. Existing values stay readable while the
	// superseded version is retained.
	Rotate(ctx context.Context) (*cryptoDomain.RootKey, error)
}
