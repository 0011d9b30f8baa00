// Package usecase implements the root key lifecycle: initialization,
// scheduled rotation and secure erasure of superseded versions.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/domain"
	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// KeyRepository persists root key records.
type KeyRepository interface {
	Save(ctx context.Context, key *cryptoDomain.RootKey) error
	List(ctx context.Context) ([]*cryptoDomain.RootKey, error)
	Shred(ctx context.Context, version uint) error
}

// AuditRecorder appends audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event auditDomain.Event) (*auditDomain.Event, error)
}

// InitializeOptions controls Initialize.
type InitializeOptions struct {
	// ForceReset erases every existing version and starts a new one.
	ForceReset bool
}

// RotationReason explains a RotationCheck result.
type RotationReason string

const (
	RotationReasonNotInitialized   RotationReason = "not-initialized"
	RotationReasonNotDue           RotationReason = "not-due"
	RotationReasonScheduled        RotationReason = "scheduled"
	RotationReasonAlgorithmChanged RotationReason = "algorithm-changed"
)

// RotationCheck is the result of CheckRotation.
type RotationCheck struct {
	Due            bool           `json:"due"`
	Reason         RotationReason `json:"reason"`
	NextRotationAt time.Time      `json:"next_rotation_at,omitzero"`
}

// KeyVersionStatus describes one retained version without secret material.
type KeyVersionStatus struct {
	Version      uint                   `json:"version"`
	State        cryptoDomain.KeyState  `json:"state"`
	Algorithm    cryptoDomain.Algorithm `json:"algorithm"`
	CreatedAt    time.Time              `json:"created_at"`
	SupersededAt *time.Time             `json:"superseded_at,omitempty"`
	ErasedAt     *time.Time             `json:"erased_at,omitempty"`
}

// KeyStatus summarizes the key manager state.
type KeyStatus struct {
	Initialized    bool               `json:"initialized"`
	CurrentVersion uint               `json:"current_version"`
	Algorithm      string             `json:"algorithm,omitempty"`
	NextRotationAt time.Time          `json:"next_rotation_at,omitzero"`
	Rotation       RotationCheck      `json:"rotation"`
	Versions       []KeyVersionStatus `json:"versions"`
}

// KeyManager owns the root key slot.
//
// Rotate, Erase, PurgeExpired and Initialize are serialized. Encryption and
// decryption borrow keys through WithCurrentKey and WithKey, which never
// observe a half-rotated state.
type KeyManager interface {
	// Load restores persisted versions. With nothing persisted the manager
	// stays uninitialized.
	Load(ctx context.Context) error

	// Initialize creates the first version. It fails with
	// ErrAlreadyInitialized unless opts.ForceReset is set.
	Initialize(ctx context.Context, opts InitializeOptions) (*cryptoDomain.RootKey, error)

	// CheckRotation reports whether the current version is due for rotation.
	CheckRotation() RotationCheck

	// IsRotationDue is CheckRotation().Due.
	IsRotationDue() bool

	// Rotate replaces the current version. A concurrent call fails with
	// ErrRotationInProgress.
	Rotate(ctx context.Context) (*cryptoDomain.RootKey, error)

	// Erase destroys a superseded version with zero, ones and random
	// overwrite passes.
	Erase(ctx context.Context, version uint) error

	// PurgeExpired erases superseded versions whose retention grace elapsed
	// and returns how many were erased.
	PurgeExpired(ctx context.Context) (int, error)

	// WithCurrentKey runs fn with the current version held stable. fn must
	// not retain the key.
	WithCurrentKey(fn func(key *cryptoDomain.RootKey) error) error

	// WithKey runs fn with the given version held stable.
	WithKey(version uint, fn func(key *cryptoDomain.RootKey) error) error

	// Status returns a snapshot without secret material.
	Status() KeyStatus
}
