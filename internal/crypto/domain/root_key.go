package domain

import (
	"time"
)

// KeyState is the lifecycle state of one root key version.
type KeyState string

const (
	// KeyStateActive marks the current version used for new envelopes.
	KeyStateActive KeyState = "active"
	// KeyStateSuperseded marks a retained version that only decrypts.
	KeyStateSuperseded KeyState = "superseded"
	// KeyStateErased marks a version whose secret material is gone.
	KeyStateErased KeyState = "erased"
)

// RootKeySize is the length of the symmetric root key in bytes.
const RootKeySize = 32

// RootKey is one version of the subsystem's root key material.
//
// Key seeds Direct mode. KEMPublic/KEMPrivate hold the ML-KEM-768 key pair and
// ECDHPublic/ECDHPrivate the X25519 key pair; Hybrid mode uses both.
type RootKey struct {
	Version        uint       `json:"version"`
	Algorithm      Algorithm  `json:"algorithm"`
	State          KeyState   `json:"state"`
	Key            []byte     `json:"key,omitempty"`
	KEMPublic      []byte     `json:"kem_public,omitempty"`
	KEMPrivate     []byte     `json:"kem_private,omitempty"`
	ECDHPublic     []byte     `json:"ecdh_public,omitempty"`
	ECDHPrivate    []byte     `json:"ecdh_private,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	RotatedAt      *time.Time `json:"rotated_at,omitempty"`
	NextRotationAt time.Time  `json:"next_rotation_at"`
	SupersededAt   *time.Time `json:"superseded_at,omitempty"`
	ErasedAt       *time.Time `json:"erased_at,omitempty"`
}

// IsErased reports whether the secret material has been destroyed.
func (k *RootKey) IsErased() bool {
	return k.State == KeyStateErased
}

// PublicMaterial returns the recipient public material for mode. Hybrid
// material is the ML-KEM-768 public key followed by the X25519 public key.
func (k *RootKey) PublicMaterial(mode Mode) []byte {
	switch mode {
	case ModeKeyEncapsulation:
		return k.KEMPublic
	case ModeHybrid:
		if len(k.KEMPublic) == 0 || len(k.ECDHPublic) == 0 {
			return nil
		}
		return concat(k.KEMPublic, k.ECDHPublic)
	default:
		return nil
	}
}

// PrivateMaterial returns the private material matching PublicMaterial.
// Callers own the returned slice and should zero it after use.
func (k *RootKey) PrivateMaterial(mode Mode) []byte {
	switch mode {
	case ModeKeyEncapsulation:
		if len(k.KEMPrivate) == 0 {
			return nil
		}
		return concat(k.KEMPrivate)
	case ModeHybrid:
		if len(k.KEMPrivate) == 0 || len(k.ECDHPrivate) == 0 {
			return nil
		}
		return concat(k.KEMPrivate, k.ECDHPrivate)
	default:
		return nil
	}
}

// Wipe zeroes every secret field and drops the references.
func (k *RootKey) Wipe() {
	Zero(k.Key)
	Zero(k.KEMPrivate)
	Zero(k.ECDHPrivate)
	k.Key = nil
	k.KEMPrivate = nil
	k.ECDHPrivate = nil
}

// Clone returns a deep copy so callers cannot alias the manager's buffers.
func (k *RootKey) Clone() *RootKey {
	c := *k
	c.Key = concat(k.Key)
	c.KEMPublic = concat(k.KEMPublic)
	c.KEMPrivate = concat(k.KEMPrivate)
	c.ECDHPublic = concat(k.ECDHPublic)
	c.ECDHPrivate = concat(k.ECDHPrivate)
	return &c
}

// Metadata returns a copy stripped of all secret material.
func (k *RootKey) Metadata() *RootKey {
	c := *k
	c.Key = nil
	c.KEMPrivate = nil
	c.ECDHPrivate = nil
	c.KEMPublic = concat(k.KEMPublic)
	c.ECDHPublic = concat(k.ECDHPublic)
	return &c
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
