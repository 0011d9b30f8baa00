package service

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

const x25519KEMInfo = "tetracrypt:x25519-kem:v1"

// X25519 implements KEM as ephemeral-static X25519 Diffie-Hellman. The
// ciphertext is the ephemeral public key; the shared secret is HKDF over the
// DH output bound to both public keys.
type X25519 struct{}

// NewX25519 creates an X25519 mechanism.
func NewX25519() *X25519 {
	return &X25519{}
}

// Name returns "X25519".
func (x *X25519) Name() string {
	return "X25519"
}

// GenerateKeyPair creates a clamped X25519 key pair.
func (x *X25519) GenerateKeyPair() ([]byte, []byte, error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return nil, nil, fmt.Errorf("failed to generate X25519 private key: %w", err)
	}
	private[0] &= 248
	private[31] &= 127
	private[31] |= 64

	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		cryptoDomain.Zero(private)
		return nil, nil, fmt.Errorf("failed to derive X25519 public key: %w", err)
	}
	return public, private, nil
}

// Encapsulate generates an ephemeral key pair and agrees a secret with public.
func (x *X25519) Encapsulate(public []byte) ([]byte, []byte, error) {
	if len(public) != curve25519.PointSize {
		return nil, nil, cryptoDomain.ErrMissingKeyMaterial
	}

	ephemeralPublic, ephemeralPrivate, err := x.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(ephemeralPrivate)

	dh, err := curve25519.X25519(ephemeralPrivate, public)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}
	defer cryptoDomain.Zero(dh)

	ss, err := x.combine(dh, ephemeralPublic, public)
	if err != nil {
		return nil, nil, err
	}
	return ephemeralPublic, ss, nil
}

// Decapsulate recovers the shared secret from the ephemeral public key.
func (x *X25519) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	if len(private) != curve25519.ScalarSize {
		return nil, cryptoDomain.ErrMissingKeyMaterial
	}
	if len(ciphertext) != curve25519.PointSize {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	public, err := curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}

	dh, err := curve25519.X25519(private, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}
	defer cryptoDomain.Zero(dh)

	return x.combine(dh, ciphertext, public)
}

// PublicKeySize returns 32.
func (x *X25519) PublicKeySize() int {
	return curve25519.PointSize
}

// PrivateKeySize returns 32.
func (x *X25519) PrivateKeySize() int {
	return curve25519.ScalarSize
}

// CiphertextSize returns 32.
func (x *X25519) CiphertextSize() int {
	return curve25519.PointSize
}

func (x *X25519) combine(dh, ephemeralPublic, recipientPublic []byte) ([]byte, error) {
	salt := make([]byte, 0, len(ephemeralPublic)+len(recipientPublic))
	salt = append(salt, ephemeralPublic...)
	salt = append(salt, recipientPublic...)
	return DeriveKey(dh, salt, []byte(x25519KEMInfo), 32)
}
