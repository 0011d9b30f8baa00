package service

import (
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// MLKEM768 implements KEM with ML-KEM-768 (FIPS 203).
type MLKEM768 struct {
	scheme kem.Scheme
}

// NewMLKEM768 creates an ML-KEM-768 mechanism.
func NewMLKEM768() *MLKEM768 {
	return &MLKEM768{scheme: mlkem768.Scheme()}
}

// Name returns "ML-KEM-768".
func (m *MLKEM768) Name() string {
	return cryptoDomain.KEMMLKEM768
}

// GenerateKeyPair creates a new ML-KEM-768 key pair.
func (m *MLKEM768) GenerateKeyPair() ([]byte, []byte, error) {
	pk, sk, err := m.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate ML-KEM-768 key pair: %w", err)
	}

	public, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode ML-KEM-768 public key: %w", err)
	}
	private, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode ML-KEM-768 private key: %w", err)
	}
	return public, private, nil
}

// Encapsulate produces a ciphertext and a 32-byte shared secret for public.
func (m *MLKEM768) Encapsulate(public []byte) ([]byte, []byte, error) {
	if len(public) != m.scheme.PublicKeySize() {
		return nil, nil, cryptoDomain.ErrMissingKeyMaterial
	}
	pk, err := m.scheme.UnmarshalBinaryPublicKey(public)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}

	ct, ss, err := m.scheme.Encapsulate(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encapsulate: %w", err)
	}
	return ct, ss, nil
}

// Decapsulate recovers the shared secret. ML-KEM decapsulation with the wrong
// private key yields a pseudorandom secret rather than an error, so a wrong
// key surfaces later as an AEAD integrity failure.
func (m *MLKEM768) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	if len(private) != m.scheme.PrivateKeySize() {
		return nil, cryptoDomain.ErrMissingKeyMaterial
	}
	if len(ciphertext) != m.scheme.CiphertextSize() {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	sk, err := m.scheme.UnmarshalBinaryPrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}

	ss, err := m.scheme.Decapsulate(sk, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrMissingKeyMaterial, err)
	}
	return ss, nil
}

// PublicKeySize returns 1184.
func (m *MLKEM768) PublicKeySize() int {
	return m.scheme.PublicKeySize()
}

// PrivateKeySize returns 2400.
func (m *MLKEM768) PrivateKeySize() int {
	return m.scheme.PrivateKeySize()
}

// CiphertextSize returns 1088.
func (m *MLKEM768) CiphertextSize() int {
	return m.scheme.CiphertextSize()
}
