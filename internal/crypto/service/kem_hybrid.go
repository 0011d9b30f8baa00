package service

import (
	"fmt"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

const hybridKEMInfo = "tetracrypt:hybrid-kem:v1"

// HybridKEM combines a post-quantum and a classical KEM so the shared secret
// stays safe while either one holds. Public material, private material and
// ciphertexts are the post-quantum encoding followed by the classical one.
// The combined secret is HKDF over both secrets salted with both ciphertexts.
type HybridKEM struct {
	pq        KEM
	classical KEM
}

// NewHybridKEM creates the X25519 + ML-KEM-768 hybrid mechanism.
func NewHybridKEM() *HybridKEM {
	return &HybridKEM{pq: NewMLKEM768(), classical: NewX25519()}
}

// Name returns "X25519-ML-KEM-768".
func (h *HybridKEM) Name() string {
	return cryptoDomain.KEMX25519MLKEM768
}

// GenerateKeyPair creates both component key pairs and concatenates them.
func (h *HybridKEM) GenerateKeyPair() ([]byte, []byte, error) {
	pqPublic, pqPrivate, err := h.pq.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(pqPrivate)

	clPublic, clPrivate, err := h.classical.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(clPrivate)

	return append(pqPublic, clPublic...), join(pqPrivate, clPrivate), nil
}

// Encapsulate runs both mechanisms against the split public material.
func (h *HybridKEM) Encapsulate(public []byte) ([]byte, []byte, error) {
	if len(public) != h.PublicKeySize() {
		return nil, nil, cryptoDomain.ErrMissingKeyMaterial
	}
	split := h.pq.PublicKeySize()

	pqCT, pqSS, err := h.pq.Encapsulate(public[:split])
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(pqSS)

	clCT, clSS, err := h.classical.Encapsulate(public[split:])
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(clSS)

	ct := join(pqCT, clCT)
	ss, err := h.combine(pqSS, clSS, ct)
	if err != nil {
		return nil, nil, err
	}
	return ct, ss, nil
}

// Decapsulate recovers both component secrets and recombines them.
func (h *HybridKEM) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	if len(private) != h.PrivateKeySize() {
		return nil, cryptoDomain.ErrMissingKeyMaterial
	}
	if len(ciphertext) != h.CiphertextSize() {
		return nil, fmt.Errorf("%w: hybrid ciphertext must be %d bytes", cryptoDomain.ErrInvalidEnvelope, h.CiphertextSize())
	}
	skSplit := h.pq.PrivateKeySize()
	ctSplit := h.pq.CiphertextSize()

	pqSS, err := h.pq.Decapsulate(private[:skSplit], ciphertext[:ctSplit])
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(pqSS)

	clSS, err := h.classical.Decapsulate(private[skSplit:], ciphertext[ctSplit:])
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(clSS)

	return h.combine(pqSS, clSS, ciphertext)
}

// PublicKeySize returns the combined public material length.
func (h *HybridKEM) PublicKeySize() int {
	return h.pq.PublicKeySize() + h.classical.PublicKeySize()
}

// PrivateKeySize returns the combined private material length.
func (h *HybridKEM) PrivateKeySize() int {
	return h.pq.PrivateKeySize() + h.classical.PrivateKeySize()
}

// CiphertextSize returns the combined ciphertext length.
func (h *HybridKEM) CiphertextSize() int {
	return h.pq.CiphertextSize() + h.classical.CiphertextSize()
}

func (h *HybridKEM) combine(pqSS, clSS, ciphertext []byte) ([]byte, error) {
	ikm := join(pqSS, clSS)
	defer cryptoDomain.Zero(ikm)
	return DeriveKey(ikm, ciphertext, []byte(hybridKEMInfo), 32)
}

func join(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
