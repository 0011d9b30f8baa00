package service

import (
	"fmt"

	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// MLDSA65AlgorithmName labels signatures produced by MLDSA65Signer.
const MLDSA65AlgorithmName = "ML-DSA-65"

// MLDSA65Signer signs messages with ML-DSA-65 (FIPS 204). It satisfies the
// audit export signer contract.
type MLDSA65Signer struct {
	scheme  sign.Scheme
	private sign.PrivateKey
	public  []byte
}

// NewMLDSA65Signer generates a fresh signing key pair.
func NewMLDSA65Signer() (*MLDSA65Signer, error) {
	scheme := mldsa65.Scheme()
	pk, sk, err := scheme.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ML-DSA-65 key: %w", err)
	}
	return newMLDSA65Signer(scheme, pk, sk)
}

// NewMLDSA65SignerFromSeed deterministically derives the signing key pair
// from a 32-byte seed.
func NewMLDSA65SignerFromSeed(seed []byte) (*MLDSA65Signer, error) {
	scheme := mldsa65.Scheme()
	if len(seed) != scheme.SeedSize() {
		return nil, fmt.Errorf("ML-DSA-65 seed must be %d bytes", scheme.SeedSize())
	}
	pk, sk := scheme.DeriveKey(seed)
	return newMLDSA65Signer(scheme, pk, sk)
}

func newMLDSA65Signer(scheme sign.Scheme, pk sign.PublicKey, sk sign.PrivateKey) (*MLDSA65Signer, error) {
	public, err := pk.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode ML-DSA-65 public key: %w", err)
	}
	return &MLDSA65Signer{scheme: scheme, private: sk, public: public}, nil
}

// Algorithm returns "ML-DSA-65".
func (s *MLDSA65Signer) Algorithm() string {
	return MLDSA65AlgorithmName
}

// PublicKey returns the encoded verification key.
func (s *MLDSA65Signer) PublicKey() []byte {
	return append([]byte(nil), s.public...)
}

// Sign signs message.
func (s *MLDSA65Signer) Sign(message []byte) ([]byte, error) {
	return s.scheme.Sign(s.private, message, nil), nil
}

// Verify checks signature over message against the encoded publicKey.
func (s *MLDSA65Signer) Verify(publicKey, message, signature []byte) bool {
	pk, err := s.scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return false
	}
	return s.scheme.Verify(pk, message, signature, nil)
}
