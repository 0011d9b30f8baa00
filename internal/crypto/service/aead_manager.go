package service

import (
	"fmt"
	"slices"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

type cipherFactory func(key []byte) (AEAD, error)

// AEADManagerService builds payload ciphers from content keys derived by the
// codec. Only registered algorithms can open or seal envelopes.
type AEADManagerService struct {
	factories map[cryptoDomain.Algorithm]cipherFactory
}

// NewAEADManager registers AES-256-GCM and ChaCha20-Poly1305.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{
		factories: map[cryptoDomain.Algorithm]cipherFactory{
			cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
				return NewAESGCM(key)
			},
			cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
				return NewChaCha20Poly1305(key)
			},
		},
	}
}

// CreateCipher returns a cipher for alg keyed with key. The algorithm is
// checked first so a tag naming an unknown cipher reports
// ErrUnsupportedAlgorithm rather than a size error.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	factory, ok := am.factories[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, alg)
	}
	if len(key) != cryptoDomain.RootKeySize {
		return nil, fmt.Errorf("%w: content key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, cryptoDomain.RootKeySize, len(key))
	}
	return factory(key)
}

// Algorithms lists the registered algorithms in sorted order.
func (am *AEADManagerService) Algorithms() []cryptoDomain.Algorithm {
	algs := make([]cryptoDomain.Algorithm, 0, len(am.factories))
	for alg := range am.factories {
		algs = append(algs, alg)
	}
	slices.Sort(algs)
	return algs
}
