package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// KeyGenerator creates root key material.
type KeyGenerator interface {
	// Generate returns a new active root key with the given version and AEAD
	// algorithm. Lifecycle timestamps are left for the caller to set.
	Generate(version uint, alg cryptoDomain.Algorithm) (*cryptoDomain.RootKey, error)
}

type rootKeyGenerator struct {
	kem  KEM
	ecdh KEM
}

// NewKeyGenerator creates a generator producing a 32-byte symmetric key, an
// ML-KEM-768 key pair and an X25519 key pair per version.
func NewKeyGenerator() KeyGenerator {
	return &rootKeyGenerator{kem: NewMLKEM768(), ecdh: NewX25519()}
}

func (g *rootKeyGenerator) Generate(version uint, alg cryptoDomain.Algorithm) (*cryptoDomain.RootKey, error) {
	if alg.TagName() == "" {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	key := make([]byte, cryptoDomain.RootKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate root key: %w", err)
	}

	kemPublic, kemPrivate, err := g.kem.GenerateKeyPair()
	if err != nil {
		cryptoDomain.Zero(key)
		return nil, err
	}

	ecdhPublic, ecdhPrivate, err := g.ecdh.GenerateKeyPair()
	if err != nil {
		cryptoDomain.Zero(key, kemPrivate)
		return nil, err
	}

	return &cryptoDomain.RootKey{
		Version:     version,
		Algorithm:   alg,
		State:       cryptoDomain.KeyStateActive,
		Key:         key,
		KEMPublic:   kemPublic,
		KEMPrivate:  kemPrivate,
		ECDHPublic:  ecdhPublic,
		ECDHPrivate: ecdhPrivate,
	}, nil
}
