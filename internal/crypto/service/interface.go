// Package service provides the cryptographic primitives behind the envelope
// codec: AEAD ciphers, HKDF key derivation, key encapsulation mechanisms and
// the signature scheme used for audit exports.
package service

import (
	"context"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// AEAD defines Authenticated Encryption with Associated Data using a
// caller-supplied nonce. The envelope codec owns nonce generation so the same
// random IV also salts the key derivation.
type AEAD interface {
	// NonceSize returns the required nonce length in bytes.
	NonceSize() int

	// Seal encrypts and authenticates plaintext and aad.
	Seal(nonce, plaintext, aad []byte) ([]byte, error)

	// Open verifies and decrypts ciphertext. Any tampering yields an error
	// and no plaintext.
	Open(nonce, ciphertext, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KEM is a key encapsulation mechanism. Key material crosses this boundary
// as opaque byte strings.
type KEM interface {
	// Name returns the mechanism name used in algorithm tags.
	Name() string

	// GenerateKeyPair returns new (public, private) material.
	GenerateKeyPair() (public, private []byte, err error)

	// Encapsulate produces a ciphertext and shared secret for public.
	Encapsulate(public []byte) (ciphertext, sharedSecret []byte, err error)

	// Decapsulate recovers the shared secret from ciphertext with private.
	Decapsulate(private, ciphertext []byte) ([]byte, error)

	// PublicKeySize, PrivateKeySize and CiphertextSize report the fixed
	// encoded lengths.
	PublicKeySize() int
	PrivateKeySize() int
	CiphertextSize() int
}

// Codec encrypts values into envelopes and decrypts them back.
type Codec interface {
	// Encrypt seals plaintext into a new envelope under key using mode.
	Encrypt(
		ctx context.Context,
		plaintext []byte,
		mode cryptoDomain.Mode,
		key *cryptoDomain.RootKey,
		opts ...EncryptOption,
	) (*cryptoDomain.Envelope, error)

	// Decrypt opens env with key. It returns ErrIntegrityFailure when the
	// authentication tag does not verify and ErrMissingKeyMaterial when the
	// content key cannot be recovered.
	Decrypt(
		ctx context.Context,
		env *cryptoDomain.Envelope,
		key *cryptoDomain.RootKey,
		opts ...DecryptOption,
	) ([]byte, error)
}
