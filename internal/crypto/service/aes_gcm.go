package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM.
//
// Security properties:
//   - 256-bit key
//   - 12-byte nonce supplied by the caller, never reused under one key
//   - 16-byte authentication tag appended to the ciphertext
//
// The cipher is stateless and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance. The key must be
// exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.RootKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// NonceSize returns 12.
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}

// Seal encrypts plaintext and authenticates it together with aad.
func (a *AESGCMCipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	return seal(a.aead, nonce, plaintext, aad)
}

// Open verifies and decrypts ciphertext.
func (a *AESGCMCipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	return open(a.aead, nonce, ciphertext, aad)
}

func seal(aead cipher.AEAD, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", cryptoDomain.ErrInvalidEnvelope, aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func open(aead cipher.AEAD, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", cryptoDomain.ErrInvalidEnvelope, aead.NonceSize())
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrityFailure
	}
	return plaintext, nil
}
