package domain

import (
	"strings"
)

// Algorithm selects the AEAD cipher that seals envelope payloads.
//
// Both supported algorithms use a 256-bit key, a 12-byte nonce and a 16-byte
// authentication tag:
//   - AESGCM is the fastest choice on CPUs with AES-NI
//   - ChaCha20 is constant-time in software and preferred without AES hardware
type Algorithm string

const (
	// AESGCM represents AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// TagName returns the algorithm name used inside envelope algorithm tags.
func (a Algorithm) TagName() string {
	switch a {
	case AESGCM:
		return "AES-256-GCM"
	case ChaCha20:
		return "CHACHA20-POLY1305"
	default:
		return ""
	}
}

// ParseAlgorithm maps a configuration value or tag name back to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AES-GCM", "AES-256-GCM":
		return AESGCM, nil
	case "CHACHA20-POLY1305":
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// Names of the key derivation and encapsulation primitives that appear in
// envelope algorithm tags.
const (
	KDFHKDFSHA256     = "HKDF-SHA-256"
	KEMNone           = "none"
	KEMMLKEM768       = "ML-KEM-768"
	KEMX25519MLKEM768 = "X25519-ML-KEM-768"
)

// AlgorithmTag identifies the KEM, KDF and AEAD used for one envelope. It is
// rendered as "<kem>/<kdf>/<aead>", for example
// "ML-KEM-768/HKDF-SHA-256/AES-256-GCM".
type AlgorithmTag struct {
	KEM  string
	KDF  string
	AEAD Algorithm
}

// String renders the tag.
func (t AlgorithmTag) String() string {
	return t.KEM + "/" + t.KDF + "/" + t.AEAD.TagName()
}

// ParseAlgorithmTag parses a rendered tag.
func ParseAlgorithmTag(s string) (AlgorithmTag, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return AlgorithmTag{}, ErrUnsupportedAlgorithm
	}
	aead, err := ParseAlgorithm(parts[2])
	if err != nil {
		return AlgorithmTag{}, err
	}
	return AlgorithmTag{KEM: parts[0], KDF: parts[1], AEAD: aead}, nil
}
