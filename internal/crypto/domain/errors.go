package domain

import (
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// Cryptographic and key lifecycle error definitions.
//
// Integrity and key-material errors are never recovered locally; they always
// reach the caller.
var (
	// ErrUnsupportedAlgorithm indicates an unknown cipher, KEM or mode.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material of the wrong length.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidEnvelope indicates a structurally malformed envelope.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrIntegrityFailure indicates the AEAD tag did not verify. The plaintext
	// is never returned in that case.
	ErrIntegrityFailure = errors.Wrap(errors.ErrIntegrity, "envelope integrity check failed")

	// ErrMissingKeyMaterial indicates the private material needed to
	// decapsulate or derive the content key is absent or does not match.
	ErrMissingKeyMaterial = errors.Wrap(errors.ErrIntegrity, "missing key material")

	// ErrKeyErased indicates the root key version was securely erased.
	ErrKeyErased = errors.Wrap(ErrMissingKeyMaterial, "root key version erased")

	// ErrKeyNotFound indicates an unknown root key version.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "root key version not found")

	// ErrNotInitialized indicates the key manager has no active key.
	ErrNotInitialized = errors.Wrap(errors.ErrConflict, "key manager not initialized")

	// ErrAlreadyInitialized indicates Initialize was called on an initialized
	// manager without forcing a reset.
	ErrAlreadyInitialized = errors.Wrap(errors.ErrConflict, "key manager already initialized")

	// ErrRotationInProgress indicates another rotation holds the rotation slot.
	ErrRotationInProgress = errors.Wrap(errors.ErrConflict, "key rotation in progress")

	// ErrActiveKeyErase indicates an attempt to erase the active version.
	ErrActiveKeyErase = errors.Wrap(errors.ErrConflict, "cannot erase the active root key")

	// ErrInvalidKMSKeyURI indicates KMS_KEY_URI is missing or malformed.
	ErrInvalidKMSKeyURI = errors.Wrap(errors.ErrInvalidInput, "invalid KMS key URI")
)
