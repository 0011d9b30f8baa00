package domain

import (
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// Vault error definitions.
var (
	// ErrValueNotFound indicates no provider holds a value for the key.
	ErrValueNotFound = errors.Wrap(errors.ErrNotFound, "value not found")

	// ErrInvalidSensitivity indicates an unknown sensitivity level.
	ErrInvalidSensitivity = errors.Wrap(errors.ErrInvalidInput, "invalid sensitivity")

	// ErrCorruptRecord indicates a stored record could not be decoded.
	ErrCorruptRecord = errors.Wrap(errors.ErrIntegrity, "corrupt record")
)
