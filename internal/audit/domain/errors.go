package domain

import (
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// Audit error definitions.
var (
	// ErrInvalidEvent indicates an event is missing required fields.
	ErrInvalidEvent = errors.Wrap(errors.ErrInvalidInput, "invalid audit event")

	// ErrSignatureInvalid indicates an event or export failed signature verification.
	ErrSignatureInvalid = errors.Wrap(errors.ErrIntegrity, "audit signature is invalid")

	// ErrExportUnavailable indicates no export signer is configured.
	ErrExportUnavailable = errors.Wrap(errors.ErrUnavailable, "audit export signer not configured")
)
