package domain

import (
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// Storage error definitions.
var (
	// ErrProviderUnavailable indicates a single Store could not be reached.
	// The failover layer recovers from it locally.
	ErrProviderUnavailable = errors.Wrap(errors.ErrUnavailable, "storage provider unavailable")

	// ErrAllProvidersUnavailable indicates every configured Store was exhausted
	// (or none were available at initialization).
	ErrAllProvidersUnavailable = errors.Wrap(errors.ErrUnavailable, "all storage providers unavailable")

	// ErrNoProviders indicates the failover manager was built without providers.
	ErrNoProviders = errors.Wrap(errors.ErrInvalidInput, "no storage providers configured")

	// ErrInvalidKey indicates an empty or malformed storage key.
	ErrInvalidKey = errors.Wrap(errors.ErrInvalidInput, "invalid storage key")
)
