package dto

import (
	"time"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	storageUseCase "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/storage/usecase"
)

// MapEnvelopeToResponse converts an envelope to its API metadata.
func MapEnvelopeToResponse(key string, env *cryptoDomain.Envelope) EnvelopeResponse {
	return EnvelopeResponse{
		Key:                 key,
		Mode:                env.Mode,
		AlgorithmTag:        env.AlgorithmTag,
		KeyVersion:          env.KeyVersion,
		EncapsulatedKeySize: len(env.EncapsulatedKey),
		CiphertextSize:      len(env.Ciphertext),
	}
}

// ValueResponse carries a decrypted value.
// SECURITY: Value contains plaintext and must be transmitted over HTTPS.
type ValueResponse struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// ListValuesResponse is a page of stored keys.
type ListValuesResponse struct {
	Data   []string `json:"data"`
	Total  int      `json:"total"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
}

// MapKeysToListResponse slices the sorted key list into one page.
func MapKeysToListResponse(keys []string, offset, limit int) ListValuesResponse {
	page := []string{}
	if offset < len(keys) {
		end := min(offset+limit, len(keys))
		page = keys[offset:end]
	}
	return ListValuesResponse{
		Data:   page,
		Total:  len(keys),
		Offset: offset,
		Limit:  limit,
	}
}

// RootKeyResponse describes a root key version without secret material.
type RootKeyResponse struct {
	Version        uint                   `json:"version"`
	Algorithm      cryptoDomain.Algorithm `json:"algorithm"`
	State          cryptoDomain.KeyState  `json:"state"`
	CreatedAt      time.Time              `json:"created_at"`
	NextRotationAt time.Time              `json:"next_rotation_at"`
}

// MapRootKeyToResponse converts a root key to its API metadata.
func MapRootKeyToResponse(key *cryptoDomain.RootKey) RootKeyResponse {
	return RootKeyResponse{
		Version:        key.Version,
		Algorithm:      key.Algorithm,
		State:          key.State,
		CreatedAt:      key.CreatedAt,
		NextRotationAt: key.NextRotationAt,
	}
}

// StorageStatusResponse reports provider availability.
type StorageStatusResponse struct {
	Degraded  bool                            `json:"degraded"`
	Providers []storageUseCase.ProviderStatus `json:"providers"`
}
