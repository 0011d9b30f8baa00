// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/crypto/domain"
	customValidation "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/validation"
	vaultDomain "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/domain"
)

// PutValueRequest contains the parameters for storing a value.
// The key is extracted from the URL parameter, not the request body.
type PutValueRequest struct {
	// Value is the base64-encoded plaintext.
	Value string `json:"value"`
	// Sensitivity is low, medium or high. It defaults to high.
	Sensitivity string `json:"sensitivity"`
}

// Validate checks if the put value request is valid.
func (r *PutValueRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.Sensitivity, validation.By(func(value interface{}) error {
			if _, err := vaultDomain.ParseSensitivity(r.Sensitivity); err != nil {
				return validation.NewError("validation_sensitivity", "must be low, medium or high")
			}
			return nil
		})),
	)
}

// DecodedValue returns the decoded plaintext. Callers must zero it after use.
func (r *PutValueRequest) DecodedValue() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Value)
}

// ParsedSensitivity returns the requested sensitivity.
func (r *PutValueRequest) ParsedSensitivity() (vaultDomain.Sensitivity, error) {
	return vaultDomain.ParseSensitivity(r.Sensitivity)
}

// EnvelopeResponse describes a stored envelope without its ciphertext.
type EnvelopeResponse struct {
	Key                 string            `json:"key"`
	Mode                cryptoDomain.Mode `json:"mode"`
	AlgorithmTag        string            `json:"algorithm_tag"`
	KeyVersion          uint              `json:"key_version"`
	EncapsulatedKeySize int               `json:"encapsulated_key_size"`
	CiphertextSize      int               `json:"ciphertext_size"`
}
