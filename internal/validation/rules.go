// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/errors"
)

// MaxStorageKeyLength bounds a storage key in bytes. Keys become object names
// and primary key values, so they must fit every backend.
const MaxStorageKeyLength = 512

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// StorageKey validates a logical storage key: valid UTF-8, at most
// MaxStorageKeyLength bytes, no control characters, no empty or dot path
// segments.
var StorageKey = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_storage_key_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) > MaxStorageKeyLength {
		return validation.NewError("validation_storage_key_length", "must be at most 512 bytes")
	}
	if !utf8.ValidString(s) {
		return validation.NewError("validation_storage_key_utf8", "must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return validation.NewError("validation_storage_key_control", "must not contain control characters")
		}
	}
	for _, segment := range strings.Split(s, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return validation.NewError("validation_storage_key_segment", "must not contain empty, '.' or '..' segments")
		}
	}
	return nil
})

// ValidateStorageKey applies Required and StorageKey to key and wraps the
// result as ErrInvalidInput.
func ValidateStorageKey(key string) error {
	return WrapValidationError(validation.Validate(key, validation.Required, StorageKey))
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
